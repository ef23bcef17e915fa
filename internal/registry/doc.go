// Package registry handles the project registry: the persisted record of
// configured upstream repositories and the components each one exposes.
// It loads, validates, creates and updates the registry file at the project
// root, selects the repository a command operates on, and discovers
// components inside a fetched repository snapshot.
package registry
