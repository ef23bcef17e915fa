// Package github talks to the hosting service: forking an upstream
// repository, opening pull requests, and resolving an API token from the gh
// CLI, user settings or an interactive prompt.
package github
