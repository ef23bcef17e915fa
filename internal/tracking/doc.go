// Package tracking persists the per-project record of which components were
// copied from which repository, at which revision, and whether the local copy
// has been customized since.
package tracking
