// Package gitutil wraps the git executable: shallow snapshots of upstream
// repositories, and the branch, commit and push steps of a contribution.
package gitutil
