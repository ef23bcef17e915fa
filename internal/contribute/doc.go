// Package contribute turns customized local components into upstream pull
// requests: fork, clone, branch, overlay, commit, push and open the PR, one
// component at a time.
package contribute
