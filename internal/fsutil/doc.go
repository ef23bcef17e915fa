// Package fsutil holds the filesystem helpers shared by the sync and
// contribution flows: component tree copies and atomic file writes.
package fsutil
