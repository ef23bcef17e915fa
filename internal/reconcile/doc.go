// Package reconcile materializes components from an upstream snapshot into
// the project, guarding customized copies against silent overwrites and
// recording every successful sync in the tracking store.
package reconcile
