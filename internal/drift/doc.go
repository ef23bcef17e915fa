// Package drift compares a local component copy with its upstream snapshot.
//
// Detection is one-directional: local edits and local additions are
// reported, files missing locally are not. Contents are compared as text;
// binary files get a textual diff like any other file.
package drift
