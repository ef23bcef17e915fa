// Package schema is the validation boundary for the registry and tracking
// files. Documents are parsed as YAML (a superset of JSON), normalized to
// JSON-compatible values, and validated against embedded JSON schemas before
// any typed decoding happens.
package schema
