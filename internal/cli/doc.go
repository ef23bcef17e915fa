// Package cli defines the Cobra command tree for the open-code CLI. Each file
// in this package registers one top-level command (init, sync, contribute,
// etc.) with the root command. Commands delegate to the internal packages for
// the tracking logic and only handle flags, prompts and output.
package cli
