// Package tool defines the tool/function surface exposed to model providers:
// a Definition pairing a vendor-facing name with a JSON schema for its
// arguments, and a concurrent Registry that resolves the opaque identifiers
// carried by gateway requests into those definitions.
package tool
