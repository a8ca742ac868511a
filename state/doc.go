// Package state provides the typed key/value world state read by the
// draw-list compiler.
//
// A Store maps keys to Values. A Value is one of a string, a fixed-point
// number, a pack (a record of named fields) or an ordered list of values.
// Numbers are 52.12 fixed-point ([fixed.Int52_12]); the raw scaled integer
// is exposed so consumers can reject non-integral pixel values exactly.
//
// Map is the in-memory Store used by the command-line tools and tests.
// Snapshots are loaded from JSON with Decode.
package state
