// Package ir defines the language-agnostic intermediate representation of
// generated declarations.
//
// The variant sets are closed: renderers dispatch over them with type
// switches, and an unknown variant is a programming error, not input error.
// IR nodes are derived snapshots of classified declarations - they own their
// own strings and slices, are built solely to drive rendering, and are
// discarded afterwards. Nothing in this package reads the declaration graph.
package ir
