// Package decl models the declaration index consumed by the generator.
//
// The index is produced by an external documentation tool and loaded as a
// single JSON document. This package only defines the shape the generator
// relies on: stable ids, declaration kinds, and the struct/enum payloads that
// participate in classification. Everything else in the document is opaque.
//
// The graph is read-only for the whole run. Iteration order is the document
// order of the index object, which fixes the classifier worklist order and
// keeps generated output byte-stable across runs.
package decl
