// Package render emits host-language and native-language source text from IR
// nodes.
//
// Dispatch is a type switch over the closed IR variant sets, one free
// function per target. Rendering never fails on valid IR; an unknown variant
// means the IR was constructed outside the classifier's contract and panics.
// All composition goes through a single four-space indent helper, so nesting
// depth is uniform and output is byte-stable.
package render
