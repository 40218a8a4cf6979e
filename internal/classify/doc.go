// Package classify decides which declarations are trivially transferable.
//
// A type is trivially transferable when its value may be copied by raw
// bit-layout across the host/native boundary: enums with only plain
// variants, and structs whose every visible field resolves to a transferable
// registry entry. Enums need one pass. Structs need fixed-point iteration
// because their transferability depends on fields that may reference other
// not-yet-classified structs.
//
// Classification is single-threaded and deterministic: the worklist follows
// document order, and a registration made mid-pass is visible to later
// declarations in the same pass. Declarations still pending at the fixed
// point are not an error; their disposition (opaque handles, omission)
// belongs to the caller.
package classify
