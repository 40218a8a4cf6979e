// Package harness runs conformance scenarios against the generator.
//
// A scenario is a YAML fixture describing a declaration graph, optional
// registry seeds, and expectations about which types classify as
// transferable. Scenarios execute the full pipeline; golden-file comparison
// of both rendered buffers pins the exact output text.
package harness
