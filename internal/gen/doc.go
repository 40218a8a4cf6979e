// Package gen runs the full generation pipeline for one index document:
// seed the registry, classify, lower classified declarations to IR, render
// both target buffers.
//
// The pipeline owns the graph and registry for the duration of a run and is
// strictly sequential: rendering starts only after classification reaches
// its fixed point, so the renderer never observes the registry in flux.
package gen
