package gen

import (
	"go.uber.org/zap"

	"github.com/voxgui/vxbind/internal/classify"
	"github.com/voxgui/vxbind/internal/decl"
	"github.com/voxgui/vxbind/internal/ir"
	"github.com/voxgui/vxbind/internal/manifest"
	"github.com/voxgui/vxbind/internal/naming"
	"github.com/voxgui/vxbind/internal/registry"
	"github.com/voxgui/vxbind/internal/render"
)

// Options configures one generation run.
type Options struct {
	// Manifest supplies the run configuration; nil uses built-in defaults.
	Manifest *manifest.Manifest

	// OpaqueHandles forces handle promotion on even when the manifest
	// leaves it off.
	OpaqueHandles bool

	// Logger receives progress diagnostics. Nil disables logging.
	Logger *zap.SugaredLogger
}

// Stats extends the classifier counters with rendering-side tallies.
type Stats struct {
	classify.Stats

	// Handles counts declarations promoted to opaque handle classes.
	Handles int

	// Skipped counts classified structs that could not be lowered because
	// a field type has no primitive IR representation yet.
	Skipped int
}

// Result holds the two output buffers and everything a caller needs to
// report on the run. The registry is read-only once Run returns.
type Result struct {
	Host     string
	Native   string
	Registry *registry.Registry
	Pending  []decl.ID
	Stats    Stats
}

// Run executes the full pipeline over one declaration graph.
// A malformed document aborts with no output produced.
func Run(g *decl.Graph, opts Options) (*Result, error) {
	m := opts.Manifest
	if m == nil {
		m = manifest.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	reg := registry.Seeded()
	if err := m.ApplySeeds(reg); err != nil {
		return nil, err
	}

	c := classify.New(g, reg, log)
	if err := c.Run(); err != nil {
		return nil, err
	}

	stats := Stats{Stats: c.Stats()}
	promote := m.OpaqueHandles || opts.OpaqueHandles
	pending := make(map[decl.ID]bool)
	for _, id := range c.Pending() {
		pending[id] = true
	}

	var items []ir.Item
	for _, id := range g.IDs() {
		d, _ := g.Lookup(id)

		switch {
		case c.Classified(id) && d.Kind == decl.KindEnum:
			item, err := lowerEnum(id, d)
			if err != nil {
				return nil, err
			}
			items = append(items, item)

		case c.Classified(id) && d.Kind == decl.KindStruct:
			item, ok, err := lowerStruct(id, d, reg)
			if err != nil {
				return nil, err
			}
			if !ok {
				stats.Skipped++
				log.Debugw("struct not expressible in IR yet", "id", id, "name", d.QualifiedName())
				continue
			}
			items = append(items, item)

		case promote && pending[id] && (d.Kind == decl.KindStruct || d.Kind == decl.KindEnum):
			item, err := lowerHandle(id, d)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			stats.Handles++
		}
	}

	scheme := naming.Scheme{TypePrefix: m.TypePrefix}
	res := &Result{
		Host:     render.HostBuffer(items, scheme),
		Native:   render.NativeBuffer(items, scheme),
		Registry: reg,
		Pending:  c.Pending(),
		Stats:    stats,
	}

	log.Infow("generation complete",
		"items", len(items),
		"handles", stats.Handles,
		"skipped", stats.Skipped,
		"host_bytes", len(res.Host),
		"native_bytes", len(res.Native))

	return res, nil
}
