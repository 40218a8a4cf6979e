package classify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/voxgui/vxbind/internal/decl"
	"github.com/voxgui/vxbind/internal/registry"
)

// MalformedError reports a declaration that violates the input contract.
// It is fatal: the upstream document cannot be locally recovered.
type MalformedError struct {
	ID     decl.ID
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed declaration %q: %s", e.ID, e.Reason)
}

// Stats summarizes a classification run.
type Stats struct {
	Relevant     int // declarations that entered the worklist
	Enums        int // enums registered as transferable
	Structs      int // structs registered as transferable
	Passes       int // struct passes executed, including the final no-progress pass
	Remaining    int // declarations still pending at the fixed point
	Disqualified int // structs permanently disqualified by stripped fields
}

// Classifier walks the declaration graph and registers every declaration it
// can prove trivially transferable.
type Classifier struct {
	graph *decl.Graph
	reg   *registry.Registry
	log   *zap.SugaredLogger

	pending      []decl.ID
	classified   map[decl.ID]bool
	disqualified map[decl.ID]bool
	stats        Stats
}

// New creates a classifier over graph, registering results into reg.
// The worklist is the graph's document order. A nil logger disables logging.
func New(graph *decl.Graph, reg *registry.Registry, log *zap.SugaredLogger) *Classifier {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	var pending []decl.ID
	for _, id := range graph.IDs() {
		d, _ := graph.Lookup(id)
		if d.Kind.Relevant() {
			pending = append(pending, id)
		}
	}

	return &Classifier{
		graph:        graph,
		reg:          reg,
		log:          log,
		pending:      pending,
		classified:   make(map[decl.ID]bool),
		disqualified: make(map[decl.ID]bool),
		stats:        Stats{Relevant: len(pending)},
	}
}

// Run classifies enums, then iterates struct passes to the fixed point.
func (c *Classifier) Run() error {
	if err := c.classifyEnums(); err != nil {
		return err
	}
	if err := c.classifyStructs(); err != nil {
		return err
	}
	c.stats.Remaining = len(c.pending)
	c.log.Infow("classification complete",
		"relevant", c.stats.Relevant,
		"enums", c.stats.Enums,
		"structs", c.stats.Structs,
		"passes", c.stats.Passes,
		"remaining", c.stats.Remaining)
	return nil
}

// Classified reports whether this run registered the given declaration.
// Pre-seeded declarations (hand-mapped in the manifest) report false.
func (c *Classifier) Classified(id decl.ID) bool {
	return c.classified[id]
}

// Pending returns the ids still unclassified after Run, in worklist order.
func (c *Classifier) Pending() []decl.ID {
	out := make([]decl.ID, len(c.pending))
	copy(out, c.pending)
	return out
}

// Stats returns the run's summary counters.
func (c *Classifier) Stats() Stats {
	return c.stats
}

// classifyEnums performs the single enum pass: an enum is transferable iff
// every variant is plain.
func (c *Classifier) classifyEnums() error {
	var kept []decl.ID
	for _, id := range c.pending {
		d, _ := c.graph.Lookup(id)
		if d.Kind != decl.KindEnum {
			kept = append(kept, id)
			continue
		}

		if c.seeded(d) {
			// Hand-mapped ahead of classification; nothing to prove.
			continue
		}

		if !enumTransferable(d.Enum) {
			kept = append(kept, id)
			continue
		}

		if err := c.register(id, d); err != nil {
			return err
		}
		c.stats.Enums++
	}
	c.pending = kept
	return nil
}

// classifyStructs repeats worklist passes until a full pass registers
// nothing new.
func (c *Classifier) classifyStructs() error {
	for {
		c.stats.Passes++
		progress := 0

		var kept []decl.ID
		for _, id := range c.pending {
			d, _ := c.graph.Lookup(id)
			if d.Kind != decl.KindStruct || c.disqualified[id] {
				kept = append(kept, id)
				continue
			}

			if c.seeded(d) {
				continue
			}

			switch c.structStatus(d) {
			case statusDisqualified:
				// Left pending forever; another policy may still
				// surface it as an opaque handle.
				c.disqualified[id] = true
				c.stats.Disqualified++
				kept = append(kept, id)
			case statusPending:
				kept = append(kept, id)
			case statusTransferable:
				if err := c.register(id, d); err != nil {
					return err
				}
				c.stats.Structs++
				progress++
			}
		}
		c.pending = kept

		c.log.Debugw("struct pass finished",
			"pass", c.stats.Passes,
			"classified", progress,
			"pending", len(c.pending))

		if progress == 0 {
			return nil
		}
	}
}

type structStatus int

const (
	statusPending structStatus = iota
	statusDisqualified
	statusTransferable
)

// structStatus evaluates one struct against the current registry state.
// A zero-field struct is trivially transferable.
func (c *Classifier) structStatus(d *decl.Declaration) structStatus {
	if d.Struct.HasStrippedFields {
		return statusDisqualified
	}
	for _, f := range d.Struct.Fields {
		kt, ok := c.reg.Lookup(f.Type)
		if !ok {
			// Field type not resolved yet; retry next pass.
			return statusPending
		}
		if !kt.Transferable {
			return statusPending
		}
	}
	return statusTransferable
}

// register inserts the declaration into the registry under its qualified
// source name. A nameless declaration is a fatal input-contract violation.
func (c *Classifier) register(id decl.ID, d *decl.Declaration) error {
	if d.Name == "" {
		return &MalformedError{ID: id, Reason: "declaration has no name"}
	}
	kt := registry.KnownType{DisplayName: d.Name, Transferable: true}
	if err := c.reg.Register(d.QualifiedName(), kt); err != nil {
		return &MalformedError{ID: id, Reason: err.Error()}
	}
	c.classified[id] = true
	c.log.Debugw("registered transferable type",
		"id", id, "name", d.QualifiedName(), "kind", d.Kind)
	return nil
}

// seeded reports whether the declaration's qualified name was registered
// before this run started, i.e. hand-mapped through a manifest seed.
func (c *Classifier) seeded(d *decl.Declaration) bool {
	name := d.QualifiedName()
	if name == "" {
		return false
	}
	_, ok := c.reg.Lookup(name)
	return ok
}

// enumTransferable reports whether every variant of the enum is plain.
func enumTransferable(e *decl.EnumDecl) bool {
	for _, v := range e.Variants {
		if !v.Plain() {
			return false
		}
	}
	return true
}
