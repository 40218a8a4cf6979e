package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxgui/vxbind/internal/classify"
	"github.com/voxgui/vxbind/internal/decl"
	"github.com/voxgui/vxbind/internal/manifest"
	"github.com/voxgui/vxbind/internal/registry"
)

// ClassifyOptions holds flags for the classify command.
type ClassifyOptions struct {
	*RootOptions
	Manifest string
}

// ClassifyReport is the JSON payload for a classify run.
type ClassifyReport struct {
	Registered []RegisteredType `json:"registered"`
	Pending    []PendingDecl    `json:"pending"`
	Relevant   int              `json:"relevant"`
	Classified int              `json:"classified"`
	Passes     int              `json:"passes"`
}

// RegisteredType is one registry entry in a classify report.
type RegisteredType struct {
	Source       string `json:"source"`
	Display      string `json:"display"`
	Transferable bool   `json:"transferable"`
}

// PendingDecl is one unclassified declaration in a classify report.
type PendingDecl struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Kind string `json:"kind"`
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClassifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "classify <index.json>",
		Short: "Report which declarations are trivially transferable",
		Long: `Run classification over a declaration index without emitting source.

Useful for inspecting how much of a library's surface can cross the boundary
by value, and which declarations remain pending at the fixed point.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Manifest, "manifest", "m", "", "generation manifest (CUE)")

	return cmd
}

func runClassify(opts *ClassifyOptions, indexPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	logger, err := newLogger(opts.Verbose)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGenerate, err.Error())
	}
	defer logger.Sync()

	graph, err := decl.LoadFile(indexPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeLoad, err.Error())
	}

	m := manifest.Default()
	if opts.Manifest != "" {
		m, err = manifest.Load(opts.Manifest)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeManifest, err.Error())
		}
	}

	reg := registry.Seeded()
	if err := m.ApplySeeds(reg); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeManifest, err.Error())
	}

	c := classify.New(graph, reg, logger)
	if err := c.Run(); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGenerate, err.Error())
	}

	report := buildClassifyReport(graph, reg, c)
	return outputClassifySuccess(formatter, report)
}

// buildClassifyReport collects registry entries and pending declarations in
// deterministic (insertion/worklist) order.
func buildClassifyReport(graph *decl.Graph, reg *registry.Registry, c *classify.Classifier) ClassifyReport {
	stats := c.Stats()
	report := ClassifyReport{
		Relevant:   stats.Relevant,
		Classified: stats.Enums + stats.Structs,
		Passes:     stats.Passes,
	}

	for _, name := range reg.Names() {
		kt, _ := reg.Lookup(name)
		report.Registered = append(report.Registered, RegisteredType{
			Source:       name,
			Display:      kt.DisplayName,
			Transferable: kt.Transferable,
		})
	}

	for _, id := range c.Pending() {
		d, _ := graph.Lookup(id)
		report.Pending = append(report.Pending, PendingDecl{
			ID:   string(id),
			Name: d.QualifiedName(),
			Kind: string(d.Kind),
		})
	}

	return report
}

// outputClassifySuccess reports classification results.
func outputClassifySuccess(formatter *OutputFormatter, report ClassifyReport) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "✓ Classified %d of %d relevant declaration(s) in %d pass(es)\n\n",
		report.Classified, report.Relevant, report.Passes)

	fmt.Fprintln(formatter.Writer, "Registered types:")
	for _, r := range report.Registered {
		marker := "copy"
		if !r.Transferable {
			marker = "opaque"
		}
		fmt.Fprintf(formatter.Writer, "  %s -> %s (%s)\n", r.Source, r.Display, marker)
	}

	if len(report.Pending) > 0 {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer, "Pending:")
		for _, p := range report.Pending {
			fmt.Fprintf(formatter.Writer, "  %s (%s, id %s)\n", p.Name, p.Kind, p.ID)
		}
	}

	return nil
}
