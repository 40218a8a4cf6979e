package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxgui/vxbind/internal/decl"
	"github.com/voxgui/vxbind/internal/gen"
	"github.com/voxgui/vxbind/internal/manifest"
	"github.com/voxgui/vxbind/internal/snapshot"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Manifest      string // manifest file path
	OutHost       string // host-language output file
	OutNative     string // native-language output file
	SnapshotDB    string // optional run-ledger database
	OpaqueHandles bool   // promote pending types to opaque handles
}

// GenerateReport is the JSON payload for a successful generate run.
type GenerateReport struct {
	Host      string `json:"host,omitempty"`
	Native    string `json:"native,omitempty"`
	Relevant  int    `json:"relevant"`
	Enums     int    `json:"enums"`
	Structs   int    `json:"structs"`
	Handles   int    `json:"handles"`
	Skipped   int    `json:"skipped"`
	Remaining int    `json:"remaining"`
	Passes    int    `json:"passes"`
	RunID     string `json:"run_id,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <index.json>",
		Short: "Generate host and native binding source from a declaration index",
		Long: `Generate paired host-language and native-language source files from a
library's declaration index.

Classification decides which types can be passed by value across the
boundary; everything else is left out, or surfaced as opaque handles when
--opaque-handles (or the manifest) opts in. Output is byte-stable: the same
index document always produces identical buffers.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Manifest, "manifest", "m", "", "generation manifest (CUE)")
	cmd.Flags().StringVar(&opts.OutHost, "out-host", "", "host-language output file")
	cmd.Flags().StringVar(&opts.OutNative, "out-native", "", "native-language output file")
	cmd.Flags().StringVar(&opts.SnapshotDB, "snapshot-db", "", "record this run in a snapshot ledger and check for drift")
	cmd.Flags().BoolVar(&opts.OpaqueHandles, "opaque-handles", false, "surface unclassified types as opaque handles")

	return cmd
}

func runGenerate(opts *GenerateOptions, indexPath string, cmd *cobra.Command) error {
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

	input, err := os.ReadFile(indexPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeLoad, err.Error())
	}

	graph, err := decl.Parse(input)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeLoad, err.Error())
	}
	formatter.VerboseLog("Loaded %d declaration(s) from %s", graph.Len(), indexPath)

	m := manifest.Default()
	if opts.Manifest != "" {
		m, err = manifest.Load(opts.Manifest)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeManifest, err.Error())
		}
		formatter.VerboseLog("Loaded manifest %s (%d seed(s))", opts.Manifest, len(m.Seeds))
	}

	result, err := gen.Run(graph, gen.Options{
		Manifest:      m,
		OpaqueHandles: opts.OpaqueHandles,
		Logger:        logger,
	})
	if err != nil {
		// Malformed input aborts with no output produced.
		return fail(formatter, ExitCommandError, ErrCodeGenerate, err.Error())
	}

	if opts.OutHost != "" {
		if err := os.WriteFile(opts.OutHost, []byte(result.Host), 0644); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWrite, err.Error())
		}
	}
	if opts.OutNative != "" {
		if err := os.WriteFile(opts.OutNative, []byte(result.Native), 0644); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWrite, err.Error())
		}
	}

	report := GenerateReport{
		Relevant:  result.Stats.Relevant,
		Enums:     result.Stats.Enums,
		Structs:   result.Stats.Structs,
		Handles:   result.Stats.Handles,
		Skipped:   result.Stats.Skipped,
		Remaining: result.Stats.Remaining,
		Passes:    result.Stats.Passes,
	}
	if opts.OutHost == "" && opts.OutNative == "" {
		report.Host = result.Host
		report.Native = result.Native
	}

	if opts.SnapshotDB != "" {
		run := snapshot.NewRun(input, []byte(result.Host), []byte(result.Native),
			result.Stats.Relevant, result.Stats.Enums+result.Stats.Structs)
		report.RunID = run.ID

		drift, err := recordRun(opts.SnapshotDB, run)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeSnapshot, err.Error())
		}
		if drift != nil {
			msg := fmt.Sprintf("output drifted from prior run %s (host changed: %v, native changed: %v)",
				drift.PriorID, drift.HostChanged, drift.NativeChanged)
			_ = formatter.Error(ErrCodeDrift, msg, drift)
			return NewExitError(ExitFailure, msg)
		}
	}

	return outputGenerateSuccess(formatter, opts, report, result.Host, result.Native)
}

// recordRun verifies the run against the ledger's prior record, then appends
// it. The run is recorded even when drift is detected, so the ledger keeps
// the full history.
func recordRun(path string, run snapshot.Run) (*snapshot.Drift, error) {
	ledger, err := snapshot.Open(path)
	if err != nil {
		return nil, err
	}
	defer ledger.Close()

	drift, err := ledger.Verify(run)
	if err != nil {
		return nil, err
	}
	if err := ledger.Record(run); err != nil {
		return nil, err
	}
	return drift, nil
}

// outputGenerateSuccess reports the finished run.
func outputGenerateSuccess(formatter *OutputFormatter, opts *GenerateOptions, report GenerateReport, host, native string) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "✓ Generated %d enum(s), %d struct(s), %d handle(s); %d declaration(s) left unclassified\n",
		report.Enums, report.Structs, report.Handles, report.Remaining)

	if opts.OutHost != "" {
		fmt.Fprintf(formatter.Writer, "Wrote host source to %s\n", opts.OutHost)
	}
	if opts.OutNative != "" {
		fmt.Fprintf(formatter.Writer, "Wrote native source to %s\n", opts.OutNative)
	}

	if opts.OutHost == "" && opts.OutNative == "" {
		fmt.Fprintf(formatter.Writer, "\n// ----- host -----\n%s\n// ----- native -----\n%s", host, native)
	}

	return nil
}
