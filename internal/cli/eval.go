package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/filtertree/internal/codec"
	"github.com/roach88/filtertree/internal/engine"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Fields string
	Data   string
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <query-file>",
		Short: "Evaluate a query against records",
		Long: `Evaluate a query tree against a list of records.

Records are read from a JSON array or a YAML list of objects. Matching
records are printed in their original order.

Examples:
  filtertree eval query.yaml --fields fields.yaml --data people.json
  filtertree eval query.json --fields fields.yaml --data people.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fields, "fields", "", "field definitions file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.Data, "data", "", "records file (JSON or YAML)")
	addDepthFlag(cmd.Flags())
	addVersionFlag(cmd.Flags())
	addEngineFlags(cmd.Flags())

	return cmd
}

func runEval(opts *EvalOptions, queryFile string, cmd *cobra.Command) error {
	cfg, err := opts.settings(cmd)
	if err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	if opts.Fields == "" {
		return usageFailure(formatter, "--fields is required")
	}
	if opts.Data == "" {
		return usageFailure(formatter, "--data is required")
	}

	fields, err := LoadFields(opts.Fields)
	if err != nil {
		return loadFailure(formatter, err)
	}
	records, err := LoadRecords(opts.Data)
	if err != nil {
		return loadFailure(formatter, err)
	}
	root, err := LoadQuery(queryFile, cfg)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Evaluating %d record(s)", len(records))

	eng := engine.New[map[string]any](fields, cfg.EngineOptions(opts.Logger)...)
	result := eng.Execute(records, root)
	if !result.Success {
		_ = formatter.Error(ErrCodeGeneric, result.Error, nil)
		return NewExitError(ExitFailure, fmt.Sprintf("evaluation failed: %s", result.Error))
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, record := range result.Data {
		line, err := codec.CanonicalJSON(record)
		if err != nil {
			return fmt.Errorf("formatting record: %w", err)
		}
		fmt.Fprintln(w, string(line))
	}
	fmt.Fprintf(w, "%d of %d record(s) matched\n", result.FilteredCount, result.TotalCount)
	return nil
}
