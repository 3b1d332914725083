package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/filtertree/internal/query"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Fields string
}

// ValidationReport is the JSON payload of the validate command.
type ValidationReport struct {
	Valid      bool                    `json:"valid"`
	Errors     []query.ValidationError `json:"errors,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
	Conditions int                     `json:"conditions"`
	Depth      int                     `json:"depth"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <query-file>",
		Short: "Validate a query against a field set",
		Long: `Validate a query tree against a field set.

Checks ids, group connectives, empty groups, nesting depth, field
references, operator arity and custom expression syntax. Operators that are
not offered for a field's type are reported as warnings.

Exit codes:
  0 - Query is valid
  1 - Query is invalid
  2 - Command error (missing files, undecodable input)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fields, "fields", "", "field definitions file (JSON or YAML)")
	cmd.Flags().Bool("allow-empty-groups", false, "accept groups without children")
	addDepthFlag(cmd.Flags())
	addVersionFlag(cmd.Flags())

	return cmd
}

func runValidate(opts *ValidateOptions, queryFile string, cmd *cobra.Command) error {
	cfg, err := opts.settings(cmd)
	if err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	if opts.Fields == "" {
		return usageFailure(formatter, "--fields is required")
	}
	fields, err := LoadFields(opts.Fields)
	if err != nil {
		return loadFailure(formatter, err)
	}
	root, err := LoadQuery(queryFile, cfg)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %d field(s) from %s", fields.Len(), opts.Fields)

	result := query.Validate(root, fields, cfg.ValidateOptions()...)
	report := ValidationReport{
		Valid:      result.IsValid,
		Errors:     result.Issues,
		Warnings:   result.Warnings,
		Conditions: query.CountConditions(root),
		Depth:      query.Depth(root),
	}

	if !report.Valid {
		return outputValidationErrors(formatter, report)
	}
	return outputValidateSuccess(formatter, report)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, report ValidationReport) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Query valid (%d condition(s), depth %d)\n", report.Conditions, report.Depth)
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	return nil
}

// outputValidationErrors outputs the issues of an invalid query.
func outputValidationErrors(formatter *OutputFormatter, report ValidationReport) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(report.Errors)))

	if formatter.Format == "json" {
		first := report.Errors[0]
		if err := formatter.Failure(report, first.Code, first.Message); err != nil {
			return err
		}
		return failure
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, issue := range report.Errors {
		fmt.Fprintf(w, "  %s\n", issue.Error())
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	return failure
}
