package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/filtertree/internal/field"
	"github.com/roach88/filtertree/internal/querysql"
	"github.com/roach88/filtertree/internal/querysrc"
	"github.com/roach88/filtertree/internal/querytext"
)

// Compile targets accepted by --target besides the querysrc languages.
const (
	TargetSQL  = "sql"
	TargetText = "text"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Target       string
	Fields       string
	Statement    bool
	Placeholders bool
	Output       string // output file path
}

// CompileResult is the JSON payload of the compile command.
type CompileResult struct {
	Target string `json:"target"`
	Output string `json:"output"`
	Params []any  `json:"params,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query-file>",
		Short: "Compile a query to SQL, text, JavaScript or Python",
		Long: `Compile a query tree into another representation.

Targets:
  sql     WHERE fragment (or a full SELECT with --statement)
  text    plain-language description
  js      JavaScript predicate function
  python  Python predicate function

Field definitions are optional. They supply titles and option labels for
text output and drive number and date handling in js and python output.

Examples:
  filtertree compile query.yaml --target sql --table people
  filtertree compile query.yaml --target sql --placeholders --format json
  filtertree compile query.yaml --target python --fields fields.yaml -o filter.py`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", TargetSQL, "output target (sql|text|js|python)")
	cmd.Flags().StringVar(&opts.Fields, "fields", "", "field definitions file (JSON or YAML)")
	cmd.Flags().BoolVar(&opts.Statement, "statement", false, "sql: emit a full SELECT statement")
	cmd.Flags().BoolVar(&opts.Placeholders, "placeholders", false, "sql: emit ? placeholders and list the parameters")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().String("table", "", "sql: table name (default from config)")
	cmd.Flags().Int("indent", 0, "js/python: spaces per indentation level (0 keeps the language default)")
	addVersionFlag(cmd.Flags())

	return cmd
}

func runCompile(opts *CompileOptions, queryFile string, cmd *cobra.Command) error {
	cfg, err := opts.settings(cmd)
	if err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	fields := field.NewSet()
	if opts.Fields != "" {
		if fields, err = LoadFields(opts.Fields); err != nil {
			return loadFailure(formatter, err)
		}
	}
	root, err := LoadQuery(queryFile, cfg)
	if err != nil {
		return loadFailure(formatter, err)
	}

	result := CompileResult{Target: strings.ToLower(opts.Target)}
	switch result.Target {
	case TargetSQL:
		var sqlOpts []querysql.Option
		if opts.Placeholders {
			sqlOpts = append(sqlOpts, querysql.WithPlaceholders())
		}
		compiler := querysql.NewSQLCompiler(sqlOpts...)
		if opts.Statement {
			result.Output, result.Params = compiler.Statement(root, cfg.Table)
		} else {
			result.Output, result.Params = compiler.Where(root, cfg.Table)
		}
	case TargetText:
		result.Output = querytext.Compile(root, fields)
	default:
		target, err := querysrc.ParseTarget(opts.Target)
		if err != nil {
			return usageFailure(formatter, err.Error())
		}
		source, err := querysrc.Compile(root, fields, target, cfg.SourceOptions()...)
		if err != nil {
			return usageFailure(formatter, err.Error())
		}
		result.Target = string(target)
		result.Output = strings.TrimSuffix(source, "\n")
	}
	formatter.VerboseLog("Compiled %s to %s", queryFile, result.Target)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(result.Output+"\n"), 0o644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "✓ Wrote %s output to %s\n", result.Target, opts.Output)
		return nil
	}
	fmt.Fprintln(formatter.Writer, result.Output)
	for i, p := range result.Params {
		fmt.Fprintf(formatter.Writer, "  $%d = %v\n", i+1, p)
	}
	return nil
}
