package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/filtertree/internal/codec"
	"github.com/roach88/filtertree/internal/query"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	To string
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <query-file>",
		Short: "Rewrite a query file as JSON or YAML",
		Long: `Decode a query file in either format and write it back as a versioned
envelope in the requested format. Unversioned input is upgraded to the
current version when --strict-version=false.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "yaml", "output format (json|yaml)")
	addVersionFlag(cmd.Flags())

	return cmd
}

func runConvert(opts *ConvertOptions, queryFile string, cmd *cobra.Command) error {
	cfg, err := opts.settings(cmd)
	if err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	var encode func(*query.Group) ([]byte, error)
	switch strings.ToLower(opts.To) {
	case "json":
		encode = codec.EncodeJSON
	case "yaml", "yml":
		encode = codec.EncodeYAML
	default:
		return usageFailure(formatter, "--to must be json or yaml")
	}

	root, err := LoadQuery(queryFile, cfg)
	if err != nil {
		return loadFailure(formatter, err)
	}
	data, err := encode(root)
	if err != nil {
		return loadFailure(formatter, err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
