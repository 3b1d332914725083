package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/filtertree/internal/field"
	"github.com/roach88/filtertree/internal/operator"
)

// OperatorInfo is one row of the operators listing.
type OperatorInfo struct {
	Operator   string   `json:"operator"`
	Label      string   `json:"label"`
	Arity      string   `json:"arity"`
	FieldTypes []string `json:"field_types"`
}

// NewOperatorsCommand creates the operators command.
func NewOperatorsCommand(rootOpts *RootOptions) *cobra.Command {
	var fieldType string

	cmd := &cobra.Command{
		Use:   "operators",
		Short: "List the operator registry",
		Long: `List every operator with its label, value arity and the field types it is
offered for. With --type only the operators offered for that field type are
listed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperators(rootOpts, fieldType, cmd)
		},
	}

	cmd.Flags().StringVar(&fieldType, "type", "", "only operators offered for this field type")

	return cmd
}

func runOperators(opts *RootOptions, fieldType string, cmd *cobra.Command) error {
	if _, err := opts.settings(cmd); err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	var filter field.Type
	if fieldType != "" {
		t, err := field.ParseType(fieldType)
		if err != nil {
			return usageFailure(formatter, err.Error())
		}
		filter = t
	}

	infos := []OperatorInfo{}
	for _, c := range operator.All() {
		if filter != "" && !c.AppliesTo(filter) {
			continue
		}
		types := make([]string, len(c.FieldTypes))
		for i, t := range c.FieldTypes {
			types[i] = string(t)
		}
		infos = append(infos, OperatorInfo{
			Operator:   string(c.Operator),
			Label:      c.Label,
			Arity:      c.Arity.String(),
			FieldTypes: types,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATOR\tLABEL\tARITY\tFIELD TYPES")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Operator, info.Label, info.Arity, strings.Join(info.FieldTypes, ","))
	}
	return tw.Flush()
}
