package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/filtertree/internal/codec"
)

// FingerprintOptions holds flags for the fingerprint command.
type FingerprintOptions struct {
	*RootOptions
	IgnoreIDs bool
}

// FingerprintResult is the JSON payload of the fingerprint command.
type FingerprintResult struct {
	Fingerprint string `json:"fingerprint"`
	Domain      string `json:"domain"`
	IgnoreIDs   bool   `json:"ignore_ids"`
}

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FingerprintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fingerprint <query-file>",
		Short: "Print the content fingerprint of a query",
		Long: `Print the SHA-256 fingerprint of a query's canonical encoding.

Two files with the same tree have the same fingerprint regardless of
format, key order or Unicode normalization. With --ignore-ids trees that
differ only in node ids also share a fingerprint.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.IgnoreIDs, "ignore-ids", false, "leave node ids out of the fingerprint")
	addVersionFlag(cmd.Flags())

	return cmd
}

func runFingerprint(opts *FingerprintOptions, queryFile string, cmd *cobra.Command) error {
	cfg, err := opts.settings(cmd)
	if err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	root, err := LoadQuery(queryFile, cfg)
	if err != nil {
		return loadFailure(formatter, err)
	}

	var canonical []codec.CanonicalOption
	if opts.IgnoreIDs {
		canonical = append(canonical, codec.IgnoreIDs())
	}
	sum, err := codec.Fingerprint(root, canonical...)
	if err != nil {
		return loadFailure(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(FingerprintResult{
			Fingerprint: sum,
			Domain:      codec.DomainQuery,
			IgnoreIDs:   opts.IgnoreIDs,
		})
	}
	fmt.Fprintln(formatter.Writer, sum)
	return nil
}
