package cli

import (
	"github.com/spf13/pflag"

	"github.com/roach88/filtertree/internal/config"
	"github.com/roach88/filtertree/internal/engine"
	"github.com/roach88/filtertree/internal/query"
)

// Flags below override configuration keys of the same meaning; config.Load
// reads them only when they were set on the command line.

func addDepthFlag(fs *pflag.FlagSet) {
	fs.Int("max-depth", query.DefaultMaxDepth, "maximum nesting depth")
}

func addVersionFlag(fs *pflag.FlagSet) {
	fs.Bool("strict-version", true, "reject query files without a version")
}

func addEngineFlags(fs *pflag.FlagSet) {
	fs.String("locale", config.DefaultLocale, "collation locale for text ordering (BCP 47)")
	fs.StringSlice("date-layout", engine.DefaultDateLayouts, "accepted date layouts, in order")
}
