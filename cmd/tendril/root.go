package main

import (
	"github.com/spf13/cobra"

	"github.com/tendril-lang/tendril/config"
)

var cfg config.Config

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tendril",
		Short: "Tendril - a pattern-matching language for JSON-like trees",
		Long: `Tendril compiles and runs patterns against JSON-like documents:
anchored match, unanchored scan, variable capture, and bucket collection.`,
		SilenceUsage: true,
	}

	fs := cmd.PersistentFlags()
	fs.String("config", "", "path to config file (default: XDG config dir)")
	fs.Int("step-budget", 0, "matcher step budget (0 uses the built-in default)")
	fs.Int("max-solutions", 0, "stop after this many solutions (0 = unbounded)")
	fs.String("output", "", "output format: text or json")
	fs.Bool("color", true, "color setting, stored in the loaded config; no command colorizes its output")
	fs.Bool("trace", false, "log engine traversal events via zap")
	fs.String("metrics-addr", "", "expose Prometheus engine counters on this address")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(fs)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	}

	cmd.AddCommand(newCompileCmd())
	cmd.AddCommand(newMatchCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newRedactCmd())
	cmd.AddCommand(newExploreCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}
