package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tendril-lang/tendril"
)

func newCompileCmd() *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "compile <pattern-file>",
		Short: "Compile a pattern and report any syntax/semantic errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := compilePattern(args[0])
			if err != nil {
				return err
			}
			if !explain {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			insp := tendril.NewInspector(p)
			printUnique(cmd, "bindings", insp.FindBindings())
			printUnique(cmd, "buckets", insp.FindBuckets())
			printUnique(cmd, "labels", insp.FindLabels())
			return nil
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "summarize the compiled pattern's bindings, buckets, and labels")
	return cmd
}

func printUnique(cmd *cobra.Command, heading string, names []string) {
	seen := map[string]struct{}{}
	var uniq []string
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		uniq = append(uniq, n)
	}
	sort.Strings(uniq)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", heading, uniq)
}
