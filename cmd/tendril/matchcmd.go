package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendril-lang/tendril"
)

func newMatchCmd() *cobra.Command {
	var first bool
	cmd := &cobra.Command{
		Use:   "match <pattern-file> <doc-file>",
		Short: "Run an anchored match of a pattern against a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := newRunContext(cmd)
			if err != nil {
				return err
			}
			defer rc.cleanup()

			pattern, err := compilePattern(args[0])
			if err != nil {
				return err
			}
			root, err := readDocument(args[1])
			if err != nil {
				return err
			}

			format := outputFormat(cmd)
			if first {
				sol, err := tendril.FirstMatch(pattern, root, rc.opts)
				if err != nil {
					return err
				}
				if sol == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "no match")
					return nil
				}
				printSolution(cmd.OutOrStdout(), 0, sol, format)
				return nil
			}

			idx := 0
			err = tendril.Match(pattern, root, rc.opts, func(sol *tendril.Solution) bool {
				printSolution(cmd.OutOrStdout(), idx, sol, format)
				idx++
				return true
			})
			if err != nil {
				return err
			}
			if idx == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no match")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&first, "first", false, "stop after the first solution")
	return cmd
}
