package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tendril-lang/tendril"
	"github.com/tendril-lang/tendril/value"
)

func newRedactCmd() *cobra.Command {
	var varName string
	cmd := &cobra.Command{
		Use:   "redact <pattern-file> <doc-file>",
		Short: "Scan a document and blank every binding site of a variable",
		Long: `Runs scan, and for every solution blanks every site of the chosen
variable: strings become a run of block characters the same length,
numbers become 0, and document structure is left intact
(SPEC_FULL.md §12.2). The file is rewritten atomically with renameio.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if varName == "" {
				return fmt.Errorf("tendril redact: --var is required")
			}
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

			redacted := root
			sitesTotal := 0
			err = tendril.Scan(pattern, root, rc.opts, func(sol *tendril.Solution) bool {
				for _, site := range sol.Sites(varName) {
					redacted = replaceAt(redacted, site.Path, redactValue)
					sitesTotal++
				}
				return true
			})
			if err != nil {
				return err
			}
			if sitesTotal == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "tendril redact: no sites found for $%s\n", varName)
				return nil
			}

			out, err := value.ToJSON(redacted, "  ")
			if err != nil {
				return err
			}
			if err := writeFileAtomic(args[1], append(out, '\n')); err != nil {
				return fmt.Errorf("tendril redact: writing %s: %w", args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tendril redact: blanked %d site(s) of $%s in %s\n", sitesTotal, varName, args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&varName, "var", "", "name of the bound variable to redact")
	return cmd
}

// redactValue blanks a leaf value: strings become a run of block
// characters the same length, numbers become 0, everything else is
// left as-is (booleans/null carry no sensitive content to mask; an array
// or object site is returned unchanged, its leaves are not masked).
func redactValue(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindString:
		return value.String(strings.Repeat("█", len([]rune(v.Str()))))
	case value.KindNumber:
		return value.Number(0)
	default:
		return v
	}
}

// replaceAt rebuilds root with the value at path p replaced by
// replace(current value), leaving every sibling untouched. Values are
// immutable, so every ancestor along p is freshly cloned.
func replaceAt(root value.Value, p value.Path, replace func(value.Value) value.Value) value.Value {
	return replaceAtStep(root, p, 0, replace)
}

func replaceAtStep(v value.Value, p value.Path, idx int, replace func(value.Value) value.Value) value.Value {
	if idx == len(p) {
		return replace(v)
	}
	step := p[idx]
	switch step.Kind {
	case value.KeyStep:
		if v.Kind() != value.KindObject {
			return v
		}
		clone := v.Object().Clone()
		child, ok := clone.Get(step.Key)
		if !ok {
			return v
		}
		clone.Set(step.Key, replaceAtStep(child, p, idx+1, replace))
		return value.FromObject(clone)
	case value.IndexStep:
		if v.Kind() != value.KindArray {
			return v
		}
		items := v.Items()
		if step.Index < 0 || step.Index >= len(items) {
			return v
		}
		out := append([]value.Value{}, items...)
		out[step.Index] = replaceAtStep(out[step.Index], p, idx+1, replace)
		return value.Array(out)
	default:
		return v
	}
}
