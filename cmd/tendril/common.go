package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/tendril-lang/tendril"
	"github.com/tendril-lang/tendril/hooks"
	"github.com/tendril-lang/tendril/value"
)

// writeFileAtomic replaces path's contents without risking a partial
// write on crash, the same renameio.NewPendingFile/
// CloseAtomicallyReplace idiom aretext/file.Save uses.
func writeFileAtomic(path string, data []byte) error {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644), renameio.WithExistingPermissions())
	if err != nil {
		return fmt.Errorf("renameio.NewPendingFile: %w", err)
	}
	defer pf.Cleanup()
	if _, err := pf.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return pf.CloseAtomicallyReplace()
}

// runContext bundles the per-invocation resources a compile/match/scan
// command needs: the resolved engine options (with trace/metrics hooks
// wired in if requested) and a cleanup func to flush/stop them.
type runContext struct {
	opts    tendril.Options
	cleanup func()
}

func newRunContext(cmd *cobra.Command) (*runContext, error) {
	var hs hooks.MultiEngineHooks

	trace, _ := cmd.Flags().GetBool("trace")
	var zh *zapEngineHooks
	if trace {
		z, err := newZapEngineHooks()
		if err != nil {
			return nil, fmt.Errorf("tendril: starting trace logger: %w", err)
		}
		zh = z
		hs = append(hs, zh)
	}

	metricsAddr := cfg.MetricsAddr
	if v, _ := cmd.Flags().GetString("metrics-addr"); v != "" {
		metricsAddr = v
	}
	var mh *metricsEngineHooks
	var cancelMetrics context.CancelFunc
	if metricsAddr != "" {
		mh = newMetricsEngineHooks()
		hs = append(hs, mh)
		var ctx context.Context
		ctx, cancelMetrics = context.WithCancel(context.Background())
		go func() {
			if err := serveMetrics(ctx, metricsAddr, mh); err != nil {
				fmt.Fprintln(os.Stderr, "tendril: metrics server:", err)
			}
		}()
	}

	budget := cfg.StepBudget
	if v, _ := cmd.Flags().GetInt("step-budget"); v != 0 {
		budget = v
	}
	maxSolutions := cfg.MaxSolutions
	if v, _ := cmd.Flags().GetInt("max-solutions"); v != 0 {
		maxSolutions = v
	}

	opts := tendril.Options{StepBudget: budget, MaxSolutions: maxSolutions}
	if len(hs) > 0 {
		opts.Hooks = hs
	}

	return &runContext{
		opts: opts,
		cleanup: func() {
			if zh != nil {
				_ = zh.Sync()
			}
			if cancelMetrics != nil {
				cancelMetrics()
			}
		},
	}, nil
}

// compilePattern reads pattern source from a file path ("-" for
// stdin) and compiles it, reporting the oops-wrapped syntax/semantic
// error on failure.
func compilePattern(path string) (*tendril.Pattern, error) {
	src, err := readAll(path)
	if err != nil {
		return nil, err
	}
	p, err := tendril.Compile(src, hooks.NoopParserHooks{})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func readDocument(path string) (value.Value, error) {
	src, err := readAllBytes(path)
	if err != nil {
		return value.Value{}, err
	}
	v, err := value.FromJSONBytes(src)
	if err != nil {
		return value.Value{}, fmt.Errorf("tendril: parsing %s as JSON: %w", path, err)
	}
	return v, nil
}

func readAll(path string) (string, error) {
	b, err := readAllBytes(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readAllBytes(path string) ([]byte, error) {
	if path == "-" || path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func outputFormat(cmd *cobra.Command) string {
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		return v
	}
	if cfg.Output != "" {
		return cfg.Output
	}
	return "text"
}

// printSolution renders one solution in deterministic (sorted-name)
// order: as text, its bindings and buckets; as JSON, an object holding
// the solution index and its bindings (buckets are not included).
func printSolution(w io.Writer, idx int, sol *tendril.Solution, format string) {
	if format == "json" {
		printSolutionJSON(w, idx, sol)
		return
	}
	fmt.Fprintf(w, "solution %d:\n", idx)
	bindings := sol.Bindings()
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b := bindings[name]
		s, ok := value.Stringify(b.Value)
		if !ok {
			s = "<complex value>"
		}
		fmt.Fprintf(w, "  $%s = %s\n", name, s)
	}

	buckets := sol.Buckets()
	bucketNames := make([]string, 0, len(buckets))
	for name := range buckets {
		bucketNames = append(bucketNames, name)
	}
	sort.Strings(bucketNames)
	for _, name := range bucketNames {
		bk := buckets[name]
		if bk.IsArray {
			fmt.Fprintf(w, "  @%s = %d item(s)\n", name, len(bk.Items))
		} else if bk.Object != nil {
			fmt.Fprintf(w, "  %%%s = %d key(s)\n", name, bk.Object.Len())
		}
	}
}

func printSolutionJSON(w io.Writer, idx int, sol *tendril.Solution) {
	obj := value.NewObject()
	bindingsObj := value.NewObject()
	bindings := sol.Bindings()
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		bindingsObj.Set(name, bindings[name].Value)
	}
	obj.Set("index", value.Number(float64(idx)))
	obj.Set("bindings", value.FromObject(bindingsObj))
	out, err := value.ToJSON(value.FromObject(obj), "  ")
	if err != nil {
		fmt.Fprintln(w, "<error rendering solution>")
		return
	}
	fmt.Fprintln(w, string(out))
}
