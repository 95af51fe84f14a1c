package main

import (
	"go.uber.org/zap"

	"github.com/tendril-lang/tendril/hooks"
)

// zapEngineHooks renders the engine's debug-hook events through a
// zap.SugaredLogger, one structured log line per event, following the
// corpus's structured-logging idiom rather than ad hoc fmt.Printf
// (SPEC_FULL.md §10.5).
type zapEngineHooks struct {
	log *zap.SugaredLogger
}

func newZapEngineHooks() (*zapEngineHooks, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapEngineHooks{log: l.Sugar()}, nil
}

func (h *zapEngineHooks) OnEnter(nodeType string, _ any, path string) {
	h.log.Debugw("enter", "node", nodeType, "path", path)
}

func (h *zapEngineHooks) OnExit(nodeType string, _ any, path string, matched bool) {
	h.log.Debugw("exit", "node", nodeType, "path", path, "matched", matched)
}

func (h *zapEngineHooks) OnBind(kind, name string, value any) {
	h.log.Infow("bind", "kind", kind, "name", name, "value", value)
}

func (h *zapEngineHooks) Sync() error { return h.log.Sync() }

var _ hooks.EngineHooks = (*zapEngineHooks)(nil)
