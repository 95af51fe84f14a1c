package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/tendril-lang/tendril"
	"github.com/tendril-lang/tendril/hooks"
	"github.com/tendril-lang/tendril/value"
)

// newExploreCmd builds the full-screen pattern explorer (SPEC_FULL.md
// §11.3): pattern on the left, document on the right, solutions below.
// It recompiles the pattern and re-runs match/scan on every keystroke,
// following aretext's own screen.Init/PollEvent/screen.Fini event loop.
func newExploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore <doc-file>",
		Short: "Interactively edit a pattern against a fixed document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := readDocument(args[0])
			if err != nil {
				return err
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()

			e := &explorer{screen: screen, root: root}
			e.runEventLoop()
			return nil
		},
	}
}

type explorer struct {
	screen  tcell.Screen
	root    value.Value
	pattern []rune
	cursor  int
	scan    bool
}

func (e *explorer) runEventLoop() {
	for {
		e.draw()
		ev := e.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return
			case tcell.KeyEnter:
				e.scan = !e.scan
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				if e.cursor > 0 {
					e.pattern = append(e.pattern[:e.cursor-1], e.pattern[e.cursor:]...)
					e.cursor--
				}
			case tcell.KeyLeft:
				if e.cursor > 0 {
					e.cursor--
				}
			case tcell.KeyRight:
				if e.cursor < len(e.pattern) {
					e.cursor++
				}
			case tcell.KeyRune:
				e.pattern = append(e.pattern[:e.cursor], append([]rune{ev.Rune()}, e.pattern[e.cursor:]...)...)
				e.cursor++
			}
		case *tcell.EventResize:
			e.screen.Sync()
		}
	}
}

func (e *explorer) draw() {
	e.screen.Clear()
	width, height := e.screen.Size()
	half := width / 2

	drawText(e.screen, 0, 0, "pattern (Enter toggles match/scan, Esc quits):", tcell.StyleDefault.Bold(true))
	drawText(e.screen, 0, 1, string(e.pattern), tcell.StyleDefault)
	e.screen.ShowCursor(textWidth(e.pattern[:e.cursor]), 1)

	docText, _ := value.Stringify(e.root)
	if docText == "" {
		if s, err := value.ToJSON(e.root, ""); err == nil {
			docText = string(s)
		}
	}
	drawText(e.screen, half+1, 0, "document:", tcell.StyleDefault.Bold(true))
	drawText(e.screen, half+1, 1, docText, tcell.StyleDefault)

	mode := "match"
	if e.scan {
		mode = "scan"
	}
	drawText(e.screen, 0, 3, fmt.Sprintf("mode: %s", mode), tcell.StyleDefault.Bold(true))

	row := 4
	p, err := tendril.Compile(string(e.pattern), hooks.NoopParserHooks{})
	if err != nil {
		drawText(e.screen, 0, row, "error: "+err.Error(), tcell.StyleDefault.Foreground(tcell.ColorRed))
		e.screen.Show()
		return
	}

	run := tendril.Match
	if e.scan {
		run = tendril.Scan
	}
	count := 0
	_ = run(p, e.root, tendril.Options{StepBudget: tendril.DefaultStepBudget}, func(sol *tendril.Solution) bool {
		if row >= height-1 {
			return false
		}
		drawText(e.screen, 0, row, fmt.Sprintf("solution %d: %v", count, sol.Bindings()), tcell.StyleDefault)
		row++
		count++
		return true
	})
	if count == 0 {
		drawText(e.screen, 0, row, "no match", tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}
	e.screen.Show()
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		screen.SetContent(col, y, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
}

func textWidth(rs []rune) int {
	w := 0
	for _, r := range rs {
		w += runewidth.RuneWidth(r)
	}
	return w
}
