// Package progress renders an optional TTY progress view for a long-running
// pipeline stage: a redrawing spinner+bar+count line driven by a
// bubbletea.Program, plus a glamour-rendered markdown preview helper for a
// human operator glancing at a generated problem statement. Both degrade to
// plain text (or a no-op) when stdout isn't a terminal, so the pipeline's
// actual semantics never depend on whether this package does anything at
// all — grounded in the teacher's bubbletea/glamour TUI stack
// (cmd/nerd/chat/model.go) and phrazzld-thinktank's hand-driven
// bubbles/spinner status line (internal/logutil/status_display.go).
package progress

import (
	"fmt"
	"os"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// advanceMsg reports n additional completions out of a fixed total, sent
// into a running tea.Program from outside its own Update loop the same way
// the teacher's chat model receives async results as tea.Msg values.
type advanceMsg struct{ n int }

// model is a minimal bubbletea model for a redrawing label+bar+count line,
// the inline (non-alt-screen) counterpart to the teacher's full-screen chat
// model: same Init/Update/View shape, scoped down to one line because a
// batch pipeline has no keyboard input to read.
type model struct {
	label     string
	total     int
	completed int
	bar       bprogress.Model
	spin      spinner.Model
}

func newModel(label string, total int) model {
	return model{
		label: label,
		total: total,
		bar:   bprogress.New(bprogress.WithDefaultGradient()),
		spin:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case advanceMsg:
		m.completed += msg.n
		if m.completed >= m.total {
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m model) View() string {
	percent := 0.0
	if m.total > 0 {
		percent = float64(m.completed) / float64(m.total)
	}
	return fmt.Sprintf("%s %s %s %d/%d\n",
		m.spin.View(),
		lipgloss.NewStyle().Bold(true).Render(m.label),
		m.bar.ViewAs(percent),
		m.completed, m.total)
}

// Bar drives a model in the background, exposed as Advance/Stop so callers
// don't need to know about tea.Msg.
type Bar struct {
	program *tea.Program
}

// NewBar starts a progress program for total items under label, or returns
// nil if stdout isn't a terminal or total is zero: a redrawing bar on a
// non-interactive stream (a log file, a CI pipe) just produces noise.
func NewBar(label string, total int) *Bar {
	if !term.IsTerminal(int(os.Stdout.Fd())) || total == 0 {
		return nil
	}
	return &Bar{program: tea.NewProgram(newModel(label, total))}
}

// Start runs the program loop in the background.
func (b *Bar) Start() {
	if b == nil {
		return
	}
	go func() { _, _ = b.program.Run() }()
}

// Advance reports n additional completions.
func (b *Bar) Advance(n int) {
	if b == nil {
		return
	}
	b.program.Send(advanceMsg{n: n})
}

// Stop quits the program loop if it hasn't already self-quit at total.
func (b *Bar) Stop() {
	if b == nil {
		return
	}
	b.program.Quit()
}

// RenderMarkdown renders md for a terminal operator glance, the same
// glamour.NewTermRenderer(glamour.WithAutoStyle(), ...) call the teacher's
// chat model uses to render assistant responses. Falls back to the raw
// text if glamour can't build a renderer (e.g. no terminal profile
// detected) or stdout isn't a terminal at all.
func RenderMarkdown(md string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return md
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return md
	}
	rendered, err := r.Render(md)
	if err != nil {
		return md
	}
	return rendered
}
