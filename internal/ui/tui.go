package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUIRenderer shows a live progress panel using bubbletea. The panel is
// cleared when the run completes so the report follows on a clean screen.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *runModel
	tracker *Tracker
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer.
// Returns an error if output is not a terminal.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}
	return &TUIRenderer{
		cfg:  cfg,
		done: make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	r.tracker = NewTracker(total)
	r.model = newRunModel(r.tracker, TerminalWidth(r.cfg.Output, 80))
	if !ColorEnabled(r.cfg.Output, r.cfg.NoColor) {
		r.model.styles = NoColorStyles()
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(nil)}
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}

	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// ProbeStarted implements Observer.
func (r *TUIRenderer) ProbeStarted(ev ProbeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tracker == nil {
		return
	}
	r.tracker.Started(ev)
	r.program.Send(probeMsg{})
}

// ProbeFinished implements Observer.
func (r *TUIRenderer) ProbeFinished(ev ProbeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tracker == nil {
		return
	}
	r.tracker.Finished(ev)
	r.program.Send(probeMsg{})
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(s RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		r.program.Send(completeMsg(s))
	}
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	if program == nil {
		return nil
	}
	program.Quit()

	// Do not hang shutdown on an unresponsive terminal.
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
	}
	return nil
}

// Message types for bubbletea
type probeMsg struct{}
type completeMsg RunSummary
type tickMsg time.Time

// runModel is the bubbletea model for a validation run.
type runModel struct {
	tracker     *Tracker
	width       int
	complete    bool
	spinner     spinner.Model
	progressBar progress.Model
	styles      Styles
}

func newRunModel(tracker *Tracker, width int) *runModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	p := progress.New(
		progress.WithSolidFill(ColorLime),
		progress.WithWidth(barWidth(width)),
		progress.WithoutPercentage(),
	)

	return &runModel{
		tracker:     tracker,
		width:       width,
		spinner:     s,
		progressBar: p,
		styles:      DefaultStyles(),
	}
}

func barWidth(width int) int {
	return max(20, min(60, width-20))
}

// Init implements tea.Model.
func (m *runModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = barWidth(msg.Width)

	case completeMsg:
		m.complete = true
		return m, tea.Quit

	case tickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *runModel) View() string {
	if m.complete {
		return ""
	}

	stats := m.tracker.Stats()
	var lines []string

	lines = append(lines, m.styles.Header.Render("envcheck preflight"))
	lines = append(lines, fmt.Sprintf("%s  %s",
		m.progressBar.ViewAs(stats.Progress),
		m.styles.Active.Render(fmt.Sprintf("%d/%d", stats.Done, stats.Total))))
	lines = append(lines, m.renderTally(stats))

	for _, ev := range stats.Running {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			m.spinner.View(),
			truncate(ev.Description, m.width-20),
			m.styles.Dim.Render(formatElapsed(ev.Elapsed))))
	}
	for _, ev := range stats.Recent {
		badge, style := m.styles.ForSeverity(ev.Severity)
		lines = append(lines, fmt.Sprintf("%s %s", style.Render(badge), truncate(ev.Description, m.width-8)))
	}

	return strings.Join(lines, "\n") + "\n"
}

func (m *runModel) renderTally(s ProgressStats) string {
	parts := []string{m.styles.Pass.Render(fmt.Sprintf("%d passed", s.Passed))}
	if s.Warnings > 0 {
		parts = append(parts, m.styles.Warning.Render(fmt.Sprintf("%d warning(s)", s.Warnings)))
	}
	if s.Critical > 0 {
		parts = append(parts, m.styles.Critical.Render(fmt.Sprintf("%d critical", s.Critical)))
	}
	return strings.Join(parts, m.styles.Dim.Render("  •  "))
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if n < 4 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

var _ Renderer = (*TUIRenderer)(nil)
