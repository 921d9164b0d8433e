// Package progress shows a spinner on the terminal while a long call runs
package progress

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ErrInterrupted is returned when the user pressed ctrl+c before the job finished
var ErrInterrupted = errors.New("interrupted")

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#83a598"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ebdbb2"))
	elapsedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#928374"))
)

// doneMsg carries the job's result back into the update loop
type doneMsg[T any] struct {
	value T
}

type model[T any] struct {
	spinner     spinner.Model
	title       string
	started     time.Time
	job         func() T
	cancel      context.CancelFunc
	value       T
	done        bool
	interrupted bool
}

func newModel[T any](title string, job func() T, cancel context.CancelFunc) model[T] {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return model[T]{
		spinner: s,
		title:   title,
		started: time.Now(),
		job:     job,
		cancel:  cancel,
	}
}

func (m model[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return doneMsg[T]{value: m.job()}
	})
}

func (m model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg[T]:
		m.value = msg.value
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			m.interrupted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model[T]) View() string {
	if m.done || m.interrupted {
		return ""
	}
	elapsed := time.Since(m.started).Round(time.Second)
	return m.spinner.View() + " " + titleStyle.Render(m.title) + " " + elapsedStyle.Render(elapsed.String()) + "\n"
}

// Run calls job while a spinner titled title is drawn on stderr. When stderr
// is not a terminal the job runs without any output.
func Run[T any](ctx context.Context, title string, job func(ctx context.Context) T) (T, error) {
	return run(ctx, os.Stderr, isTerminal(os.Stderr), title, job)
}

func run[T any](ctx context.Context, out io.Writer, interactive bool, title string, job func(ctx context.Context) T) (T, error) {
	if !interactive {
		return job(ctx), nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(title, func() T { return job(ctx) }, cancel)
	final, err := tea.NewProgram(m, tea.WithOutput(out)).Run()
	if err != nil {
		var zero T
		return zero, err
	}

	result := final.(model[T])
	if result.interrupted {
		var zero T
		return zero, ErrInterrupted
	}
	return result.value, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
