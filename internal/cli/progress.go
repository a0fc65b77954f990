package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ProgressSpinner shows a spinner on stderr while a remote request runs.
// Off a terminal it prints the message once instead.
type ProgressSpinner struct {
	message string
	enabled bool
	out     io.Writer

	program *tea.Program
	done    chan struct{}
}

// NewProgressSpinner creates a new progress spinner
func NewProgressSpinner(message string, noColor bool) *ProgressSpinner {
	return &ProgressSpinner{
		message: message,
		enabled: !noColor && os.Getenv("CI") == "" && isatty.IsTerminal(os.Stderr.Fd()),
		out:     os.Stderr,
	}
}

// Start begins the spinner in a goroutine
func (p *ProgressSpinner) Start() {
	if !p.enabled {
		fmt.Fprintf(p.out, "%s...\n", p.message)
		return
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	p.program = tea.NewProgram(
		spinnerModel{
			spinner: s,
			message: p.message,
			style:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		},
		tea.WithOutput(p.out),
		tea.WithInput(nil),
	)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
}

// Stop stops the spinner and waits for it to clear its line
func (p *ProgressSpinner) Stop() {
	if p.program == nil {
		return
	}
	p.program.Send(stopMsg{})
	<-p.done
	p.program = nil
}

// spinnerModel implements the tea.Model interface for the spinner
type spinnerModel struct {
	spinner  spinner.Model
	message  string
	style    lipgloss.Style
	stopping bool
}

type stopMsg struct{}

func (s spinnerModel) Init() tea.Cmd {
	return s.spinner.Tick
}

func (s spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		s.stopping = true
		return s, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s spinnerModel) View() string {
	if s.stopping {
		return ""
	}
	return fmt.Sprintf("%s %s", s.spinner.View(), s.style.Render(s.message))
}
