// Package tui is the interactive paste workbench: paste a logistics page,
// parse it, review the package table and export it.
package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"shipment-parser/internal/export"
	"shipment-parser/internal/parser"
	"shipment-parser/internal/summary"
)

const (
	minColumnWidth = 6
	maxColumnWidth = 40
	tableHeight    = 15
)

// Messages shown in the status area
const (
	msgEmptyInput = "請先貼上集運資料"
	msgNoRecords  = "未能解析任何包裹資料，請確認格式是否正確"
	msgBadWeights = "無法計算總重量，部分重量數據格式異常"
)

// Parser extracts package records from pasted text
type Parser interface {
	Parse(text string) (*parser.Result, error)
}

// Options configures the workbench
type Options struct {
	Parser    Parser
	OutputDir string
	NoColor   bool
	// Now stamps export filenames; defaults to time.Now.
	Now func() time.Time
}

type viewState int

const (
	inputView viewState = iota
	resultsView
)

// parseCompleteMsg is sent when a parse run finishes
type parseCompleteMsg struct {
	result *parser.Result
	err    error
}

// exportCompleteMsg is sent when the workbook has been written
type exportCompleteMsg struct {
	path string
	err  error
}

// Model is the bubbletea model of the workbench
type Model struct {
	opts     Options
	keys     KeyMap
	input    textarea.Model
	table    table.Model
	spinner  spinner.Model
	state    viewState
	result   *parser.Result
	summary  summary.Summary
	raw      string
	showRaw  bool
	showHelp bool
	loading  bool
	message  string
	err      error
	useColor bool
	quitting bool
}

// New creates the workbench model
func New(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	ta := textarea.New()
	ta.Placeholder = "在此貼上集運資料，按 ctrl+s 解析"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(100)
	ta.SetHeight(tableHeight)
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	t := table.New(
		table.WithColumns(columnsFor(nil)),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)

	useColor := !opts.NoColor && !termenv.EnvNoColor() && isatty.IsTerminal(os.Stdout.Fd())
	if useColor {
		st := table.DefaultStyles()
		st.Header = st.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(false)
		st.Selected = st.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(st)
	}

	return Model{
		opts:     opts,
		keys:     DefaultKeyMap(),
		input:    ta,
		table:    t,
		spinner:  s,
		useColor: useColor,
	}
}

// SetText replaces the pasted text
func (m *Model) SetText(text string) {
	m.input.SetValue(text)
}

// Result returns the last successful parse result, if any
func (m Model) Result() *parser.Result {
	return m.result
}

// Init initializes the workbench
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}

		if m.loading {
			return m, nil
		}

		if m.state == resultsView {
			return m.updateResults(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Parse):
			return m.handleParse()
		case key.Matches(msg, m.keys.Clear):
			m.input.Reset()
			m.message = ""
			m.err = nil
			return m, nil
		}

		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.input.SetWidth(msg.Width)
		if h := msg.Height - 6; h > 3 {
			m.input.SetHeight(h)
		}
		m.table.SetWidth(msg.Width)
		return m, nil

	case parseCompleteMsg:
		m.loading = false
		return m.handleParseComplete(msg), nil

	case exportCompleteMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.message = fmt.Sprintf("匯出失敗: %v", msg.err)
		} else {
			m.err = nil
			m.message = fmt.Sprintf("已匯出至 %s", msg.path)
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Back):
		m.state = inputView
		m.showRaw = false
		m.message = ""
		m.err = nil
		m.input.Focus()
		return m, nil
	case key.Matches(msg, m.keys.Raw):
		m.showRaw = !m.showRaw
		return m, nil
	case key.Matches(msg, m.keys.Export):
		return m.handleExport()
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleParse starts a parse run over the current text
func (m Model) handleParse() (Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		m.err = parser.ErrEmptyInput
		m.message = msgEmptyInput
		return m, nil
	}

	m.loading = true
	m.message = ""
	m.err = nil
	m.raw = text

	p := m.opts.Parser
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			result, err := p.Parse(text)
			return parseCompleteMsg{result: result, err: err}
		},
	)
}

func (m Model) handleParseComplete(msg parseCompleteMsg) Model {
	if msg.err != nil {
		m.err = msg.err
		switch {
		case errors.Is(msg.err, parser.ErrNoRecords):
			m.message = msgNoRecords
		case errors.Is(msg.err, parser.ErrEmptyInput):
			m.message = msgEmptyInput
		default:
			m.message = fmt.Sprintf("解析失敗: %v", msg.err)
		}
		return m
	}

	m.result = msg.result
	m.summary = summary.Summarize(msg.result.Records)
	m.table.SetColumns(columnsFor(msg.result.Records))
	m.table.SetRows(rowsFor(msg.result.Records))
	m.table.GotoTop()
	m.input.Blur()
	m.state = resultsView
	m.err = nil
	m.message = ""
	if len(msg.result.Warnings) > 0 {
		m.message = strings.Join(msg.result.Warnings, "\n")
	}
	return m
}

// handleExport writes the current records to a timestamped workbook
func (m Model) handleExport() (Model, tea.Cmd) {
	if m.result == nil || len(m.result.Records) == 0 {
		return m, nil
	}

	path := filepath.Join(m.opts.OutputDir, export.DefaultFilename(m.opts.Now()))
	records := m.result.Records
	m.loading = true
	m.message = ""
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return exportCompleteMsg{path: path, err: export.SaveXLSX(path, records)}
		},
	)
}

// View renders the workbench
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if m.showHelp {
		b.WriteString(m.helpView())
		b.WriteString("\n")
	}

	switch m.state {
	case resultsView:
		b.WriteString(m.table.View())
		b.WriteString("\n")
		b.WriteString(m.summaryView())
		if m.showRaw {
			b.WriteString("\n")
			b.WriteString(m.style("12").Bold(true).Render("原始資料"))
			b.WriteString("\n")
			b.WriteString(m.raw)
			b.WriteString("\n")
		}
	default:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(fmt.Sprintf("%s 處理中...\n", m.spinner.View()))
	}

	if m.message != "" {
		color := "82"
		if m.err != nil {
			color = "196"
		}
		b.WriteString(m.style(color).Render(m.message))
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) summaryView() string {
	var b strings.Builder
	b.WriteString(m.style("82").Render(
		fmt.Sprintf("成功解析 %d 個新竹包裹，共 %d 個小包裹", m.summary.Shipments, m.summary.Packages)))
	b.WriteString("\n")
	if len(m.summary.MalformedWeights) > 0 {
		b.WriteString(m.style("208").Render(msgBadWeights))
	} else {
		b.WriteString("總重量: " + summary.WeightString(m.summary.TotalWeight))
	}
	b.WriteString("\n")
	return b.String()
}

// helpView returns the help view
func (m Model) helpView() string {
	help := strings.Builder{}
	help.WriteString("Help:\n")
	help.WriteString("  ctrl+s      - Parse pasted text\n")
	help.WriteString("  ctrl+l      - Clear pasted text\n")
	help.WriteString("  ↑/k ↓/j     - Move through results\n")
	help.WriteString("  ctrl+e      - Export results to xlsx\n")
	help.WriteString("  ctrl+r      - Toggle raw text\n")
	help.WriteString("  esc         - Back to the paste area\n")
	help.WriteString("  f1          - Toggle help\n")
	help.WriteString("  ctrl+c      - Quit\n")
	return help.String()
}

// statusLine returns the status line
func (m Model) statusLine() string {
	if m.state == resultsView && m.result != nil {
		return fmt.Sprintf("Package %d of %d | ctrl+e export | esc back | f1 help",
			m.table.Cursor()+1, len(m.result.Records))
	}
	return "ctrl+s parse | ctrl+l clear | f1 help | ctrl+c quit"
}

func (m Model) style(color string) lipgloss.Style {
	if !m.useColor {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// columnsFor sizes each column to its widest cell, within limits
func columnsFor(records []parser.PackageRecord) []table.Column {
	columns := make([]table.Column, len(export.Headers))
	for i, h := range export.Headers {
		columns[i] = table.Column{Title: h, Width: runewidth.StringWidth(h)}
	}
	for _, rec := range records {
		for i, cell := range export.Row(rec) {
			if w := runewidth.StringWidth(cell); w > columns[i].Width {
				columns[i].Width = w
			}
		}
	}
	for i := range columns {
		columns[i].Width = max(minColumnWidth, min(columns[i].Width, maxColumnWidth))
	}
	return columns
}

func rowsFor(records []parser.PackageRecord) []table.Row {
	rows := make([]table.Row, len(records))
	for i, rec := range records {
		rows[i] = table.Row(export.Row(rec))
	}
	return rows
}
