// Package tui renders a dashboard session in the terminal.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"crypto-analytics/internal/derive"
	"crypto-analytics/internal/domain"
	"crypto-analytics/internal/service"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

const refreshInterval = 500 * time.Millisecond

// Dashboard is the session the terminal UI renders.
type Dashboard interface {
	Snapshot(ctx context.Context, days int, sort domain.TableSort) service.View
	ToggleBoth(ctx context.Context) domain.Preference
	Retry(ctx context.Context, days int) error
	Export(ctx context.Context, w io.Writer) error
	Warm(ctx context.Context, days int)
	DefaultDays() int
}

// Options tune a Model. An empty ExportDir disables CSV export.
type Options struct {
	ExportDir string
}

type refreshMsg struct{}

type retryDoneMsg struct{ err error }

type exportedMsg struct {
	path string
	rows int
	err  error
}

type Model struct {
	ctx       context.Context
	dashboard Dashboard
	opts      Options

	days int
	sort domain.TableSort
	view service.View

	spinner spinner.Model
	table   table.Model
	width   int
	height  int
	status  string
}

func NewModel(ctx context.Context, dashboard Dashboard, opts Options) *Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle))
	tbl := table.New(table.WithFocused(true), table.WithHeight(10))
	tbl.SetStyles(tableStyles())

	m := &Model{
		ctx:       ctx,
		dashboard: dashboard,
		opts:      opts,
		days:      dashboard.DefaultDays(),
		sort:      domain.DefaultTableSort(),
		spinner:   sp,
		table:     tbl,
		width:     100,
		height:    40,
	}
	m.table.SetWidth(m.width - 4)
	m.refresh()
	return m
}

// SetSize adapts the layout to the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
	m.table.SetWidth(m.width - 4)
}

func (m *Model) Init() tea.Cmd {
	m.dashboard.Warm(m.ctx, m.days)
	return tea.Batch(m.spinner.Tick, scheduleRefresh())
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case refreshMsg:
		m.refresh()
		return m, scheduleRefresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case retryDoneMsg:
		m.status = ""
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.refresh()
		return m, nil

	case exportedMsg:
		lang := m.view.Preference.Language
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = derive.Text(lang, derive.MsgExported, msg.rows, msg.path)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "1", "2", "3", "4":
		idx := int(msg.Runes[0] - '1')
		if idx < len(domain.HistoryWindows) {
			m.days = domain.HistoryWindows[idx]
		}
	case "s":
		m.sort.Key = m.sort.Key.Next()
	case "o":
		m.sort.Order = m.sort.Order.Flip()
	case "t":
		m.dashboard.ToggleBoth(m.ctx)
	case "r":
		m.status = derive.Text(m.view.Preference.Language, derive.MsgLoading)
		return m, m.retry()
	case "e":
		return m, m.export()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	m.refresh()
	return m, nil
}

func (m *Model) retry() tea.Cmd {
	ctx, days, d := m.ctx, m.days, m.dashboard
	return func() tea.Msg {
		return retryDoneMsg{err: d.Retry(ctx, days)}
	}
}

func (m *Model) export() tea.Cmd {
	if m.opts.ExportDir == "" {
		m.status = derive.Text(m.view.Preference.Language, derive.MsgExportDisabled)
		return nil
	}
	if !m.view.HasMarkets() {
		m.status = derive.ErrNothingToExport.Error()
		return nil
	}
	ctx, d := m.ctx, m.dashboard
	path := filepath.Join(m.opts.ExportDir, derive.ExportFilename)
	rows := len(m.view.Assets)
	return func() tea.Msg {
		return writeExport(ctx, d, path, rows)
	}
}

func writeExport(ctx context.Context, d Dashboard, path string, rows int) (msg exportedMsg) {
	msg = exportedMsg{path: path, rows: rows}
	f, err := os.Create(path)
	if err != nil {
		msg.err = fmt.Errorf("create export file: %w", err)
		return msg
	}
	defer func() {
		if err := f.Close(); err != nil && msg.err == nil {
			msg.err = fmt.Errorf("close export file: %w", err)
		}
	}()
	if err := d.Export(ctx, f); err != nil {
		msg.err = err
	}
	return msg
}

func (m *Model) refresh() {
	m.view = m.dashboard.Snapshot(m.ctx, m.days, m.sort)
	m.table.SetColumns(tableColumns(m.view))
	m.table.SetRows(tableRows(m.view.Table))
}
