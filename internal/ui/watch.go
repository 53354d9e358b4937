package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bearanvil/trafficled/internal/fetch"
)

// FetchFunc downloads a fresh snapshot.
type FetchFunc func(ctx context.Context) (fetch.Snapshot, error)

type fetchedMsg struct {
	snap fetch.Snapshot
	err  error
	at   time.Time
}

// refreshMsg is a scheduled refresh. Only the tick scheduled after the
// latest fetch is live; gen tells older ones apart.
type refreshMsg struct {
	gen int
}

type watchKeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Refresh, k.Quit}}
}

// WatchModel is the live board behind "trafficled watch". It refetches every
// interval and keeps showing the last good snapshot when a fetch fails.
type WatchModel struct {
	ctx      context.Context
	fetch    FetchFunc
	server   string
	interval time.Duration
	cutoffs  Cutoffs

	spinner spinner.Model
	help    help.Model
	keys    watchKeyMap

	snap    fetch.Snapshot
	err     error
	updated time.Time
	loading bool
	width   int
	gen     int
}

// NewWatchModel creates the model. An interval of zero disables automatic
// refreshes.
func NewWatchModel(ctx context.Context, fn FetchFunc, server string, interval time.Duration, cutoffs Cutoffs) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = MediumStyle

	return WatchModel{
		ctx:      ctx,
		fetch:    fn,
		server:   server,
		interval: interval,
		cutoffs:  cutoffs,
		spinner:  s,
		help:     help.New(),
		keys: watchKeyMap{
			Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
			Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
		},
		loading: true,
		width:   GetTerminalWidth(),
	}
}

// Snapshot returns the last successful snapshot.
func (m WatchModel) Snapshot() fetch.Snapshot { return m.snap }

// Err returns the error from the most recent fetch, if it failed.
func (m WatchModel) Err() error { return m.err }

// Loading reports whether a fetch is in flight.
func (m WatchModel) Loading() bool { return m.loading }

func (m WatchModel) fetchCmd() tea.Cmd {
	ctx, fn := m.ctx, m.fetch
	return func() tea.Msg {
		snap, err := fn(ctx)
		return fetchedMsg{snap: snap, err: err, at: time.Now()}
	}
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m.refresh()
		}

	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width, nil)
		m.help.Width = m.width

	case refreshMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.refresh()

	case fetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.snap, m.err, m.updated = msg.snap, nil, msg.at
		}
		m.gen++
		if m.interval > 0 {
			gen := m.gen
			return m, tea.Tick(m.interval, func(time.Time) tea.Msg { return refreshMsg{gen: gen} })
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m WatchModel) refresh() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	m.loading = true
	return m, m.fetchCmd()
}

// View implements tea.Model
func (m WatchModel) View() string {
	var b strings.Builder
	b.WriteString(NewHeader("Traffic Watch", m.server).SetWidth(m.width).Render())
	b.WriteString("\n")

	if m.snap != nil {
		for _, dir := range []fetch.Direction{fetch.North, fetch.South} {
			live, typical := m.snap.Pair(dir)
			b.WriteString(RenderBoard(dir.String(), live, typical, m.cutoffs, m.width))
			b.WriteString("\n")
		}
	}

	switch {
	case m.loading:
		b.WriteString("  " + m.spinner.View() + StatusStyle.Render("fetching speeds..."))
	case m.err != nil:
		b.WriteString(ErrorMessageStyle.Render("  fetch failed: " + m.err.Error()))
	default:
		b.WriteString(StatusStyle.Render("updated " + m.updated.Format("15:04:05")))
	}
	b.WriteString("\n\n  " + m.help.View(m.keys) + "\n")
	return b.String()
}
