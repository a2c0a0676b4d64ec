// Package tui provides a live terminal dashboard for the background
// poller, built on Bubble Tea. It is read-mostly: the only mutation it
// can drive is a manual poll.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	cachememory "github.com/trblackw/teton-tracker-sub001/internal/adapters/driven/cache/memory"
	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
	"github.com/trblackw/teton-tracker-sub001/internal/core/ports/driving"
)

// refreshInterval is how often the dashboard re-reads the poller snapshot.
const refreshInterval = time.Second

// maxErrorsShown limits the error panel to the most recent entries.
const maxErrorsShown = 3

type tickMsg time.Time

type pollDoneMsg struct{}

// Model is the dashboard's Bubble Tea model.
type Model struct {
	poller  driving.RunPoller
	cache   *cachememory.Cache
	spinner spinner.Model
	styles  Styles

	snap    domain.PollSnapshot
	polling bool
	width   int
}

// NewModel creates a dashboard model for the given poller and cache.
// The cache may be nil; the flights panel is omitted then.
func NewModel(poller driving.RunPoller, cache *cachememory.Cache) Model {
	styles := NewStyles(DefaultTheme())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Title

	return Model{
		poller:  poller,
		cache:   cache,
		spinner: sp,
		styles:  styles,
		snap:    poller.Snapshot(),
	}
}

// Init starts the refresh loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p":
			if m.polling {
				return m, nil
			}
			m.polling = true
			poller := m.poller
			return m, func() tea.Msg {
				poller.TriggerPoll(context.Background())
				return pollDoneMsg{}
			}
		}

	case tickMsg:
		m.snap = m.poller.Snapshot()
		return m, tick()

	case pollDoneMsg:
		m.polling = false
		m.snap = m.poller.Snapshot()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	title := "Teton Tracker"
	if m.polling {
		title = m.spinner.View() + " " + title + " (polling...)"
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Panel.Render(m.pollerPanel()))
	b.WriteString("\n")

	if m.cache != nil {
		if panel := m.flightsPanel(); panel != "" {
			b.WriteString(m.styles.Panel.Render(panel))
			b.WriteString("\n")
		}
	}

	if panel := m.errorsPanel(); panel != "" {
		b.WriteString(m.styles.Panel.Render(panel))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("p: poll now  q: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) pollerPanel() string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(m.styles.Label.Render(fmt.Sprintf("%-16s", label)))
		b.WriteString(m.styles.Value.Render(value))
		b.WriteString("\n")
	}

	row("Active runs", fmt.Sprintf("%d", m.snap.ActiveRuns))
	row("Poll cycles", fmt.Sprintf("%d", m.snap.PollCount))
	row("Last polled", formatTime(m.snap.LastPolled))
	row("Last API call", formatTime(m.snap.LastAPICall))
	if m.snap.APICallsBlocked > 0 {
		b.WriteString(m.styles.Label.Render(fmt.Sprintf("%-16s", "Blocked (debug)")))
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf("%d", m.snap.APICallsBlocked)))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m Model) flightsPanel() string {
	flights := m.cache.Flights()
	if len(flights) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Label.Render("Flights"))
	b.WriteString("\n")
	for _, f := range flights {
		line := fmt.Sprintf("%s  %s  %s -> %s", f.FlightNumber, f.Status, f.Origin, f.Destination)
		if f.DelayMinutes > 0 {
			b.WriteString(m.styles.Warning.Render(line + fmt.Sprintf("  +%dm", f.DelayMinutes)))
		} else {
			b.WriteString(m.styles.Value.Render(line))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m Model) errorsPanel() string {
	errs := m.snap.Errors
	if len(errs) == 0 {
		return ""
	}
	if len(errs) > maxErrorsShown {
		errs = errs[len(errs)-maxErrorsShown:]
	}

	var b strings.Builder
	b.WriteString(m.styles.Label.Render("Recent errors"))
	b.WriteString("\n")
	for _, e := range errs {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("%s  %s: %s",
			e.Time.Local().Format("15:04:05"), e.Context, e.Message)))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("15:04:05")
}

// Run starts the dashboard and blocks until the user quits.
func Run(poller driving.RunPoller, cache *cachememory.Cache) error {
	program := tea.NewProgram(NewModel(poller, cache), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
