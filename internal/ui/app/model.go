package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"babylog/internal/modules/tracking/dto"
	trackingin "babylog/internal/modules/tracking/port/in"
	apperrors "babylog/internal/platform/errors"
	"babylog/internal/ui/components"
	"babylog/internal/ui/theme"
)

// TrackerPort is the slice of the tracking CLI handler the board drives.
type TrackerPort interface {
	Status(ctx context.Context, babyID string) ([]dto.ActiveSessionOutput, error)
	Watch(ctx context.Context, babyID, kind string) (trackingin.LiveClock, error)
	Start(ctx context.Context, babyID, kind string, at time.Time, status, notes string, fields map[string]string, force bool) (dto.StartOutput, error)
	Pause(ctx context.Context, babyID, kind string) (dto.ActiveSessionOutput, error)
	Resume(ctx context.Context, babyID, kind, side string) (dto.ActiveSessionOutput, error)
	SwitchSide(ctx context.Context, babyID string) (dto.ActiveSessionOutput, error)
	AdjustStart(ctx context.Context, babyID, kind string, at time.Time, status string, force bool) (dto.StartOutput, error)
	Rebalance(ctx context.Context, babyID string, left time.Duration) (dto.ActiveSessionOutput, error)
	Stop(ctx context.Context, babyID, kind string, at time.Time, notes string, fields map[string]string) (dto.RecordOutput, error)
	Cancel(ctx context.Context, babyID, kind string) error
	Log(ctx context.Context, babyID, kind string, start, end time.Time, notes string, fields map[string]string, force bool) (dto.LogEntryOutput, error)
}

type tickMsg time.Time

type sessionsLoadedMsg struct {
	clocks []trackingin.LiveClock
	err    error
}

// actionDoneMsg reports a mutation. retry re-runs it with the override flag
// set when the failure was an advisory conflict.
type actionDoneMsg struct {
	status string
	err    error
	retry  func(force bool) tea.Cmd
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Command key.Binding
	Pause   key.Binding
	Resume  key.Binding
	Switch  key.Binding
	Stop    key.Binding
	Cancel  key.Binding
	Force   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Command: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Resume:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		Switch:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "switch side")),
		Stop:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "stop and save")),
		Cancel:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "discard")),
		Force:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "override conflict")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Command, k.Pause, k.Resume, k.Stop, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Command},
		{k.Pause, k.Resume, k.Switch},
		{k.Stop, k.Cancel, k.Force},
		{k.Help, k.Quit},
	}
}

// Model is the live session board. Clocks tick locally; every key press that
// changes a session goes through the tracker and reloads the board.
type Model struct {
	babyID   string
	interval time.Duration
	tracker  TrackerPort

	clocks   []trackingin.LiveClock
	selected int
	retry    func(force bool) tea.Cmd

	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	width    int
}

func NewModel(babyID string, interval time.Duration, tracker TrackerPort) Model {
	if interval <= 0 {
		interval = time.Second
	}
	return Model{
		babyID:   babyID,
		interval: interval,
		tracker:  tracker,
		keys:     defaultKeys(),
		help:     help.New(),
		palette:  components.NewPalette(),
		status:   "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.palette.SetWidth(min(msg.Width-4, 72))

	case tickMsg:
		for _, c := range m.clocks {
			c.Tick()
		}
		return m, m.tickCmd()

	case sessionsLoadedMsg:
		if msg.err != nil {
			m.status = "load sessions: " + msg.err.Error()
			return m, nil
		}
		m.clocks = msg.clocks
		if m.selected >= len(m.clocks) {
			m.selected = max(len(m.clocks)-1, 0)
		}

	case actionDoneMsg:
		m.retry = nil
		switch {
		case msg.err == nil:
			m.status = msg.status
		case errors.Is(msg.err, apperrors.ErrOverrideRequired) && msg.retry != nil:
			m.status = msg.err.Error() + " (f to override)"
			m.retry = msg.retry
			return m, nil
		default:
			m.status = msg.err.Error()
		}
		return m, m.loadCmd()

	case components.PaletteSubmitMsg:
		return m, m.executeCommand(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.Command):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.clocks)-1 {
				m.selected++
			}
		case key.Matches(msg, m.keys.Force):
			if m.retry != nil {
				return m, m.retry(true)
			}
		case key.Matches(msg, m.keys.Pause):
			return m, m.onSelected(func(ctx context.Context, s dto.ActiveSessionOutput) (string, error) {
				_, err := m.tracker.Pause(ctx, m.babyID, s.Kind)
				return s.Kind + " paused", err
			})
		case key.Matches(msg, m.keys.Resume):
			return m, m.onSelected(func(ctx context.Context, s dto.ActiveSessionOutput) (string, error) {
				_, err := m.tracker.Resume(ctx, m.babyID, s.Kind, "")
				return s.Kind + " resumed", err
			})
		case key.Matches(msg, m.keys.Switch):
			return m, m.onSelected(func(ctx context.Context, s dto.ActiveSessionOutput) (string, error) {
				out, err := m.tracker.SwitchSide(ctx, m.babyID)
				return "nursing on " + out.Status, err
			})
		case key.Matches(msg, m.keys.Stop):
			return m, m.onSelected(func(ctx context.Context, s dto.ActiveSessionOutput) (string, error) {
				out, err := m.tracker.Stop(ctx, m.babyID, s.Kind, time.Time{}, "", nil)
				return fmt.Sprintf("%s saved (%s)", out.Kind, formatDuration(out.Seconds)), err
			})
		case key.Matches(msg, m.keys.Cancel):
			return m, m.onSelected(func(ctx context.Context, s dto.ActiveSessionOutput) (string, error) {
				return s.Kind + " discarded", m.tracker.Cancel(ctx, m.babyID, s.Kind)
			})
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.showHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	var b strings.Builder
	b.WriteString(theme.Title.Render("babylog · "+m.babyID) + "\n\n")
	if len(m.clocks) == 0 {
		b.WriteString(theme.Muted.Render("no running sessions; press : to start one") + "\n")
	}
	cards := make([]string, 0, len(m.clocks))
	for i, c := range m.clocks {
		cards = append(cards, renderCard(c.Snapshot(), i == m.selected))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
	if m.palette.Visible() {
		b.WriteString("\n" + m.palette.View())
	}
	b.WriteString("\n" + m.renderStatus() + "\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m Model) renderStatus() string {
	if m.retry != nil {
		return theme.Alert.Render(m.status)
	}
	return theme.Muted.Render(m.status)
}

func renderCard(s dto.ActiveSessionOutput, selected bool) string {
	style := theme.Card
	if selected {
		style = theme.CardSelected
	}
	state := theme.Paused.Render(s.Status)
	if s.Running {
		state = theme.Running.Render(s.Status)
	}
	lines := []string{
		theme.Hot.Render(s.Kind) + "  " + state,
		theme.Clock.Render(formatDuration(s.TotalSeconds)),
		theme.Muted.Render("since " + s.StartTime.Local().Format("15:04")),
	}
	if s.Kind == "nursing" {
		lines = append(lines, theme.Muted.Render(fmt.Sprintf("L %s  R %s  paused %s",
			formatDuration(s.LeftSeconds), formatDuration(s.RightSeconds), formatDuration(s.PausedSeconds))))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func formatDuration(seconds int64) string {
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) loadCmd() tea.Cmd {
	tracker, babyID := m.tracker, m.babyID
	return func() tea.Msg {
		ctx := context.Background()
		sessions, err := tracker.Status(ctx, babyID)
		if err != nil {
			return sessionsLoadedMsg{err: err}
		}
		clocks := make([]trackingin.LiveClock, 0, len(sessions))
		for _, s := range sessions {
			c, err := tracker.Watch(ctx, babyID, s.Kind)
			if err != nil {
				return sessionsLoadedMsg{err: err}
			}
			clocks = append(clocks, c)
		}
		return sessionsLoadedMsg{clocks: clocks}
	}
}

func (m Model) onSelected(fn func(context.Context, dto.ActiveSessionOutput) (string, error)) tea.Cmd {
	if m.selected >= len(m.clocks) {
		return nil
	}
	s := m.clocks[m.selected].Snapshot()
	return func() tea.Msg {
		status, err := fn(context.Background(), s)
		return actionDoneMsg{status: status, err: err}
	}
}

// executeCommand runs a palette command. Commands that may hit an advisory
// conflict carry a retry so the user can override with one key.
func (m Model) executeCommand(input string) tea.Cmd {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}
	tracker, babyID := m.tracker, m.babyID
	fail := func(err error) tea.Cmd {
		return func() tea.Msg { return actionDoneMsg{err: err} }
	}

	switch parts[0] {
	case "start":
		if len(parts) < 2 {
			return fail(fmt.Errorf("usage: start <kind> [status]"))
		}
		kind, status := parts[1], arg(parts, 2)
		var run func(force bool) tea.Cmd
		run = func(force bool) tea.Cmd {
			return func() tea.Msg {
				out, err := tracker.Start(context.Background(), babyID, kind, time.Time{}, status, "", nil, force)
				return actionDoneMsg{status: withWarnings(kind+" started", out.Warnings), err: err, retry: run}
			}
		}
		return run(false)

	case "adjust":
		minutes, err := minutesArg(parts, 2)
		if err != nil || len(parts) < 3 {
			return fail(fmt.Errorf("usage: adjust <kind> <minutes-ago>"))
		}
		kind := parts[1]
		var run func(force bool) tea.Cmd
		run = func(force bool) tea.Cmd {
			return func() tea.Msg {
				at := time.Now().Add(-minutes)
				out, err := tracker.AdjustStart(context.Background(), babyID, kind, at, "", force)
				return actionDoneMsg{status: withWarnings(kind+" start adjusted", out.Warnings), err: err, retry: run}
			}
		}
		return run(false)

	case "log":
		if len(parts) < 2 {
			return fail(fmt.Errorf("usage: log <kind> [minutes-ago] [minutes]"))
		}
		ago, err := minutesArg(parts, 2)
		if err != nil {
			return fail(err)
		}
		length, err := minutesArg(parts, 3)
		if err != nil {
			return fail(err)
		}
		kind := parts[1]
		var run func(force bool) tea.Cmd
		run = func(force bool) tea.Cmd {
			return func() tea.Msg {
				start := time.Now().Add(-ago)
				out, err := tracker.Log(context.Background(), babyID, kind, start, start.Add(length), "", nil, force)
				return actionDoneMsg{status: withWarnings(kind+" logged", out.Warnings), err: err, retry: run}
			}
		}
		return run(false)

	case "rebalance":
		left, err := minutesArg(parts, 1)
		if err != nil || len(parts) < 2 {
			return fail(fmt.Errorf("usage: rebalance <left-minutes>"))
		}
		return func() tea.Msg {
			_, err := tracker.Rebalance(context.Background(), babyID, left)
			return actionDoneMsg{status: "nursing rebalanced", err: err}
		}
	}
	return fail(fmt.Errorf("unknown command: %s", parts[0]))
}

func arg(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

func minutesArg(parts []string, i int) (time.Duration, error) {
	raw := arg(parts, i)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid minutes %q", raw)
	}
	return time.Duration(n) * time.Minute, nil
}

func withWarnings(status string, warnings []string) string {
	if len(warnings) == 0 {
		return status
	}
	return status + " (overrode: " + strings.Join(warnings, "; ") + ")"
}
