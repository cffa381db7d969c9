package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/plannr/internal/store"
)

type pomodoroPhase int

const (
	pomodoroIdle pomodoroPhase = iota
	pomodoroWork
	pomodoroShortBreak
	pomodoroLongBreak
)

// Snapshot phase names, also shown in the log.
var phaseNames = map[pomodoroPhase]string{
	pomodoroIdle:       "idle",
	pomodoroWork:       "work",
	pomodoroShortBreak: "short_break",
	pomodoroLongBreak:  "long_break",
}

func phaseFromName(name string) pomodoroPhase {
	for p, n := range phaseNames {
		if n == name {
			return p
		}
	}
	return pomodoroIdle
}

type pomodoroModel struct {
	store  *store.Store
	width  int
	height int

	phase     pomodoroPhase
	paused    bool
	remaining time.Duration

	// cycles completed in the current set; resets when the long break
	// threshold is reached.
	cyclesCompleted int

	// Settings snapshot taken at the last countdown reset. Edits to the
	// stored settings never rescale an in-flight countdown.
	cfg store.PomodoroSettings

	taskLabel string
	log       []store.PomodoroLogEntry

	formActive bool
	form       *huh.Form
	formLabel  *string
}

func newPomodoroModel(s *store.Store) pomodoroModel {
	label := ""
	m := pomodoroModel{
		store:     s,
		phase:     pomodoroIdle,
		formLabel: &label,
	}
	m.cfg, _ = s.PomodoroSettings()
	m.restoreSnapshot()
	return m
}

// restoreSnapshot resumes a persisted cycle, always paused.
func (p *pomodoroModel) restoreSnapshot() {
	snap, err := p.store.LoadPomodoroSnapshot()
	if err != nil || snap == nil {
		return
	}
	phase := phaseFromName(snap.Phase)
	if phase == pomodoroIdle || snap.RemainingSeconds <= 0 {
		return
	}
	p.phase = phase
	p.paused = true
	p.remaining = time.Duration(snap.RemainingSeconds) * time.Second
	p.cyclesCompleted = snap.CyclesCompleted
	p.taskLabel = snap.TaskLabel
}

// saveSnapshot persists the in-flight cycle; idle clears it.
func (p pomodoroModel) saveSnapshot() {
	if p.phase == pomodoroIdle {
		p.store.ClearPomodoroSnapshot()
		return
	}
	p.store.SavePomodoroSnapshot(store.PomodoroSnapshot{
		Phase:            phaseNames[p.phase],
		RemainingSeconds: int(p.remaining.Seconds()),
		CyclesCompleted:  p.cyclesCompleted,
		TaskLabel:        p.taskLabel,
		SavedAtDate:      store.DateOf(time.Now()),
	})
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p pomodoroModel) refresh() tea.Cmd {
	return func() tea.Msg {
		cfg, _ := p.store.PomodoroSettings()
		log, _ := p.store.PomodoroLog(8)
		return settingsDataMsg{cfg: cfg, log: log}
	}
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		p.log = msg.log
		return p, nil

	case tickMsg:
		if p.phase == pomodoroIdle || p.paused {
			return p, nil
		}
		p.remaining -= time.Second
		if p.remaining <= 0 {
			return p.advancePhase()
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if p.phase == pomodoroIdle {
				return p.startWork()
			}
		case key.Matches(msg, keys.Stop):
			if p.phase != pomodoroIdle {
				return p.cancel()
			}
		case key.Matches(msg, keys.Pause):
			if p.phase != pomodoroIdle {
				p.paused = !p.paused
				p.saveSnapshot()
			}
		case key.Matches(msg, keys.Skip):
			if p.phase == pomodoroShortBreak || p.phase == pomodoroLongBreak {
				return p.startWork()
			}
		case key.Matches(msg, keys.Edit):
			return p.showLabelForm()
		}
	}
	return p, nil
}

// startWork begins a work countdown. Settings are re-read here: a
// countdown reset is the only point where settings edits take effect.
func (p pomodoroModel) startWork() (pomodoroModel, tea.Cmd) {
	p.cfg, _ = p.store.PomodoroSettings()
	p.phase = pomodoroWork
	p.paused = false
	p.remaining = time.Duration(p.cfg.WorkMinutes) * time.Minute
	p.saveSnapshot()
	return p, nil
}

func (p pomodoroModel) startBreak(phase pomodoroPhase) (pomodoroModel, tea.Cmd) {
	p.cfg, _ = p.store.PomodoroSettings()
	p.phase = phase
	p.paused = false
	minutes := p.cfg.ShortBreakMinutes
	if phase == pomodoroLongBreak {
		minutes = p.cfg.LongBreakMinutes
	}
	p.remaining = time.Duration(minutes) * time.Minute
	p.saveSnapshot()
	return p, nil
}

func (p pomodoroModel) advancePhase() (pomodoroModel, tea.Cmd) {
	switch p.phase {
	case pomodoroWork:
		// One work countdown done: log it, then break.
		if _, err := p.store.AddCompletedPomodoro(p.taskLabel, p.cfg.WorkMinutes, time.Now()); err != nil {
			return p, reportError(err)
		}
		p.cyclesCompleted++
		next := pomodoroShortBreak
		if p.cyclesCompleted >= p.cfg.CyclesPerLongBreak {
			next = pomodoroLongBreak
			p.cyclesCompleted = 0
		}
		model, _ := p.startBreak(next)
		note := "Pomodoro complete, short break \a"
		if next == pomodoroLongBreak {
			note = "Set complete, long break \a"
		}
		return model, tea.Batch(model.refresh(), report(note))

	case pomodoroShortBreak, pomodoroLongBreak:
		model, _ := p.startWork()
		return model, report("Back to work \a")
	}
	return p, nil
}

func (p pomodoroModel) cancel() (pomodoroModel, tea.Cmd) {
	p.phase = pomodoroIdle
	p.paused = false
	p.remaining = 0
	p.cyclesCompleted = 0
	p.store.ClearPomodoroSnapshot()
	return p, report("Pomodoro cancelled")
}

// --- Label form ---

func (p pomodoroModel) showLabelForm() (pomodoroModel, tea.Cmd) {
	*p.formLabel = p.taskLabel
	p.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Working on").
			Description("Logged with each completed pomodoro").Value(p.formLabel),
	)).WithShowHelp(true).WithShowErrors(true)
	p.formActive = true
	return p, p.form.Init()
}

func (p pomodoroModel) updateForm(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.taskLabel = *p.formLabel
		if p.phase != pomodoroIdle {
			p.saveSnapshot()
		}
		return p, nil
	}
	return p, cmd
}

// --- View ---

func (p pomodoroModel) view() string {
	if p.formActive && p.form != nil {
		return activePanelStyle.Width(p.width - 4).Render(p.form.View())
	}

	w := p.width - 4
	title := titleStyle.Render("Pomodoro")

	var timeDisplay, phaseLabel string
	switch p.phase {
	case pomodoroIdle:
		timeDisplay = mutedStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).
			Render(formatCountdown(time.Duration(p.cfg.WorkMinutes) * time.Minute))
		phaseLabel = mutedStyle.Render("Ready — press s to begin")
	case pomodoroWork:
		timeDisplay = accentStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatCountdown(p.remaining))
		phaseLabel = accentStyle.Bold(true).Render("WORK")
	case pomodoroShortBreak:
		timeDisplay = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatCountdown(p.remaining))
		phaseLabel = successStyle.Bold(true).Render("SHORT BREAK")
	case pomodoroLongBreak:
		timeDisplay = highlightStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatCountdown(p.remaining))
		phaseLabel = highlightStyle.Bold(true).Render("LONG BREAK")
	}
	if p.paused {
		phaseLabel += warningStyle.Render("  ⏸ paused")
	}

	var rows []string
	rows = append(rows, title, "", timeDisplay, phaseLabel, "", p.renderCycles())
	if p.taskLabel != "" {
		rows = append(rows, mutedStyle.Render("working on: ")+normalItemStyle.Render(p.taskLabel))
	}
	rows = append(rows, "", p.renderControls(), "", p.renderLog())

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func (p pomodoroModel) renderCycles() string {
	target := p.cfg.CyclesPerLongBreak
	var parts []string
	for i := 0; i < target; i++ {
		switch {
		case i < p.cyclesCompleted:
			parts = append(parts, successStyle.Render("●"))
		case i == p.cyclesCompleted && p.phase == pomodoroWork:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d until long break", p.cyclesCompleted, target))
	return strings.Join(parts, " ") + counter
}

func (p pomodoroModel) renderControls() string {
	switch p.phase {
	case pomodoroIdle:
		return mutedStyle.Render("s: start  e: set task label")
	case pomodoroWork:
		return mutedStyle.Render("space: pause  S: cancel  e: label")
	default:
		return mutedStyle.Render("b: skip break  space: pause  S: cancel")
	}
}

func (p pomodoroModel) renderLog() string {
	if len(p.log) == 0 {
		return mutedStyle.Render("no pomodoros logged yet")
	}
	var rows []string
	rows = append(rows, mutedStyle.Render("Recent"))
	for _, e := range p.log {
		label := e.TaskLabel
		if label == "" {
			label = "(unlabeled)"
		}
		rows = append(rows, fmt.Sprintf("%s  %s  %s",
			mutedStyle.Render(e.CompletedAt.Local().Format("Jan 02 15:04")),
			normalItemStyle.Render(label),
			mutedStyle.Render(fmt.Sprintf("%dm", e.DurationMinutes)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Center, rows...)
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
