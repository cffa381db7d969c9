package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/plannr/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	cfg store.PomodoroSettings

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	workMin  *string
	shortMin *string
	longMin  *string
	cycles   *string
}

func newSettingsModel(s *store.Store) settingsModel {
	w, sb, lb, c := "", "", "", ""
	return settingsModel{
		store:    s,
		workMin:  &w,
		shortMin: &sb,
		longMin:  &lb,
		cycles:   &c,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		cfg, _ := s.store.PomodoroSettings()
		log, _ := s.store.PomodoroLog(5)
		return settingsDataMsg{cfg: cfg, log: log}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.cfg = msg.cfg
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.workMin = strconv.Itoa(s.cfg.WorkMinutes)
	*s.shortMin = strconv.Itoa(s.cfg.ShortBreakMinutes)
	*s.longMin = strconv.Itoa(s.cfg.LongBreakMinutes)
	*s.cycles = strconv.Itoa(s.cfg.CyclesPerLongBreak)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work (min)").Value(s.workMin),
			huh.NewInput().Title("Short break (min)").Value(s.shortMin),
			huh.NewInput().Title("Long break (min)").Value(s.longMin),
			huh.NewInput().Title("Pomodoros before long break").Value(s.cycles),
		).Title("Pomodoro").
			Description("Applies from the next countdown; the running one is not rescaled"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, reportError(err)
		}
		return s, tea.Batch(s.refresh(), report("Settings saved"))
	}
	return s, cmd
}

// saveSettings builds a patch from the fields that parse; anything else
// keeps its stored value.
func (s *settingsModel) saveSettings() error {
	patch := store.PomodoroSettingsPatch{}
	if v, err := strconv.Atoi(*s.workMin); err == nil && v > 0 {
		patch.WorkMinutes = &v
	}
	if v, err := strconv.Atoi(*s.shortMin); err == nil && v > 0 {
		patch.ShortBreakMinutes = &v
	}
	if v, err := strconv.Atoi(*s.longMin); err == nil && v > 0 {
		patch.LongBreakMinutes = &v
	}
	if v, err := strconv.Atoi(*s.cycles); err == nil && v > 0 {
		patch.CyclesPerLongBreak = &v
	}
	_, err := s.store.UpdatePomodoroSettings(patch)
	return err
}

func (s settingsModel) view() string {
	if s.formActive && s.form != nil {
		return activePanelStyle.Width(s.width - 4).Render(s.form.View())
	}

	w := s.width - 4
	var rows []string
	rows = append(rows, titleStyle.Render("Settings"), "")
	rows = append(rows, s.renderSetting("Work", fmt.Sprintf("%d min", s.cfg.WorkMinutes)))
	rows = append(rows, s.renderSetting("Short break", fmt.Sprintf("%d min", s.cfg.ShortBreakMinutes)))
	rows = append(rows, s.renderSetting("Long break", fmt.Sprintf("%d min", s.cfg.LongBreakMinutes)))
	rows = append(rows, s.renderSetting("Cycles per long break", strconv.Itoa(s.cfg.CyclesPerLongBreak)))
	rows = append(rows, "")

	week := store.WeekDates(time.Now())
	count, minutes, err := s.store.PomodoroTotals(week[0], week[6])
	if err == nil {
		rows = append(rows, mutedStyle.Render(
			fmt.Sprintf("This week: %d pomodoros, %s focused", count,
				formatSeconds(int64(minutes)*60))))
	}
	rows = append(rows, "", mutedStyle.Render("enter: edit"))

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (s settingsModel) renderSetting(name, value string) string {
	return fmt.Sprintf("  %s %s",
		mutedStyle.Width(26).Render(name),
		normalItemStyle.Render(value))
}
