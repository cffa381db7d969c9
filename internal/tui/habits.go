package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/plannr/internal/store"
)

// historyWeeks is the trailing window charted per habit.
const historyWeeks = 8

var weekdayShort = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

type habitsModel struct {
	store  *store.Store
	width  int
	height int

	habits      []store.Habit
	completions map[string][]string
	stats       map[string]*store.HabitStats
	history     map[string][]store.WeekCount
	cursor      int

	formActive bool
	form       *huh.Form
	editingID  string

	// Form field pointers (survive value copies)
	formName        *string
	formDesc        *string
	formKind        *string
	formRecurrence  *string
	formDays        *[]int
	formPerWeek     *string
	formAutoCreate  *bool
	formReplacement *string
}

func newHabitsModel(s *store.Store) habitsModel {
	name, desc := "", ""
	kind := string(store.HabitBuild)
	recur := string(store.RecurDaily)
	days := []int{}
	perWeek := "3"
	autoCreate := true
	replacement := ""
	return habitsModel{
		store:           s,
		completions:     map[string][]string{},
		stats:           map[string]*store.HabitStats{},
		history:         map[string][]store.WeekCount{},
		formName:        &name,
		formDesc:        &desc,
		formKind:        &kind,
		formRecurrence:  &recur,
		formDays:        &days,
		formPerWeek:     &perWeek,
		formAutoCreate:  &autoCreate,
		formReplacement: &replacement,
	}
}

func (h *habitsModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

func (h habitsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		habits, _ := h.store.ListHabits()
		now := time.Now()

		msg := habitsDataMsg{
			habits:      habits,
			completions: map[string][]string{},
			stats:       map[string]*store.HabitStats{},
			history:     map[string][]store.WeekCount{},
		}
		for _, habit := range habits {
			dates, _ := h.store.HabitCompletions(habit.ID)
			msg.completions[habit.ID] = dates
			if stats, err := h.store.HabitStats(habit.ID, now); err == nil {
				msg.stats[habit.ID] = stats
			}
			if weeks, err := h.store.WeeklyHistory(habit.ID, now, historyWeeks); err == nil {
				msg.history[habit.ID] = weeks
			}
		}
		return msg
	}
}

func (h habitsModel) selected() *store.Habit {
	if h.cursor < 0 || h.cursor >= len(h.habits) {
		return nil
	}
	return &h.habits[h.cursor]
}

func (h habitsModel) update(msg tea.Msg) (habitsModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}

	switch msg := msg.(type) {
	case habitsDataMsg:
		h.habits = msg.habits
		h.completions = msg.completions
		h.stats = msg.stats
		h.history = msg.history
		if h.cursor >= len(h.habits) {
			h.cursor = max(0, len(h.habits)-1)
		}
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.habits)-1 {
				h.cursor++
			}
		case key.Matches(msg, keys.Mark), key.Matches(msg, keys.Enter):
			if habit := h.selected(); habit != nil {
				return h.toggleToday(*habit)
			}
		case key.Matches(msg, keys.New):
			return h.showForm(nil)
		case key.Matches(msg, keys.Edit):
			if habit := h.selected(); habit != nil {
				return h.showForm(habit)
			}
		case key.Matches(msg, keys.Delete):
			if habit := h.selected(); habit != nil {
				if err := h.store.DeleteHabit(habit.ID); err != nil {
					return h, reportError(err)
				}
				return h, tea.Batch(h.refresh(), report("Habit deleted (history kept)"))
			}
		}
	}
	return h, nil
}

// toggleToday marks or unmarks today's completion for the habit.
func (h habitsModel) toggleToday(habit store.Habit) (habitsModel, tea.Cmd) {
	today := store.DateOf(time.Now())
	var err error
	var note string
	if slices.Contains(h.completions[habit.ID], today) {
		err = h.store.UnmarkHabitComplete(habit.ID, today)
		note = "Unmarked for today"
	} else {
		err = h.store.MarkHabitComplete(habit.ID, today)
		note = "Marked complete for today"
	}
	if err != nil {
		return h, reportError(err)
	}
	return h, tea.Batch(h.refresh(), report(note))
}

// --- Form ---

func (h habitsModel) showForm(editing *store.Habit) (habitsModel, tea.Cmd) {
	if editing != nil {
		h.editingID = editing.ID
		*h.formName = editing.Name
		*h.formDesc = editing.Description
		*h.formKind = string(editing.Kind)
		*h.formRecurrence = string(editing.Recurrence.Type)
		*h.formDays = slices.Clone(editing.Recurrence.DaysOfWeek)
		*h.formPerWeek = strconv.Itoa(max(1, editing.Recurrence.TimesPerWeek))
		*h.formAutoCreate = editing.AutoCreateTask
		*h.formReplacement = editing.ReplacementActivity
	} else {
		h.editingID = ""
		*h.formName = ""
		*h.formDesc = ""
		*h.formKind = string(store.HabitBuild)
		*h.formRecurrence = string(store.RecurDaily)
		*h.formDays = []int{}
		*h.formPerWeek = "3"
		*h.formAutoCreate = true
		*h.formReplacement = ""
	}

	dayOptions := make([]huh.Option[int], 7)
	for i, name := range weekdayShort {
		dayOptions[i] = huh.NewOption(name, i)
	}

	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(h.formName).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().Title("Description").Value(h.formDesc),
			huh.NewSelect[string]().Title("Kind").
				Options(
					huh.NewOption("Build", string(store.HabitBuild)),
					huh.NewOption("Avoid", string(store.HabitAvoid)),
				).Value(h.formKind),
			huh.NewInput().Title("Replacement activity").
				Description("Avoid habits only").Value(h.formReplacement),
		).Title("Habit"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Recurrence").
				Options(
					huh.NewOption("Every day", string(store.RecurDaily)),
					huh.NewOption("Times per week", string(store.RecurWeekly)),
					huh.NewOption("Specific days", string(store.RecurCustom)),
				).Value(h.formRecurrence),
			huh.NewMultiSelect[int]().Title("Days of week").
				Description("Specific-days recurrence only").
				Options(dayOptions...).Value(h.formDays),
			huh.NewInput().Title("Times per week").Value(h.formPerWeek),
			huh.NewConfirm().Title("Auto-create daily task?").Value(h.formAutoCreate),
		).Title("Schedule"),
	).WithShowHelp(true).WithShowErrors(true)

	h.formActive = true
	return h, h.form.Init()
}

func (h habitsModel) updateForm(msg tea.Msg) (habitsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			h.formActive = false
			h.form = nil
			return h, nil
		}
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}

	if h.form.State == huh.StateCompleted {
		h.formActive = false
		if err := h.saveForm(); err != nil {
			return h, reportError(err)
		}
		return h, h.refresh()
	}
	return h, cmd
}

func (h *habitsModel) saveForm() error {
	perWeek, _ := strconv.Atoi(*h.formPerWeek)
	habit := store.Habit{
		Name:        *h.formName,
		Description: *h.formDesc,
		Kind:        store.HabitKind(*h.formKind),
		Recurrence: store.Recurrence{
			Type: store.RecurrenceType(*h.formRecurrence),
		},
		AutoCreateTask:      *h.formAutoCreate,
		ReplacementActivity: *h.formReplacement,
	}
	switch habit.Recurrence.Type {
	case store.RecurCustom:
		habit.Recurrence.DaysOfWeek = slices.Clone(*h.formDays)
		slices.Sort(habit.Recurrence.DaysOfWeek)
	case store.RecurWeekly:
		habit.Recurrence.TimesPerWeek = max(1, perWeek)
	}

	if h.editingID != "" {
		for _, existing := range h.habits {
			if existing.ID == h.editingID {
				habit.ID = existing.ID
				habit.StartDate = existing.StartDate
				habit.EndDate = existing.EndDate
				habit.ReminderTime = existing.ReminderTime
				return h.store.UpdateHabit(habit)
			}
		}
		return nil
	}
	habit.StartDate = store.DateOf(time.Now())
	_, err := h.store.AddHabit(habit)
	return err
}

// --- View ---

func (h habitsModel) view() string {
	if h.formActive && h.form != nil {
		return activePanelStyle.Width(h.width - 4).Render(h.form.View())
	}

	listWidth := h.width / 3
	if listWidth < 26 {
		listWidth = 26
	}
	detailWidth := h.width - listWidth - 6

	list := h.renderList(listWidth)
	detail := h.renderDetail(detailWidth)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func (h habitsModel) renderList(width int) string {
	var rows []string
	rows = append(rows, titleStyle.Render(fmt.Sprintf("Habits (%d)", len(h.habits))), "")

	if len(h.habits) == 0 {
		rows = append(rows, mutedStyle.Render("  n: create your first habit"))
	}
	today := store.DateOf(time.Now())
	for i, habit := range h.habits {
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := mutedStyle.Render("○")
		if slices.Contains(h.completions[habit.ID], today) {
			check = successStyle.Render("●")
		}
		badge := ""
		if habit.Kind == store.HabitAvoid {
			badge = accentStyle.Render(" avoid")
		}
		rows = append(rows, fmt.Sprintf("%s%s %s%s", cursor, check, style.Render(habit.Name), badge))
		rows = append(rows, mutedStyle.Render("     "+recurrenceLabel(habit.Recurrence)))
	}

	return activePanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (h habitsModel) renderDetail(width int) string {
	habit := h.selected()
	if habit == nil {
		return panelStyle.Width(width).Render(mutedStyle.Render("No habit selected"))
	}

	var rows []string
	rows = append(rows, titleStyle.Render(habit.Name))
	if habit.Description != "" {
		rows = append(rows, mutedStyle.Render(habit.Description))
	}
	if habit.Kind == store.HabitAvoid && habit.ReplacementActivity != "" {
		rows = append(rows, mutedStyle.Render("instead: ")+normalItemStyle.Render(habit.ReplacementActivity))
	}
	rows = append(rows, "")

	rows = append(rows, h.renderWeekGrid(*habit))
	rows = append(rows, "")

	if stats := h.stats[habit.ID]; stats != nil {
		line := fmt.Sprintf("this week %d/7 (%d%%)   streak %d   best %d",
			stats.TotalThisWeek, stats.PercentThisWeek,
			stats.CurrentStreak, stats.BestStreakThisWeek)
		rows = append(rows, highlightStyle.Render(line), "")
	}

	rows = append(rows, mutedStyle.Render(fmt.Sprintf("Last %d weeks", historyWeeks)))
	rows = append(rows, h.renderHistoryChart(*habit, width-6))

	return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderWeekGrid draws the Sunday..Saturday completion row for the
// current week.
func (h habitsModel) renderWeekGrid(habit store.Habit) string {
	week := store.WeekDates(time.Now())
	dates := h.completions[habit.ID]

	var names, marks []string
	for i, d := range week {
		names = append(names, mutedStyle.Render(weekdayShort[i]))
		if slices.Contains(dates, d) {
			marks = append(marks, successStyle.Render("✓ "))
		} else {
			marks = append(marks, mutedStyle.Render("· "))
		}
	}
	return strings.Join(names, " ") + "\n" + strings.Join(marks, " ")
}

func (h habitsModel) renderHistoryChart(habit store.Habit, width int) string {
	weeks := h.history[habit.ID]
	if len(weeks) == 0 {
		return mutedStyle.Render("no history yet")
	}

	chartHeight := 8
	chart := barchart.New(max(20, width), chartHeight)
	bars := make([]barchart.BarData, 0, len(weeks))
	for _, wc := range weeks {
		label := store.ParseDate(wc.WeekStart).Format("01/02")
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  label,
				Value: float64(wc.Count),
				Style: lipgloss.NewStyle().Foreground(colorPrimary),
			}},
		})
	}
	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}

func recurrenceLabel(r store.Recurrence) string {
	switch r.Type {
	case store.RecurDaily:
		return "every day"
	case store.RecurWeekly:
		return fmt.Sprintf("%d× per week", r.TimesPerWeek)
	case store.RecurCustom:
		var names []string
		for _, d := range r.DaysOfWeek {
			if d >= 0 && d < 7 {
				names = append(names, weekdayShort[d])
			}
		}
		return strings.Join(names, " ")
	}
	return string(r.Type)
}
