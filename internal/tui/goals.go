package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/plannr/internal/store"
)

type goalFormKind int

const (
	goalFormNone goalFormKind = iota
	goalFormNew
	goalFormEdit
	goalFormSubGoal
	goalFormEditSubGoal
	goalFormFeedback
)

type goalsModel struct {
	store  *store.Store
	width  int
	height int

	goals     []store.Goal
	cursor    int
	inDetail  bool
	subCursor int

	formActive bool
	form       *huh.Form
	formKind   goalFormKind
	editingID  string // goal or sub-goal id, depending on formKind

	// Form field pointers (survive value copies)
	formTitle    *string
	formReward   *string
	formText     *string
	formEstimate *string
	formFeedback *string
}

func newGoalsModel(s *store.Store) goalsModel {
	title, reward, text, estimate, feedback := "", "", "", "", ""
	return goalsModel{
		store:        s,
		formTitle:    &title,
		formReward:   &reward,
		formText:     &text,
		formEstimate: &estimate,
		formFeedback: &feedback,
	}
}

func (g *goalsModel) setSize(w, h int) {
	g.width = w
	g.height = h
}

func (g goalsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		goals, _ := g.store.ListGoals()
		return goalsDataMsg{goals: goals}
	}
}

func (g goalsModel) selected() *store.Goal {
	if g.cursor < 0 || g.cursor >= len(g.goals) {
		return nil
	}
	return &g.goals[g.cursor]
}

func (g goalsModel) selectedSubGoal() *store.SubGoal {
	goal := g.selected()
	if goal == nil || g.subCursor < 0 || g.subCursor >= len(goal.SubGoals) {
		return nil
	}
	return &goal.SubGoals[g.subCursor]
}

func (g goalsModel) update(msg tea.Msg) (goalsModel, tea.Cmd) {
	if g.formActive && g.form != nil {
		return g.updateForm(msg)
	}

	switch msg := msg.(type) {
	case goalsDataMsg:
		g.goals = msg.goals
		if g.cursor >= len(g.goals) {
			g.cursor = max(0, len(g.goals)-1)
		}
		if goal := g.selected(); goal != nil && g.subCursor >= len(goal.SubGoals) {
			g.subCursor = max(0, len(goal.SubGoals)-1)
		}
		return g, nil

	case tea.KeyMsg:
		if g.inDetail {
			return g.updateDetail(msg)
		}
		return g.updateList(msg)
	}
	return g, nil
}

func (g goalsModel) updateList(msg tea.KeyMsg) (goalsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if g.cursor > 0 {
			g.cursor--
		}
	case key.Matches(msg, keys.Down):
		if g.cursor < len(g.goals)-1 {
			g.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if g.selected() != nil {
			g.inDetail = true
			g.subCursor = 0
		}
	case key.Matches(msg, keys.New):
		return g.showGoalForm(nil)
	case key.Matches(msg, keys.Edit):
		if goal := g.selected(); goal != nil {
			return g.showGoalForm(goal)
		}
	case key.Matches(msg, keys.Delete):
		if goal := g.selected(); goal != nil {
			if err := g.store.DeleteGoal(goal.ID); err != nil {
				return g, reportError(err)
			}
			return g, tea.Batch(g.refresh(), report("Goal deleted"))
		}
	case key.Matches(msg, keys.Complete):
		if goal := g.selected(); goal != nil {
			if goal.Completed {
				if _, err := g.store.ToggleGoalCompletion(goal.ID, false, ""); err != nil {
					return g, reportError(err)
				}
				return g, tea.Batch(g.refresh(), report("Goal reopened"))
			}
			return g.showFeedbackForm(*goal)
		}
	case key.Matches(msg, keys.Auto):
		if goal := g.selected(); goal != nil {
			updated, err := g.store.ToggleAutoProgress(goal.ID, !goal.AutoProgress)
			if err != nil {
				return g, reportError(err)
			}
			note := "Manual progress"
			if updated != nil && updated.AutoProgress {
				note = fmt.Sprintf("Auto progress: %d%%", updated.Progress)
			}
			return g, tea.Batch(g.refresh(), report(note))
		}
	case key.Matches(msg, keys.Left):
		return g.nudgeProgress(-5)
	case key.Matches(msg, keys.Right):
		return g.nudgeProgress(+5)
	}
	return g, nil
}

// nudgeProgress adjusts the manual slider; ignored while auto progress
// owns the value.
func (g goalsModel) nudgeProgress(delta int) (goalsModel, tea.Cmd) {
	goal := g.selected()
	if goal == nil || goal.AutoProgress {
		return g, nil
	}
	if err := g.store.UpdateGoalProgress(goal.ID, goal.Progress+delta); err != nil {
		return g, reportError(err)
	}
	return g, g.refresh()
}

func (g goalsModel) updateDetail(msg tea.KeyMsg) (goalsModel, tea.Cmd) {
	goal := g.selected()
	if goal == nil {
		g.inDetail = false
		return g, nil
	}

	switch {
	case key.Matches(msg, keys.Back):
		g.inDetail = false
	case key.Matches(msg, keys.Up):
		if g.subCursor > 0 {
			g.subCursor--
		}
	case key.Matches(msg, keys.Down):
		if g.subCursor < len(goal.SubGoals)-1 {
			g.subCursor++
		}
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Complete):
		if sg := g.selectedSubGoal(); sg != nil {
			if err := g.store.ToggleSubGoal(goal.ID, sg.ID, !sg.Completed); err != nil {
				return g, reportError(err)
			}
			return g, g.refresh()
		}
	case key.Matches(msg, keys.New):
		return g.showSubGoalForm(*goal, nil)
	case key.Matches(msg, keys.Edit):
		if sg := g.selectedSubGoal(); sg != nil {
			return g.showSubGoalForm(*goal, sg)
		}
	case key.Matches(msg, keys.Delete):
		if sg := g.selectedSubGoal(); sg != nil {
			if err := g.store.DeleteSubGoal(goal.ID, sg.ID); err != nil {
				return g, reportError(err)
			}
			return g, tea.Batch(g.refresh(), report("Sub-goal deleted"))
		}
	}
	return g, nil
}

// --- Forms ---

func requireText(field string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func (g goalsModel) showGoalForm(editing *store.Goal) (goalsModel, tea.Cmd) {
	if editing != nil {
		g.formKind = goalFormEdit
		g.editingID = editing.ID
		*g.formTitle = editing.Title
		*g.formReward = editing.RewardNote
	} else {
		g.formKind = goalFormNew
		g.editingID = ""
		*g.formTitle = ""
		*g.formReward = ""
	}

	fields := []huh.Field{
		huh.NewInput().Title("Goal").Value(g.formTitle).Validate(requireText("title")),
	}
	if editing == nil {
		fields = append(fields, huh.NewInput().Title("Reward").
			Description("Something to look forward to").Value(g.formReward))
	}
	g.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	g.formActive = true
	return g, g.form.Init()
}

func (g goalsModel) showSubGoalForm(goal store.Goal, editing *store.SubGoal) (goalsModel, tea.Cmd) {
	if editing != nil {
		g.formKind = goalFormEditSubGoal
		g.editingID = editing.ID
		*g.formText = editing.Text
		*g.formEstimate = strconv.Itoa(editing.EstimatedMinutes)
	} else {
		g.formKind = goalFormSubGoal
		g.editingID = ""
		*g.formText = ""
		*g.formEstimate = ""
	}

	g.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Sub-goal").Value(g.formText).Validate(requireText("text")),
		huh.NewInput().Title("Estimated minutes").Value(g.formEstimate),
	)).WithShowHelp(true).WithShowErrors(true)
	g.formActive = true
	return g, g.form.Init()
}

func (g goalsModel) showFeedbackForm(goal store.Goal) (goalsModel, tea.Cmd) {
	g.formKind = goalFormFeedback
	g.editingID = goal.ID
	*g.formFeedback = ""

	g.form = huh.NewForm(huh.NewGroup(
		huh.NewText().Title("How did it go?").
			Description("Stored with the completed goal").Value(g.formFeedback),
	)).WithShowHelp(true).WithShowErrors(true)
	g.formActive = true
	return g, g.form.Init()
}

func (g goalsModel) updateForm(msg tea.Msg) (goalsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			g.formActive = false
			g.form = nil
			return g, nil
		}
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.formActive = false
		if err := g.saveForm(); err != nil {
			return g, reportError(err)
		}
		return g, g.refresh()
	}
	return g, cmd
}

func (g *goalsModel) saveForm() error {
	switch g.formKind {
	case goalFormNew:
		_, err := g.store.AddGoal(*g.formTitle, *g.formReward)
		return err
	case goalFormEdit:
		return g.store.UpdateGoalTitle(g.editingID, *g.formTitle)
	case goalFormSubGoal:
		goal := g.selected()
		if goal == nil {
			return nil
		}
		estimate, _ := strconv.Atoi(*g.formEstimate)
		_, err := g.store.AddSubGoal(goal.ID, *g.formText, estimate)
		return err
	case goalFormEditSubGoal:
		goal := g.selected()
		if goal == nil {
			return nil
		}
		estimate, _ := strconv.Atoi(*g.formEstimate)
		return g.store.UpdateSubGoalText(goal.ID, g.editingID, *g.formText, estimate)
	case goalFormFeedback:
		_, err := g.store.ToggleGoalCompletion(g.editingID, true, *g.formFeedback)
		return err
	}
	return nil
}

// --- View ---

func (g goalsModel) view() string {
	if g.formActive && g.form != nil {
		return activePanelStyle.Width(g.width - 4).Render(g.form.View())
	}
	if g.inDetail {
		return g.renderDetail()
	}
	return g.renderList()
}

func (g goalsModel) renderList() string {
	w := g.width - 4

	var rows []string
	rows = append(rows, titleStyle.Render(fmt.Sprintf("Goals (%d)", len(g.goals))), "")

	if len(g.goals) == 0 {
		rows = append(rows, mutedStyle.Render("  n: create your first goal"))
	}
	for i, goal := range g.goals {
		cursor := "  "
		style := normalItemStyle
		if i == g.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		title := style.Render(goal.Title)
		if goal.Completed {
			title = strikeStyle.Render(goal.Title) + successStyle.Render(" ✓")
		}

		mode := ""
		if goal.AutoProgress {
			mode = highlightStyle.Render(" auto")
		}
		rows = append(rows, fmt.Sprintf("%s%s%s", cursor, title, mode))
		rows = append(rows, "    "+renderProgressBar(goal.Progress, min(40, w-20))+
			mutedStyle.Render(fmt.Sprintf("  %d sub-goals", len(goal.SubGoals))))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: sub-goals  c: complete  a: auto  ←/→: progress"))

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (g goalsModel) renderDetail() string {
	w := g.width - 4
	goal := g.selected()
	if goal == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("No goal selected"))
	}

	var rows []string
	rows = append(rows, titleStyle.Render(goal.Title))
	rows = append(rows, renderProgressBar(goal.Progress, min(40, w-10)))
	if goal.RewardNote != "" {
		rows = append(rows, mutedStyle.Render("reward: ")+normalItemStyle.Render(goal.RewardNote))
	}
	if goal.Completed && goal.Feedback != "" {
		rows = append(rows, mutedStyle.Render("feedback: ")+normalItemStyle.Render(goal.Feedback))
	}
	rows = append(rows, "")

	if len(goal.SubGoals) == 0 {
		rows = append(rows, mutedStyle.Render("  n: add a sub-goal"))
	}
	for i, sg := range goal.SubGoals {
		cursor := "  "
		style := normalItemStyle
		if i == g.subCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := mutedStyle.Render("[ ]")
		text := style.Render(sg.Text)
		if sg.Completed {
			check = successStyle.Render("[x]")
			text = strikeStyle.Render(sg.Text)
		}
		line := fmt.Sprintf("%s%s %s", cursor, check, text)
		if sg.EstimatedMinutes > 0 {
			line += mutedStyle.Render(fmt.Sprintf("  %dm", sg.EstimatedMinutes))
		}
		rows = append(rows, line)
	}
	rows = append(rows, "", mutedStyle.Render("  enter: toggle  n: new  e: edit  x: delete  esc: back"))

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderProgressBar(progress, width int) string {
	if width < 10 {
		width = 10
	}
	filled := progress * width / 100
	bar := successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3d%%", bar, progress)
}
