package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/plannr/internal/store"
)

// stopwatchSaveEvery is how often accumulated seconds are snapshotted
// back to the running task while the stopwatch runs.
const stopwatchSaveEvery = 30

type tasksModel struct {
	store  *store.Store
	width  int
	height int

	lists  map[store.Partition][]store.Task
	column int // index into store.Partitions
	cursor map[store.Partition]int

	// Stopwatch against one pending task.
	watchID      string
	watchBase    int64 // actualTime when the watch started
	watchElapsed int64 // seconds since start

	formActive bool
	form       *huh.Form
	editingID  string

	// Form field pointers (survive value copies)
	formText      *string
	formEstimate  *string
	formPartition *string
}

func newTasksModel(s *store.Store) tasksModel {
	text, estimate, partition := "", "", string(store.PartitionPending)
	return tasksModel{
		store:         s,
		lists:         map[store.Partition][]store.Task{},
		cursor:        map[store.Partition]int{},
		formText:      &text,
		formEstimate:  &estimate,
		formPartition: &partition,
	}
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		pending, _ := t.store.ListTasks(store.PartitionPending)
		done, _ := t.store.ListTasks(store.PartitionDone)
		deferred, _ := t.store.ListTasks(store.PartitionDeferred)
		return tasksDataMsg{pending: pending, done: done, deferred: deferred}
	}
}

func (t tasksModel) activePartition() store.Partition {
	return store.Partitions[t.column]
}

func (t tasksModel) selected() *store.Task {
	p := t.activePartition()
	list := t.lists[p]
	c := t.cursor[p]
	if c < 0 || c >= len(list) {
		return nil
	}
	return &list[c]
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		t.lists[store.PartitionPending] = msg.pending
		t.lists[store.PartitionDone] = msg.done
		t.lists[store.PartitionDeferred] = msg.deferred
		for _, p := range store.Partitions {
			if t.cursor[p] >= len(t.lists[p]) {
				t.cursor[p] = max(0, len(t.lists[p])-1)
			}
		}
		return t, nil

	case tickMsg:
		if t.watchID != "" {
			t.watchElapsed++
			if t.watchElapsed%stopwatchSaveEvery == 0 {
				t.persistWatch()
			}
		}
		return t, nil

	case tea.KeyMsg:
		return t.updateKeys(msg)
	}
	return t, nil
}

func (t tasksModel) updateKeys(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	p := t.activePartition()

	switch {
	case key.Matches(msg, keys.Left):
		if t.column > 0 {
			t.column--
		}
	case key.Matches(msg, keys.Right):
		if t.column < len(store.Partitions)-1 {
			t.column++
		}
	case key.Matches(msg, keys.Up):
		if t.cursor[p] > 0 {
			t.cursor[p]--
		}
	case key.Matches(msg, keys.Down):
		if t.cursor[p] < len(t.lists[p])-1 {
			t.cursor[p]++
		}
	case key.Matches(msg, keys.New):
		return t.showForm(nil)
	case key.Matches(msg, keys.Edit):
		if task := t.selected(); task != nil {
			return t.showForm(task)
		}
	case key.Matches(msg, keys.Delete):
		if task := t.selected(); task != nil {
			if task.ID == t.watchID {
				t.watchID = ""
			}
			if err := t.store.DeleteTask(task.ID, p); err != nil {
				return t, reportError(err)
			}
			return t, tea.Batch(t.refresh(), report("Task deleted"))
		}
	case key.Matches(msg, keys.Complete):
		if task := t.selected(); task != nil {
			return t.completeOrReopen(*task)
		}
	case key.Matches(msg, keys.Defer):
		if task := t.selected(); task != nil && p == store.PartitionPending {
			if _, err := t.store.MoveTask(task.ID, p, store.PartitionDeferred); err != nil {
				return t, reportError(err)
			}
			return t, tea.Batch(t.refresh(), report("Deferred to tomorrow"))
		}
	case key.Matches(msg, keys.Start):
		if task := t.selected(); task != nil && p == store.PartitionPending {
			return t.toggleWatch(*task)
		}
	}
	return t, nil
}

// completeOrReopen moves pending/deferred tasks to done and done tasks
// back to pending.
func (t tasksModel) completeOrReopen(task store.Task) (tasksModel, tea.Cmd) {
	from := task.Partition
	if from == store.PartitionDone {
		moved, err := t.store.MoveTask(task.ID, from, store.PartitionPending)
		if err != nil {
			return t, reportError(err)
		}
		if moved != nil {
			moved.Completed = false
			moved.CompletedAt = nil
			if err := t.store.UpdateTask(*moved); err != nil {
				return t, reportError(err)
			}
		}
		return t, tea.Batch(t.refresh(), report("Task reopened"))
	}

	if task.ID == t.watchID {
		t.persistWatch()
		t.watchID = ""
	}
	moved, err := t.store.MoveTask(task.ID, from, store.PartitionDone)
	if err != nil {
		return t, reportError(err)
	}
	if moved != nil {
		now := time.Now()
		moved.Completed = true
		moved.CompletedAt = &now
		if err := t.store.UpdateTask(*moved); err != nil {
			return t, reportError(err)
		}
	}
	return t, tea.Batch(t.refresh(), report("Task completed"))
}

func (t tasksModel) toggleWatch(task store.Task) (tasksModel, tea.Cmd) {
	if t.watchID == task.ID {
		t.persistWatch()
		t.watchID = ""
		return t, tea.Batch(t.refresh(), report("Stopwatch stopped"))
	}
	if t.watchID != "" {
		t.persistWatch()
	}
	t.watchID = task.ID
	t.watchBase = task.ActualTime
	t.watchElapsed = 0
	return t, report("Stopwatch started")
}

// persistWatch writes the accumulated seconds back onto the task.
func (t *tasksModel) persistWatch() {
	if t.watchID == "" {
		return
	}
	for i := range t.lists[store.PartitionPending] {
		task := t.lists[store.PartitionPending][i]
		if task.ID == t.watchID {
			task.ActualTime = t.watchBase + t.watchElapsed
			t.store.UpdateTask(task)
			t.lists[store.PartitionPending][i] = task
			return
		}
	}
}

func (t tasksModel) watchRunning() bool { return t.watchID != "" }

// --- Form ---

func (t tasksModel) showForm(editing *store.Task) (tasksModel, tea.Cmd) {
	if editing != nil {
		t.editingID = editing.ID
		*t.formText = editing.Text
		*t.formEstimate = editing.EstimatedTime
		*t.formPartition = string(editing.Partition)
	} else {
		t.editingID = ""
		*t.formText = ""
		*t.formEstimate = ""
		*t.formPartition = string(t.activePartition())
	}

	fields := []huh.Field{
		huh.NewInput().Title("Task").Value(t.formText).
			Validate(func(v string) error {
				if strings.TrimSpace(v) == "" {
					return errors.New("task text is required")
				}
				return nil
			}),
		huh.NewInput().Title("Estimated time").Value(t.formEstimate).
			Description("Free-form, e.g. 30 or \"2 pomodoros\""),
	}
	if editing == nil {
		fields = append(fields, huh.NewSelect[string]().Title("Partition").
			Options(
				huh.NewOption("Today", string(store.PartitionPending)),
				huh.NewOption("Tomorrow", string(store.PartitionDeferred)),
			).Value(t.formPartition))
	}

	t.form = huh.NewForm(huh.NewGroup(fields...)).
		WithShowHelp(true).WithShowErrors(true)
	t.formActive = true
	return t, t.form.Init()
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		if err := t.saveForm(); err != nil {
			return t, reportError(err)
		}
		return t, t.refresh()
	}
	return t, cmd
}

func (t *tasksModel) saveForm() error {
	if t.editingID != "" {
		p := t.activePartition()
		for _, task := range t.lists[p] {
			if task.ID == t.editingID {
				task.Text = *t.formText
				task.EstimatedTime = *t.formEstimate
				return t.store.UpdateTask(task)
			}
		}
		return nil
	}
	_, err := t.store.AddTask(store.Task{
		Text:          *t.formText,
		EstimatedTime: *t.formEstimate,
		Partition:     store.Partition(*t.formPartition),
	})
	return err
}

// --- View ---

var partitionTitles = map[store.Partition]string{
	store.PartitionPending:  "Today",
	store.PartitionDone:     "Done",
	store.PartitionDeferred: "Tomorrow",
}

func (t tasksModel) view() string {
	if t.formActive && t.form != nil {
		return activePanelStyle.Width(t.width - 4).Render(t.form.View())
	}

	colWidth := (t.width / 3) - 4
	if colWidth < 20 {
		colWidth = 20
	}

	var columns []string
	for i, p := range store.Partitions {
		columns = append(columns, t.renderColumn(p, colWidth, i == t.column))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func (t tasksModel) renderColumn(p store.Partition, width int, active bool) string {
	title := titleStyle.Render(fmt.Sprintf("%s (%d)", partitionTitles[p], len(t.lists[p])))

	var rows []string
	rows = append(rows, title, "")

	if len(t.lists[p]) == 0 {
		rows = append(rows, mutedStyle.Render("  nothing here"))
	}
	for i, task := range t.lists[p] {
		rows = append(rows, t.renderTask(task, i == t.cursor[p] && active, width))
	}

	style := panelStyle
	if active {
		style = activePanelStyle
	}
	return style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (t tasksModel) renderTask(task store.Task, selected bool, width int) string {
	cursor := "  "
	style := normalItemStyle
	if selected {
		cursor = "> "
		style = selectedItemStyle
	}

	text := task.Text
	if task.Completed {
		text = strikeStyle.Render(text)
	} else {
		text = style.Render(text)
	}

	var meta []string
	if task.EstimatedTime != "" {
		meta = append(meta, "est "+task.EstimatedTime)
	}
	actual := task.ActualTime
	if task.ID == t.watchID {
		actual = t.watchBase + t.watchElapsed
		meta = append(meta, successStyle.Render("● "+formatSeconds(actual)))
	} else if actual > 0 {
		meta = append(meta, formatSeconds(actual))
	}
	if task.Source == store.RoutineSource {
		meta = append(meta, highlightStyle.Render("routine"))
	}

	line := cursor + text
	if len(meta) > 0 {
		line += mutedStyle.Render("  " + strings.Join(meta, "  "))
	}
	return line
}

func report(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func reportError(err error) tea.Cmd {
	return func() tea.Msg { return errorStatus(err) }
}
