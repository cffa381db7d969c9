package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/plannr/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewHabits
	viewGoals
	viewPomodoro
	viewSettings
)

var viewNames = []string{"Tasks", "Habits", "Goals", "Pomodoro", "Settings"}

// --- Messages ---

type tasksDataMsg struct {
	pending  []store.Task
	done     []store.Task
	deferred []store.Task
}

type habitsDataMsg struct {
	habits      []store.Habit
	completions map[string][]string // habit id -> current-ledger dates
	stats       map[string]*store.HabitStats
	history     map[string][]store.WeekCount
}

type goalsDataMsg struct {
	goals []store.Goal
}

type settingsDataMsg struct {
	cfg store.PomodoroSettings
	log []store.PomodoroLogEntry
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

// storeChangedMsg carries the key of a document another view mutated.
type storeChangedMsg string

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func errorStatus(err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
}
