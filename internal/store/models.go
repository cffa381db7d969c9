package store

import (
	"time"

	"github.com/google/uuid"
)

// Partition names the bucket a task lives in. A task belongs to exactly
// one partition at a time; the partition decides which stored list
// physically holds it.
type Partition string

const (
	PartitionPending  Partition = "pending"
	PartitionDone     Partition = "done"
	PartitionDeferred Partition = "deferred"
)

// Partitions lists all task partitions in display order.
var Partitions = []Partition{PartitionPending, PartitionDone, PartitionDeferred}

type Task struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	EstimatedTime string     `json:"estimatedTime,omitempty"` // free-form, stored verbatim
	ActualTime    int64      `json:"actualTime,omitempty"`    // seconds, accumulated by the stopwatch
	Completed     bool       `json:"completed"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	Partition     Partition  `json:"partition"`
	Source        string     `json:"source,omitempty"`
	HabitRef      string     `json:"habitRef,omitempty"`
	GoalRef       string     `json:"goalRef,omitempty"`
	SubGoalRef    string     `json:"subGoalRef,omitempty"`
}

// HabitKind distinguishes habits you are building up from ones you are
// trying to avoid.
type HabitKind string

const (
	HabitBuild HabitKind = "build"
	HabitAvoid HabitKind = "avoid"
)

type RecurrenceType string

const (
	RecurDaily  RecurrenceType = "daily"
	RecurWeekly RecurrenceType = "weekly"
	RecurCustom RecurrenceType = "custom"
)

type Recurrence struct {
	Type         RecurrenceType `json:"type"`
	DaysOfWeek   []int          `json:"daysOfWeek,omitempty"`   // 0=Sunday..6=Saturday, custom only
	TimesPerWeek int            `json:"timesPerWeek,omitempty"` // weekly only
}

type Habit struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Description         string     `json:"description,omitempty"`
	Kind                HabitKind  `json:"kind"`
	Recurrence          Recurrence `json:"recurrence"`
	StartDate           string     `json:"startDate"` // YYYY-MM-DD
	EndDate             string     `json:"endDate,omitempty"`
	ReminderTime        string     `json:"reminderTime,omitempty"` // HH:MM
	AutoCreateTask      bool       `json:"autoCreateTask"`
	ReplacementActivity string     `json:"replacementActivity,omitempty"` // avoid-kind only
}

// HabitStats summarizes one habit over the week containing the
// reference date. All figures are week-relative, not lifetime.
type HabitStats struct {
	TotalThisWeek       int
	CurrentStreak       int
	BestStreakThisWeek  int
	PercentThisWeek     int
	CompletionsThisWeek []string // completed dates within the week, ordered Sun..Sat
}

// WeekCount is one bucket of a trailing weekly history, for charting.
type WeekCount struct {
	WeekStart string // Sunday, YYYY-MM-DD
	Count     int
}

type SubGoal struct {
	ID               string    `json:"id"`
	Text             string    `json:"text"`
	Completed        bool      `json:"completed"`
	CreatedAt        time.Time `json:"createdAt"`
	EstimatedMinutes int       `json:"estimatedMinutes,omitempty"`
}

type Goal struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Progress     int        `json:"progress"` // 0..100
	CreatedAt    time.Time  `json:"createdAt"`
	SubGoals     []SubGoal  `json:"subGoals"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	Feedback     string     `json:"feedback,omitempty"`
	AutoProgress bool       `json:"autoProgress"`
	RewardNote   string     `json:"rewardNote,omitempty"`
}

type PomodoroSettings struct {
	WorkMinutes        int `json:"workMinutes"`
	ShortBreakMinutes  int `json:"shortBreakMinutes"`
	LongBreakMinutes   int `json:"longBreakMinutes"`
	CyclesPerLongBreak int `json:"cyclesPerLongBreak"`
}

// DefaultPomodoroSettings is what a fresh (or corrupt) settings
// document falls back to.
var DefaultPomodoroSettings = PomodoroSettings{
	WorkMinutes:        25,
	ShortBreakMinutes:  5,
	LongBreakMinutes:   15,
	CyclesPerLongBreak: 4,
}

// PomodoroSettingsPatch is a partial settings update; nil fields keep
// their current value. Explicit merge instead of a dynamic field spread.
type PomodoroSettingsPatch struct {
	WorkMinutes        *int
	ShortBreakMinutes  *int
	LongBreakMinutes   *int
	CyclesPerLongBreak *int
}

type PomodoroLogEntry struct {
	ID              string    `json:"id"`
	TaskLabel       string    `json:"taskLabel,omitempty"`
	CompletedAt     time.Time `json:"completedAt"`
	DurationMinutes int       `json:"durationMinutes"`
	DateBucket      string    `json:"dateBucket"` // YYYY-MM-DD
}

// PomodoroSnapshot is the persisted countdown state so a restart
// resumes the same cycle. It is always restored paused.
type PomodoroSnapshot struct {
	Phase            string `json:"phase"` // work, short_break, long_break
	RemainingSeconds int    `json:"remainingSeconds"`
	CyclesCompleted  int    `json:"cyclesCompleted"`
	TaskLabel        string `json:"taskLabel,omitempty"`
	SavedAtDate      string `json:"savedAtDate"` // YYYY-MM-DD
}

// newID returns an opaque unique identifier.
func newID() string {
	return uuid.New().String()
}
