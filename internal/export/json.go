package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/plannr/internal/store"
)

type jsonExport struct {
	ExportedAt  string              `json:"exported_at"`
	TaskCount   int                 `json:"task_count"`
	Tasks       []jsonTask          `json:"tasks"`
	Habits      []store.Habit       `json:"habits"`
	Completions map[string][]string `json:"completions"`
}

type jsonTask struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	Partition     string `json:"partition"`
	EstimatedTime string `json:"estimated_time,omitempty"`
	ActualSec     int64  `json:"actual_seconds,omitempty"`
	Actual        string `json:"actual,omitempty"`
	Completed     bool   `json:"completed"`
	CreatedAt     string `json:"created_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
	Source        string `json:"source,omitempty"`
	HabitRef      string `json:"habit_ref,omitempty"`
	GoalRef       string `json:"goal_ref,omitempty"`
}

// ToJSON writes tasks, habit definitions and the historical completion
// ledger as one pretty-printed document.
func ToJSON(tasks []store.Task, habits []store.Habit, completions map[string][]string, path string) error {
	out := jsonExport{
		ExportedAt:  time.Now().UTC().Format(time.RFC3339),
		TaskCount:   len(tasks),
		Habits:      habits,
		Completions: completions,
	}

	for _, t := range tasks {
		jt := jsonTask{
			ID:            t.ID,
			Text:          t.Text,
			Partition:     string(t.Partition),
			EstimatedTime: t.EstimatedTime,
			ActualSec:     t.ActualTime,
			Completed:     t.Completed,
			CreatedAt:     t.CreatedAt.Local().Format(time.RFC3339),
			Source:        t.Source,
			HabitRef:      t.HabitRef,
			GoalRef:       t.GoalRef,
		}
		if t.ActualTime > 0 {
			jt.Actual = formatDuration(t.ActualTime)
		}
		if t.CompletedAt != nil {
			jt.CompletedAt = t.CompletedAt.Local().Format(time.RFC3339)
		}
		out.Tasks = append(out.Tasks, jt)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
