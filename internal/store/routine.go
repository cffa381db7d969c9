package store

import (
	"fmt"
	"time"
)

// RoutineSource tags tasks created by the daily routine pass.
const RoutineSource = "Routine"

// GenerateRoutineTasks runs the once-per-load reconciliation pass: for
// every build-kind habit with auto-create enabled that is scheduled on
// now's date, a pending task linked to the habit is created unless a
// task with that habit ref and today's date bucket already exists in
// any partition. Re-running within the same day therefore creates
// nothing; the pass is idempotent. Returns the tasks it created.
func (s *Store) GenerateRoutineTasks(now time.Time) ([]Task, error) {
	habits, err := s.ListHabits()
	if err != nil {
		return nil, fmt.Errorf("routine pass: %w", err)
	}

	today := DateOf(now)
	var created []Task
	for _, h := range habits {
		if h.Kind != HabitBuild || !h.AutoCreateTask || !h.ScheduledOn(now) {
			continue
		}

		existing, err := s.FindTaskForHabit(h.ID, today)
		if err != nil {
			return created, fmt.Errorf("routine pass: %w", err)
		}
		if existing != nil {
			continue
		}

		task, err := s.AddTask(Task{
			Text:      fmt.Sprintf("%s (from Habit)", h.Name),
			Partition: PartitionPending,
			Source:    RoutineSource,
			HabitRef:  h.ID,
		})
		if err != nil {
			return created, fmt.Errorf("routine pass: %w", err)
		}
		created = append(created, *task)
	}
	return created, nil
}
