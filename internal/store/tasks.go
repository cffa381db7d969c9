package store

import (
	"fmt"
	"time"
)

func taskKey(p Partition) string {
	switch p {
	case PartitionDone:
		return keyTasksDone
	case PartitionDeferred:
		return keyTasksDeferred
	default:
		return keyTasksPending
	}
}

// ListTasks returns the current contents of one partition, in stored
// order. An empty partition yields an empty slice.
func (s *Store) ListTasks(p Partition) ([]Task, error) {
	tasks, err := loadList[Task](s, taskKey(p))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// AddTask assigns an id and creation time to draft, stores it into the
// partition named on the draft (pending when unset) and returns the
// stored task.
func (s *Store) AddTask(draft Task) (*Task, error) {
	if draft.Partition == "" {
		draft.Partition = PartitionPending
	}
	draft.ID = newID()
	draft.CreatedAt = time.Now()

	key := taskKey(draft.Partition)
	tasks, err := loadList[Task](s, key)
	if err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}
	tasks = append(tasks, draft)
	if err := saveList(s, key, tasks); err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}
	return &draft, nil
}

// UpdateTask replaces the task with a matching id inside its own
// partition. Only that partition's list is scanned: an update carrying
// the wrong partition value finds nothing and changes nothing.
func (s *Store) UpdateTask(t Task) error {
	key := taskKey(t.Partition)
	tasks, err := loadList[Task](s, key)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	for i := range tasks {
		if tasks[i].ID == t.ID {
			tasks[i] = t
			return saveList(s, key, tasks)
		}
	}
	return nil
}

// DeleteTask removes the task by id from the given partition.
func (s *Store) DeleteTask(id string, p Partition) error {
	key := taskKey(p)
	tasks, err := loadList[Task](s, key)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return saveList(s, key, kept)
}

// MoveTask removes the task from the source partition, rewrites its
// partition field and appends it to the destination. When the id is not
// found in the source the call is a silent no-op: callers must pass the
// task's actual current partition.
func (s *Store) MoveTask(id string, from, to Partition) (*Task, error) {
	srcKey := taskKey(from)
	src, err := loadList[Task](s, srcKey)
	if err != nil {
		return nil, fmt.Errorf("move task: %w", err)
	}

	var moved *Task
	kept := src[:0]
	for i := range src {
		if src[i].ID == id && moved == nil {
			t := src[i]
			moved = &t
			continue
		}
		kept = append(kept, src[i])
	}
	if moved == nil {
		return nil, nil
	}

	if err := saveList(s, srcKey, kept); err != nil {
		return nil, fmt.Errorf("move task: %w", err)
	}

	moved.Partition = to
	dstKey := taskKey(to)
	dst, err := loadList[Task](s, dstKey)
	if err != nil {
		return nil, fmt.Errorf("move task: %w", err)
	}
	dst = append(dst, *moved)
	if err := saveList(s, dstKey, dst); err != nil {
		return nil, fmt.Errorf("move task: %w", err)
	}
	return moved, nil
}

// Rollover moves every deferred task created strictly before today into
// pending. Tasks deferred today stay put: they were deferred *for*
// today, not carried over. Idempotent; runs once per session before any
// other read. The done list is never touched.
func (s *Store) Rollover(now time.Time) (int, error) {
	today := DateOf(now)

	deferred, err := loadList[Task](s, keyTasksDeferred)
	if err != nil {
		return 0, fmt.Errorf("rollover: %w", err)
	}

	var overdue []Task
	kept := deferred[:0]
	for _, t := range deferred {
		if DateOf(t.CreatedAt) < today {
			overdue = append(overdue, t)
		} else {
			kept = append(kept, t)
		}
	}
	if len(overdue) == 0 {
		return 0, nil
	}

	pending, err := loadList[Task](s, keyTasksPending)
	if err != nil {
		return 0, fmt.Errorf("rollover: %w", err)
	}
	for _, t := range overdue {
		t.Partition = PartitionPending
		pending = append(pending, t)
	}

	if err := saveList(s, keyTasksPending, pending); err != nil {
		return 0, fmt.Errorf("rollover: %w", err)
	}
	if err := saveList(s, keyTasksDeferred, kept); err != nil {
		return 0, fmt.Errorf("rollover: %w", err)
	}
	return len(overdue), nil
}

// FindTaskForHabit scans all partitions for a task referencing habitID
// with the given creation date bucket. Weak-reference lookup: the habit
// does not own the task.
func (s *Store) FindTaskForHabit(habitID, date string) (*Task, error) {
	for _, p := range Partitions {
		tasks, err := loadList[Task](s, taskKey(p))
		if err != nil {
			return nil, fmt.Errorf("find task for habit: %w", err)
		}
		for i := range tasks {
			if tasks[i].HabitRef == habitID && DateOf(tasks[i].CreatedAt) == date {
				return &tasks[i], nil
			}
		}
	}
	return nil, nil
}

// AllTasks returns every task across all partitions, pending first.
func (s *Store) AllTasks() ([]Task, error) {
	var all []Task
	for _, p := range Partitions {
		tasks, err := s.ListTasks(p)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
	}
	return all, nil
}
