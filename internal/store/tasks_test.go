package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addTask is a test helper that stores a task and fails on error.
func addTask(t *testing.T, s *Store, draft Task) *Task {
	t.Helper()
	task, err := s.AddTask(draft)
	require.NoError(t, err)
	return task
}

// backdateTask rewrites a stored task's creation time in place.
func backdateTask(t *testing.T, s *Store, task Task, createdAt time.Time) {
	t.Helper()
	task.CreatedAt = createdAt
	require.NoError(t, s.UpdateTask(task))
}

// ============================================================
// CRUD
// ============================================================

func TestAddTaskAssignsIDAndDefaults(t *testing.T) {
	s := newTestStore(t)
	task := addTask(t, s, Task{Text: "Write report", EstimatedTime: "30"})

	assert.NotEmpty(t, task.ID)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, PartitionPending, task.Partition)
	// estimatedTime is free-form and stored verbatim.
	assert.Equal(t, "30", task.EstimatedTime)
}

func TestAddTaskHonorsDraftPartition(t *testing.T) {
	s := newTestStore(t)
	addTask(t, s, Task{Text: "later", Partition: PartitionDeferred})

	deferred, err := s.ListTasks(PartitionDeferred)
	require.NoError(t, err)
	require.Len(t, deferred, 1)

	pending, err := s.ListTasks(PartitionPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestUpdateTaskReplacesInOwnPartition(t *testing.T) {
	s := newTestStore(t)
	task := addTask(t, s, Task{Text: "draft"})

	task.Text = "final"
	task.ActualTime = 90
	require.NoError(t, s.UpdateTask(*task))

	pending, err := s.ListTasks(PartitionPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "final", pending[0].Text)
	assert.Equal(t, int64(90), pending[0].ActualTime)
}

func TestUpdateTaskWrongPartitionSilentlyMisses(t *testing.T) {
	s := newTestStore(t)
	task := addTask(t, s, Task{Text: "original"})

	wrong := *task
	wrong.Partition = PartitionDone
	wrong.Text = "should not land"
	require.NoError(t, s.UpdateTask(wrong))

	pending, err := s.ListTasks(PartitionPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "original", pending[0].Text)

	done, err := s.ListTasks(PartitionDone)
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	keep := addTask(t, s, Task{Text: "keep"})
	drop := addTask(t, s, Task{Text: "drop"})

	require.NoError(t, s.DeleteTask(drop.ID, PartitionPending))

	pending, err := s.ListTasks(PartitionPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, keep.ID, pending[0].ID)
}

// ============================================================
// Move semantics
// ============================================================

func TestMoveTaskRoundTripPreservesFields(t *testing.T) {
	s := newTestStore(t)
	orig := addTask(t, s, Task{Text: "Write report", EstimatedTime: "30", Source: "manual"})

	moved, err := s.MoveTask(orig.ID, PartitionPending, PartitionDone)
	require.NoError(t, err)
	require.NotNil(t, moved)
	assert.Equal(t, PartitionDone, moved.Partition)

	back, err := s.MoveTask(orig.ID, PartitionDone, PartitionPending)
	require.NoError(t, err)
	require.NotNil(t, back)

	// Identical field values except partition, which is back to pending.
	assert.Equal(t, orig.ID, back.ID)
	assert.Equal(t, orig.Text, back.Text)
	assert.Equal(t, orig.EstimatedTime, back.EstimatedTime)
	assert.Equal(t, orig.Source, back.Source)
	assert.Equal(t, PartitionPending, back.Partition)
}

func TestMoveTaskMissingFromSourceIsNoop(t *testing.T) {
	s := newTestStore(t)
	task := addTask(t, s, Task{Text: "here"})

	// Wrong source partition: nothing moves, nothing is created.
	moved, err := s.MoveTask(task.ID, PartitionDone, PartitionDeferred)
	require.NoError(t, err)
	assert.Nil(t, moved)

	pending, err := s.ListTasks(PartitionPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	deferred, err := s.ListTasks(PartitionDeferred)
	require.NoError(t, err)
	assert.Empty(t, deferred)
}

func TestCompleteFlowEndToEnd(t *testing.T) {
	s := newTestStore(t)
	task := addTask(t, s, Task{Text: "Write report", EstimatedTime: "30"})

	moved, err := s.MoveTask(task.ID, PartitionPending, PartitionDone)
	require.NoError(t, err)
	require.NotNil(t, moved)

	now := time.Now()
	moved.Completed = true
	moved.CompletedAt = &now
	require.NoError(t, s.UpdateTask(*moved))

	done, err := s.ListTasks(PartitionDone)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, task.ID, done[0].ID)
	assert.True(t, done[0].Completed)
	require.NotNil(t, done[0].CompletedAt)

	pending, err := s.ListTasks(PartitionPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// ============================================================
// Rollover
// ============================================================

func TestRolloverMovesOverdueDeferred(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	old := addTask(t, s, Task{Text: "yesterday's", Partition: PartitionDeferred})
	backdateTask(t, s, *old, now.AddDate(0, 0, -1))
	addTask(t, s, Task{Text: "deferred for today", Partition: PartitionDeferred})

	moved, err := s.Rollover(now)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	pending, err := s.ListTasks(PartitionPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, old.ID, pending[0].ID)
	assert.Equal(t, PartitionPending, pending[0].Partition)

	deferred, err := s.ListTasks(PartitionDeferred)
	require.NoError(t, err)
	require.Len(t, deferred, 1)
	assert.Equal(t, "deferred for today", deferred[0].Text)
}

func TestRolloverIdempotent(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	old := addTask(t, s, Task{Text: "carry over", Partition: PartitionDeferred})
	backdateTask(t, s, *old, now.AddDate(0, 0, -3))

	first, err := s.Rollover(now)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := s.Rollover(now)
	require.NoError(t, err)
	assert.Equal(t, 0, second)

	pending, err := s.ListTasks(PartitionPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRolloverNeverTouchesDone(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	done := addTask(t, s, Task{Text: "finished long ago", Partition: PartitionDone, Completed: true})
	backdateTask(t, s, *done, now.AddDate(0, 0, -10))

	_, err := s.Rollover(now)
	require.NoError(t, err)

	kept, err := s.ListTasks(PartitionDone)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

// ============================================================
// Lookups
// ============================================================

func TestFindTaskForHabitScansAllPartitions(t *testing.T) {
	s := newTestStore(t)
	today := DateOf(time.Now())

	task := addTask(t, s, Task{Text: "Meditate (from Habit)", HabitRef: "habit-1"})
	_, err := s.MoveTask(task.ID, PartitionPending, PartitionDone)
	require.NoError(t, err)

	found, err := s.FindTaskForHabit("habit-1", today)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, task.ID, found.ID)

	missing, err := s.FindTaskForHabit("habit-2", today)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAllTasks(t *testing.T) {
	s := newTestStore(t)
	addTask(t, s, Task{Text: "a"})
	addTask(t, s, Task{Text: "b", Partition: PartitionDone})
	addTask(t, s, Task{Text: "c", Partition: PartitionDeferred})

	all, err := s.AllTasks()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
