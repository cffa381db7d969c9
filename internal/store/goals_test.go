package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addGoal(t *testing.T, s *Store, title string) *Goal {
	t.Helper()
	g, err := s.AddGoal(title, "")
	require.NoError(t, err)
	return g
}

// addSubGoals appends n sub-goals and returns the refreshed goal.
func addSubGoals(t *testing.T, s *Store, goalID string, n int) *Goal {
	t.Helper()
	var g *Goal
	var err error
	for i := 0; i < n; i++ {
		g, err = s.AddSubGoal(goalID, "step", 0)
		require.NoError(t, err)
	}
	return g
}

// ============================================================
// Goals
// ============================================================

func TestAddGoalDefaults(t *testing.T) {
	s := newTestStore(t)
	g, err := s.AddGoal("Ship v1", "dinner out")
	require.NoError(t, err)

	assert.NotEmpty(t, g.ID)
	assert.Zero(t, g.Progress)
	assert.False(t, g.AutoProgress)
	assert.Empty(t, g.SubGoals)
	assert.Equal(t, "dinner out", g.RewardNote)
}

func TestUpdateGoalTitleAndProgress(t *testing.T) {
	s := newTestStore(t)
	g := addGoal(t, s, "Draft")

	require.NoError(t, s.UpdateGoalTitle(g.ID, "Final"))
	require.NoError(t, s.UpdateGoalProgress(g.ID, 130)) // clamped

	goals, err := s.ListGoals()
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Final", goals[0].Title)
	assert.Equal(t, 100, goals[0].Progress)
}

func TestDeleteGoal(t *testing.T) {
	s := newTestStore(t)
	g := addGoal(t, s, "gone")
	addGoal(t, s, "stays")

	require.NoError(t, s.DeleteGoal(g.ID))

	goals, err := s.ListGoals()
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "stays", goals[0].Title)
}

func TestMutateUnknownGoalIsNoop(t *testing.T) {
	s := newTestStore(t)
	addGoal(t, s, "only")

	g, err := s.ToggleAutoProgress("nope", true)
	require.NoError(t, err)
	assert.Nil(t, g)
}

// ============================================================
// Sub-goals
// ============================================================

func TestAddAndToggleSubGoal(t *testing.T) {
	s := newTestStore(t)
	g := addGoal(t, s, "goal")

	updated, err := s.AddSubGoal(g.ID, "first step", 45)
	require.NoError(t, err)
	require.Len(t, updated.SubGoals, 1)
	sg := updated.SubGoals[0]
	assert.Equal(t, "first step", sg.Text)
	assert.Equal(t, 45, sg.EstimatedMinutes)
	assert.False(t, sg.Completed)

	require.NoError(t, s.ToggleSubGoal(g.ID, sg.ID, true))

	goals, _ := s.ListGoals()
	assert.True(t, goals[0].SubGoals[0].Completed)
	// Toggling a sub-goal never cascades into progress.
	assert.Zero(t, goals[0].Progress)
}

func TestUpdateSubGoalText(t *testing.T) {
	s := newTestStore(t)
	g := addGoal(t, s, "goal")
	updated, err := s.AddSubGoal(g.ID, "old", 10)
	require.NoError(t, err)
	sg := updated.SubGoals[0]

	require.NoError(t, s.UpdateSubGoalText(g.ID, sg.ID, "new", 20))

	goals, _ := s.ListGoals()
	assert.Equal(t, "new", goals[0].SubGoals[0].Text)
	assert.Equal(t, 20, goals[0].SubGoals[0].EstimatedMinutes)
}

func TestDeleteSubGoal(t *testing.T) {
	s := newTestStore(t)
	g := addGoal(t, s, "goal")
	updated := addSubGoals(t, s, g.ID, 2)

	require.NoError(t, s.DeleteSubGoal(g.ID, updated.SubGoals[0].ID))

	goals, _ := s.ListGoals()
	require.Len(t, goals[0].SubGoals, 1)
	assert.Equal(t, updated.SubGoals[1].ID, goals[0].SubGoals[0].ID)
}

// ============================================================
// Completion
// ============================================================

func TestToggleGoalCompletionStoresFeedbackOnce(t *testing.T) {
	s := newTestStore(t)
	g := addGoal(t, s, "goal")

	done, err := s.ToggleGoalCompletion(g.ID, true, "felt great")
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, "felt great", done.Feedback)

	// Un-completing clears the timestamp, keeps the feedback.
	reopened, err := s.ToggleGoalCompletion(g.ID, false, "ignored")
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)
	assert.Equal(t, "felt great", reopened.Feedback)
}

// ============================================================
// Auto-progress
// ============================================================

func TestToggleAutoProgressRecomputesOnEnable(t *testing.T) {
	s := newTestStore(t)
	g := addGoal(t, s, "goal")
	updated := addSubGoals(t, s, g.ID, 4)

	// Complete 2 of 4.
	require.NoError(t, s.ToggleSubGoal(g.ID, updated.SubGoals[0].ID, true))
	require.NoError(t, s.ToggleSubGoal(g.ID, updated.SubGoals[1].ID, true))

	enabled, err := s.ToggleAutoProgress(g.ID, true)
	require.NoError(t, err)
	assert.True(t, enabled.AutoProgress)
	assert.Equal(t, 50, enabled.Progress)
}

func TestAutoProgressDoesNotRecomputeAfterEnable(t *testing.T) {
	s := newTestStore(t)
	g := addGoal(t, s, "goal")
	updated := addSubGoals(t, s, g.ID, 2)

	_, err := s.ToggleAutoProgress(g.ID, true)
	require.NoError(t, err)

	// Recompute happens only at enable time: completing a sub-goal or
	// adding another one afterwards leaves progress as-is.
	require.NoError(t, s.ToggleSubGoal(g.ID, updated.SubGoals[0].ID, true))
	_, err = s.AddSubGoal(g.ID, "late addition", 0)
	require.NoError(t, err)

	goals, _ := s.ListGoals()
	assert.Zero(t, goals[0].Progress)
}

func TestToggleAutoProgressNoSubGoals(t *testing.T) {
	s := newTestStore(t)
	g := addGoal(t, s, "empty")

	enabled, err := s.ToggleAutoProgress(g.ID, true)
	require.NoError(t, err)
	assert.Zero(t, enabled.Progress)
}

func TestDisableAutoProgressFreezesValue(t *testing.T) {
	s := newTestStore(t)
	g := addGoal(t, s, "goal")
	updated := addSubGoals(t, s, g.ID, 2)
	require.NoError(t, s.ToggleSubGoal(g.ID, updated.SubGoals[0].ID, true))

	enabled, err := s.ToggleAutoProgress(g.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 50, enabled.Progress)

	disabled, err := s.ToggleAutoProgress(g.ID, false)
	require.NoError(t, err)
	assert.False(t, disabled.AutoProgress)
	assert.Equal(t, 50, disabled.Progress)
}
