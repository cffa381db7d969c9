package store

import (
	"fmt"
	"math"
	"time"
)

// ListGoals returns all goals in stored order.
func (s *Store) ListGoals() ([]Goal, error) {
	goals, err := loadList[Goal](s, keyGoals)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// AddGoal creates a goal with zero progress, manual progress mode and
// no sub-goals.
func (s *Store) AddGoal(title, rewardNote string) (*Goal, error) {
	g := Goal{
		ID:         newID(),
		Title:      title,
		CreatedAt:  time.Now(),
		SubGoals:   []SubGoal{},
		RewardNote: rewardNote,
	}
	goals, err := loadList[Goal](s, keyGoals)
	if err != nil {
		return nil, fmt.Errorf("add goal: %w", err)
	}
	goals = append(goals, g)
	if err := saveList(s, keyGoals, goals); err != nil {
		return nil, fmt.Errorf("add goal: %w", err)
	}
	return &g, nil
}

// DeleteGoal removes the goal and, by composition, its sub-goals.
// Tasks that reference the goal keep their dangling refs; the reference
// is lookup-only.
func (s *Store) DeleteGoal(id string) error {
	goals, err := loadList[Goal](s, keyGoals)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	kept := goals[:0]
	for _, g := range goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	return saveList(s, keyGoals, kept)
}

// mutateGoal loads the goal list, applies fn to the goal with the given
// id and saves. Unknown ids change nothing and return (nil, nil).
func (s *Store) mutateGoal(id string, fn func(*Goal)) (*Goal, error) {
	goals, err := loadList[Goal](s, keyGoals)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	for i := range goals {
		if goals[i].ID == id {
			fn(&goals[i])
			if err := saveList(s, keyGoals, goals); err != nil {
				return nil, fmt.Errorf("update goal: %w", err)
			}
			g := goals[i]
			return &g, nil
		}
	}
	return nil, nil
}

// UpdateGoalTitle renames the goal.
func (s *Store) UpdateGoalTitle(id, title string) error {
	_, err := s.mutateGoal(id, func(g *Goal) { g.Title = title })
	return err
}

// UpdateGoalProgress sets progress manually (the slider), clamped to
// 0..100.
func (s *Store) UpdateGoalProgress(id string, progress int) error {
	_, err := s.mutateGoal(id, func(g *Goal) {
		g.Progress = min(100, max(0, progress))
	})
	return err
}

// AddSubGoal appends a new sub-goal and returns the updated goal.
// Progress is NOT recomputed here even when auto-progress is on: the
// only recompute trigger is enabling the flag (see ToggleAutoProgress).
func (s *Store) AddSubGoal(goalID, text string, estimatedMinutes int) (*Goal, error) {
	return s.mutateGoal(goalID, func(g *Goal) {
		g.SubGoals = append(g.SubGoals, SubGoal{
			ID:               newID(),
			Text:             text,
			CreatedAt:        time.Now(),
			EstimatedMinutes: estimatedMinutes,
		})
	})
}

// ToggleSubGoal sets a sub-goal's completed flag. Does not cascade into
// the goal's progress value.
func (s *Store) ToggleSubGoal(goalID, subGoalID string, completed bool) error {
	_, err := s.mutateGoal(goalID, func(g *Goal) {
		for i := range g.SubGoals {
			if g.SubGoals[i].ID == subGoalID {
				g.SubGoals[i].Completed = completed
				return
			}
		}
	})
	return err
}

// DeleteSubGoal removes one sub-goal from the goal.
func (s *Store) DeleteSubGoal(goalID, subGoalID string) error {
	_, err := s.mutateGoal(goalID, func(g *Goal) {
		kept := g.SubGoals[:0]
		for _, sg := range g.SubGoals {
			if sg.ID != subGoalID {
				kept = append(kept, sg)
			}
		}
		g.SubGoals = kept
	})
	return err
}

// UpdateSubGoalText rewrites a sub-goal's text and estimate.
func (s *Store) UpdateSubGoalText(goalID, subGoalID, text string, estimatedMinutes int) error {
	_, err := s.mutateGoal(goalID, func(g *Goal) {
		for i := range g.SubGoals {
			if g.SubGoals[i].ID == subGoalID {
				g.SubGoals[i].Text = text
				g.SubGoals[i].EstimatedMinutes = estimatedMinutes
				return
			}
		}
	})
	return err
}

// ToggleGoalCompletion marks the goal completed or reopens it. Feedback
// is stored only on the completing transition; un-completing clears the
// completion timestamp but keeps earlier feedback.
func (s *Store) ToggleGoalCompletion(goalID string, completed bool, feedback string) (*Goal, error) {
	return s.mutateGoal(goalID, func(g *Goal) {
		g.Completed = completed
		if completed {
			now := time.Now()
			g.CompletedAt = &now
			if feedback != "" {
				g.Feedback = feedback
			}
		} else {
			g.CompletedAt = nil
		}
	})
}

// ToggleAutoProgress switches the goal between manual and derived
// progress. Enabling recomputes progress from the sub-goal completion
// ratio once, right now; subsequent sub-goal toggles do not recompute.
// Disabling freezes progress at its last value for manual control.
func (s *Store) ToggleAutoProgress(goalID string, enabled bool) (*Goal, error) {
	return s.mutateGoal(goalID, func(g *Goal) {
		g.AutoProgress = enabled
		if enabled {
			g.Progress = subGoalRatio(g.SubGoals)
		}
	})
}

func subGoalRatio(subs []SubGoal) int {
	if len(subs) == 0 {
		return 0
	}
	done := 0
	for _, sg := range subs {
		if sg.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(subs)) * 100))
}
