package store

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// ListHabits returns all habit definitions in stored order.
func (s *Store) ListHabits() ([]Habit, error) {
	habits, err := loadList[Habit](s, keyHabits)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// AddHabit assigns an id to draft and stores it. Kind defaults to build.
func (s *Store) AddHabit(draft Habit) (*Habit, error) {
	if draft.Kind == "" {
		draft.Kind = HabitBuild
	}
	draft.ID = newID()

	habits, err := loadList[Habit](s, keyHabits)
	if err != nil {
		return nil, fmt.Errorf("add habit: %w", err)
	}
	habits = append(habits, draft)
	if err := saveList(s, keyHabits, habits); err != nil {
		return nil, fmt.Errorf("add habit: %w", err)
	}
	return &draft, nil
}

// UpdateHabit replaces the habit with a matching id. Unknown ids change
// nothing.
func (s *Store) UpdateHabit(h Habit) error {
	habits, err := loadList[Habit](s, keyHabits)
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}
	for i := range habits {
		if habits[i].ID == h.ID {
			habits[i] = h
			return saveList(s, keyHabits, habits)
		}
	}
	return nil
}

// DeleteHabit removes the habit definition and purges its entry from
// the current ledger. The historical ledger is left alone: past
// completions outlive the habit on purpose.
func (s *Store) DeleteHabit(id string) error {
	habits, err := loadList[Habit](s, keyHabits)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	kept := habits[:0]
	for _, h := range habits {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	if err := saveList(s, keyHabits, kept); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}

	current, err := loadLedger(s, keyLedgerCurrent)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if _, ok := current[id]; ok {
		delete(current, id)
		if err := saveLedger(s, keyLedgerCurrent, current); err != nil {
			return fmt.Errorf("delete habit: %w", err)
		}
	}
	return nil
}

// MarkHabitComplete records date for the habit in both the current and
// historical ledgers. Idempotent set insertion.
func (s *Store) MarkHabitComplete(habitID, date string) error {
	for _, key := range []string{keyLedgerCurrent, keyLedgerHistory} {
		ledger, err := loadLedger(s, key)
		if err != nil {
			return fmt.Errorf("mark complete: %w", err)
		}
		dates := ledger[habitID]
		if slices.Contains(dates, date) {
			continue
		}
		dates = append(dates, date)
		slices.Sort(dates)
		ledger[habitID] = dates
		if err := saveLedger(s, key, ledger); err != nil {
			return fmt.Errorf("mark complete: %w", err)
		}
	}
	return nil
}

// UnmarkHabitComplete removes date from both ledgers. Idempotent.
func (s *Store) UnmarkHabitComplete(habitID, date string) error {
	for _, key := range []string{keyLedgerCurrent, keyLedgerHistory} {
		ledger, err := loadLedger(s, key)
		if err != nil {
			return fmt.Errorf("unmark complete: %w", err)
		}
		dates := ledger[habitID]
		i := slices.Index(dates, date)
		if i < 0 {
			continue
		}
		ledger[habitID] = slices.Delete(dates, i, i+1)
		if err := saveLedger(s, key, ledger); err != nil {
			return fmt.Errorf("unmark complete: %w", err)
		}
	}
	return nil
}

// HabitCompletions returns the current-ledger dates for one habit.
func (s *Store) HabitCompletions(habitID string) ([]string, error) {
	ledger, err := loadLedger(s, keyLedgerCurrent)
	if err != nil {
		return nil, fmt.Errorf("habit completions: %w", err)
	}
	return ledger[habitID], nil
}

// HabitHistory returns the historical-ledger dates for one habit within
// the inclusive [start, end] range. ISO date strings compare
// lexicographically, so the filter is a plain string comparison.
func (s *Store) HabitHistory(habitID, start, end string) ([]string, error) {
	ledger, err := loadLedger(s, keyLedgerHistory)
	if err != nil {
		return nil, fmt.Errorf("habit history: %w", err)
	}
	var out []string
	for _, d := range ledger[habitID] {
		if d >= start && d <= end {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return out, nil
}

// HistoricalLedger returns the full historical ledger, habit id to
// sorted completion dates. Used by export.
func (s *Store) HistoricalLedger() (map[string][]string, error) {
	ledger, err := loadLedger(s, keyLedgerHistory)
	if err != nil {
		return nil, fmt.Errorf("historical ledger: %w", err)
	}
	for _, dates := range ledger {
		slices.Sort(dates)
	}
	return ledger, nil
}

// ResetCurrentLedger clears the current ledger for every habit. The
// historical ledger is untouched; this is the periodic weekly reset.
func (s *Store) ResetCurrentLedger() error {
	return saveLedger(s, keyLedgerCurrent, map[string][]string{})
}

// RolloverWeek resets the current ledger when now falls in a later week
// than the last recorded one, then records now's week. The first call
// ever only anchors the week; a now earlier than the anchor (clock set
// back) leaves the ledger alone. Returns whether a reset happened.
func (s *Store) RolloverWeek(now time.Time) (bool, error) {
	weekStart := WeekDates(now)[0]

	var anchor string
	if err := loadDoc(s, keyWeekAnchor, &anchor); err != nil {
		return false, fmt.Errorf("rollover week: %w", err)
	}
	if anchor == weekStart || anchor > weekStart {
		return false, nil
	}

	reset := anchor != ""
	if reset {
		if err := s.ResetCurrentLedger(); err != nil {
			return false, fmt.Errorf("rollover week: %w", err)
		}
	}
	if err := saveDoc(s, keyWeekAnchor, weekStart); err != nil {
		return false, fmt.Errorf("rollover week: %w", err)
	}
	return reset, nil
}

// HabitStats computes week-relative figures for the week containing
// ref, from the current ledger. The current streak counts consecutive
// completed days walking backward from Saturday; the best streak is the
// longest run scanning Sunday forward. Percent is always out of all 7
// slots, even for habits that started mid-week.
func (s *Store) HabitStats(habitID string, ref time.Time) (*HabitStats, error) {
	completions, err := s.HabitCompletions(habitID)
	if err != nil {
		return nil, err
	}

	week := WeekDates(ref)
	done := make([]bool, 7)
	var stats HabitStats
	for i, d := range week {
		if slices.Contains(completions, d) {
			done[i] = true
			stats.TotalThisWeek++
			stats.CompletionsThisWeek = append(stats.CompletionsThisWeek, d)
		}
	}

	for i := 6; i >= 0 && done[i]; i-- {
		stats.CurrentStreak++
	}

	run := 0
	for i := 0; i < 7; i++ {
		if done[i] {
			run++
			stats.BestStreakThisWeek = max(stats.BestStreakThisWeek, run)
		} else {
			run = 0
		}
	}

	stats.PercentThisWeek = int(math.Round(float64(stats.TotalThisWeek) / 7 * 100))
	return &stats, nil
}

// WeeklyHistory buckets the historical ledger into per-week completion
// counts for the trailing weeks window ending at the week containing
// ref, oldest week first.
func (s *Store) WeeklyHistory(habitID string, ref time.Time, weeks int) ([]WeekCount, error) {
	if weeks < 1 {
		weeks = 1
	}
	thisSunday := ref.AddDate(0, 0, -int(ref.Weekday()))
	start := DateOf(thisSunday.AddDate(0, 0, -7*(weeks-1)))
	end := WeekDates(ref)[6]

	dates, err := s.HabitHistory(habitID, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]WeekCount, weeks)
	for i := range out {
		out[i].WeekStart = DateOf(thisSunday.AddDate(0, 0, -7*(weeks-1-i)))
	}
	for _, d := range dates {
		sunday := ParseDate(d)
		sunday = sunday.AddDate(0, 0, -int(sunday.Weekday()))
		ws := DateOf(sunday)
		for i := range out {
			if out[i].WeekStart == ws {
				out[i].Count++
				break
			}
		}
	}
	return out, nil
}

// ScheduledOn reports whether the habit is due on day. Daily habits are
// always due; custom habits match their weekday set. Weekly habits are
// never due for daily scheduling purposes: a times-per-week quota does
// not pin any particular day, so the routine pass skips them.
func (h Habit) ScheduledOn(day time.Time) bool {
	switch h.Recurrence.Type {
	case RecurDaily:
		return true
	case RecurCustom:
		return slices.Contains(h.Recurrence.DaysOfWeek, int(day.Weekday()))
	default:
		return false
	}
}
