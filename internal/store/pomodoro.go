package store

import (
	"fmt"
	"slices"
	"time"
)

// PomodoroSettings returns the persisted settings, falling back to the
// defaults when the document is absent or unreadable.
func (s *Store) PomodoroSettings() (PomodoroSettings, error) {
	cfg := PomodoroSettings{}
	if err := loadDoc(s, keyPomodoroSettings, &cfg); err != nil {
		return DefaultPomodoroSettings, fmt.Errorf("pomodoro settings: %w", err)
	}
	if cfg.WorkMinutes <= 0 {
		cfg.WorkMinutes = DefaultPomodoroSettings.WorkMinutes
	}
	if cfg.ShortBreakMinutes <= 0 {
		cfg.ShortBreakMinutes = DefaultPomodoroSettings.ShortBreakMinutes
	}
	if cfg.LongBreakMinutes <= 0 {
		cfg.LongBreakMinutes = DefaultPomodoroSettings.LongBreakMinutes
	}
	if cfg.CyclesPerLongBreak <= 0 {
		cfg.CyclesPerLongBreak = DefaultPomodoroSettings.CyclesPerLongBreak
	}
	return cfg, nil
}

// UpdatePomodoroSettings merges the patch into the stored settings.
// Nil patch fields keep their current value; the merge is over named
// fields only. Returns the merged settings. Changes apply on the next
// countdown reset, never to an in-flight countdown.
func (s *Store) UpdatePomodoroSettings(patch PomodoroSettingsPatch) (PomodoroSettings, error) {
	cfg, err := s.PomodoroSettings()
	if err != nil {
		return cfg, err
	}
	if patch.WorkMinutes != nil {
		cfg.WorkMinutes = *patch.WorkMinutes
	}
	if patch.ShortBreakMinutes != nil {
		cfg.ShortBreakMinutes = *patch.ShortBreakMinutes
	}
	if patch.LongBreakMinutes != nil {
		cfg.LongBreakMinutes = *patch.LongBreakMinutes
	}
	if patch.CyclesPerLongBreak != nil {
		cfg.CyclesPerLongBreak = *patch.CyclesPerLongBreak
	}
	if err := saveDoc(s, keyPomodoroSettings, cfg); err != nil {
		return cfg, fmt.Errorf("pomodoro settings: %w", err)
	}
	return cfg, nil
}

// AddCompletedPomodoro prepends one completed work countdown to the
// log. The log is append-only and newest-first.
func (s *Store) AddCompletedPomodoro(taskLabel string, durationMinutes int, completedAt time.Time) (*PomodoroLogEntry, error) {
	entry := PomodoroLogEntry{
		ID:              newID(),
		TaskLabel:       taskLabel,
		CompletedAt:     completedAt,
		DurationMinutes: durationMinutes,
		DateBucket:      DateOf(completedAt),
	}
	log, err := loadList[PomodoroLogEntry](s, keyPomodoroLog)
	if err != nil {
		return nil, fmt.Errorf("log pomodoro: %w", err)
	}
	log = slices.Insert(log, 0, entry)
	if err := saveList(s, keyPomodoroLog, log); err != nil {
		return nil, fmt.Errorf("log pomodoro: %w", err)
	}
	return &entry, nil
}

// PomodoroLog returns the newest-first log, truncated to limit entries
// when limit > 0.
func (s *Store) PomodoroLog(limit int) ([]PomodoroLogEntry, error) {
	log, err := loadList[PomodoroLogEntry](s, keyPomodoroLog)
	if err != nil {
		return nil, fmt.Errorf("pomodoro log: %w", err)
	}
	if limit > 0 && len(log) > limit {
		log = log[:limit]
	}
	return log, nil
}

// PomodoroTotals aggregates the log over the inclusive [from, to] date
// range: number of completed pomodoros and total work minutes.
func (s *Store) PomodoroTotals(from, to string) (count, totalMinutes int, err error) {
	log, err := loadList[PomodoroLogEntry](s, keyPomodoroLog)
	if err != nil {
		return 0, 0, fmt.Errorf("pomodoro totals: %w", err)
	}
	for _, e := range log {
		if e.DateBucket >= from && e.DateBucket <= to {
			count++
			totalMinutes += e.DurationMinutes
		}
	}
	return count, totalMinutes, nil
}

// SavePomodoroSnapshot persists the in-flight cycle so a restart can
// resume it (paused).
func (s *Store) SavePomodoroSnapshot(snap PomodoroSnapshot) error {
	if err := saveDoc(s, keyPomodoroSnapshot, snap); err != nil {
		return fmt.Errorf("pomodoro snapshot: %w", err)
	}
	return nil
}

// LoadPomodoroSnapshot returns the saved cycle state, or nil when none
// exists or it cannot be read.
func (s *Store) LoadPomodoroSnapshot() (*PomodoroSnapshot, error) {
	snap := PomodoroSnapshot{}
	if err := loadDoc(s, keyPomodoroSnapshot, &snap); err != nil {
		return nil, fmt.Errorf("pomodoro snapshot: %w", err)
	}
	if snap.Phase == "" {
		return nil, nil
	}
	return &snap, nil
}

// ClearPomodoroSnapshot drops the saved cycle state.
func (s *Store) ClearPomodoroSnapshot() error {
	return deleteDoc(s, keyPomodoroSnapshot)
}
