package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

// ============================================================
// Settings
// ============================================================

func TestPomodoroSettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	cfg, err := s.PomodoroSettings()
	require.NoError(t, err)
	assert.Equal(t, DefaultPomodoroSettings, cfg)
}

func TestUpdatePomodoroSettingsPartialPatch(t *testing.T) {
	s := newTestStore(t)

	cfg, err := s.UpdatePomodoroSettings(PomodoroSettingsPatch{WorkMinutes: intp(50)})
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.WorkMinutes)
	// Untouched fields keep their defaults.
	assert.Equal(t, 5, cfg.ShortBreakMinutes)
	assert.Equal(t, 15, cfg.LongBreakMinutes)
	assert.Equal(t, 4, cfg.CyclesPerLongBreak)

	// A second patch merges over the stored values, not the defaults.
	cfg, err = s.UpdatePomodoroSettings(PomodoroSettingsPatch{CyclesPerLongBreak: intp(3)})
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.WorkMinutes)
	assert.Equal(t, 3, cfg.CyclesPerLongBreak)
}

func TestPomodoroSettingsCorruptFallsBack(t *testing.T) {
	s := newTestStore(t)
	_, err := s.db.Exec(
		`INSERT INTO lists (key, value) VALUES (?, ?)`,
		keyPomodoroSettings, `"nonsense"`,
	)
	require.NoError(t, err)

	cfg, err := s.PomodoroSettings()
	require.NoError(t, err)
	assert.Equal(t, DefaultPomodoroSettings, cfg)
}

// ============================================================
// Completion log
// ============================================================

func TestAddCompletedPomodoroNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	_, err := s.AddCompletedPomodoro("first", 25, base)
	require.NoError(t, err)
	_, err = s.AddCompletedPomodoro("second", 25, base.Add(30*time.Minute))
	require.NoError(t, err)

	log, err := s.PomodoroLog(0)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "second", log[0].TaskLabel)
	assert.Equal(t, "first", log[1].TaskLabel)
	assert.Equal(t, "2026-08-26", log[0].DateBucket)
}

func TestPomodoroLogLimit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		_, err := s.AddCompletedPomodoro("", 25, time.Now())
		require.NoError(t, err)
	}

	log, err := s.PomodoroLog(3)
	require.NoError(t, err)
	assert.Len(t, log, 3)
}

func TestPomodoroTotalsRange(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddCompletedPomodoro("", 25, time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = s.AddCompletedPomodoro("", 50, time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = s.AddCompletedPomodoro("", 25, time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	count, minutes, err := s.PomodoroTotals("2026-08-23", "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 75, minutes)
}

// ============================================================
// Cycle snapshot
// ============================================================

func TestPomodoroSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)

	none, err := s.LoadPomodoroSnapshot()
	require.NoError(t, err)
	assert.Nil(t, none)

	snap := PomodoroSnapshot{
		Phase:            "work",
		RemainingSeconds: 721,
		CyclesCompleted:  2,
		TaskLabel:        "Write report",
		SavedAtDate:      "2026-08-26",
	}
	require.NoError(t, s.SavePomodoroSnapshot(snap))

	got, err := s.LoadPomodoroSnapshot()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap, *got)

	require.NoError(t, s.ClearPomodoroSnapshot())
	cleared, err := s.LoadPomodoroSnapshot()
	require.NoError(t, err)
	assert.Nil(t, cleared)
}
