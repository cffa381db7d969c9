package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/plannr/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func tick(t *testing.T, p pomodoroModel, n int) pomodoroModel {
	t.Helper()
	for i := 0; i < n; i++ {
		p, _ = p.update(tickMsg(time.Now()))
	}
	return p
}

// ============================================================
// Pomodoro model
// ============================================================

func TestPomodoroStartsIdle(t *testing.T) {
	s := newTestStore(t)
	p := newPomodoroModel(s)

	assert.Equal(t, pomodoroIdle, p.phase)
	assert.False(t, p.paused)
	assert.Equal(t, 0, p.cyclesCompleted)
}

func TestPomodoroStartWork(t *testing.T) {
	s := newTestStore(t)
	p := newPomodoroModel(s)

	p, _ = p.startWork()
	assert.Equal(t, pomodoroWork, p.phase)
	assert.False(t, p.paused)
	assert.Equal(t, 25*time.Minute, p.remaining)
}

func TestPomodoroTickCountsDown(t *testing.T) {
	s := newTestStore(t)
	p := newPomodoroModel(s)
	p, _ = p.startWork()

	p = tick(t, p, 3)
	assert.Equal(t, 25*time.Minute-3*time.Second, p.remaining)
}

func TestPomodoroTickIgnoredWhenIdle(t *testing.T) {
	s := newTestStore(t)
	p := newPomodoroModel(s)

	p = tick(t, p, 5)
	assert.Equal(t, pomodoroIdle, p.phase)
	assert.Equal(t, time.Duration(0), p.remaining)
}

func TestPomodoroPauseFreezesCountdown(t *testing.T) {
	s := newTestStore(t)
	p := newPomodoroModel(s)
	p, _ = p.startWork()
	p.paused = true

	p = tick(t, p, 10)
	assert.Equal(t, 25*time.Minute, p.remaining)
}

func TestPomodoroWorkToShortBreak(t *testing.T) {
	s := newTestStore(t)
	p := newPomodoroModel(s)
	p, _ = p.startWork()
	p.taskLabel = "write docs"
	p.remaining = time.Second

	p = tick(t, p, 1)
	assert.Equal(t, pomodoroShortBreak, p.phase)
	assert.Equal(t, 1, p.cyclesCompleted)
	assert.Equal(t, 5*time.Minute, p.remaining)

	// The finished work cycle lands in the log.
	log, err := s.PomodoroLog(0)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "write docs", log[0].TaskLabel)
	assert.Equal(t, 25, log[0].DurationMinutes)
}

func TestPomodoroLongBreakAfterFullSet(t *testing.T) {
	s := newTestStore(t)
	p := newPomodoroModel(s)
	p, _ = p.startWork()
	p.cyclesCompleted = 3 // next completion fills the set of 4

	p.remaining = time.Second
	p = tick(t, p, 1)

	assert.Equal(t, pomodoroLongBreak, p.phase)
	assert.Equal(t, 0, p.cyclesCompleted, "cycle counter resets at the long break")
	assert.Equal(t, 15*time.Minute, p.remaining)
}

func TestPomodoroBreakRollsIntoWork(t *testing.T) {
	s := newTestStore(t)
	p := newPomodoroModel(s)
	p, _ = p.startBreak(pomodoroShortBreak)
	p.remaining = time.Second

	p = tick(t, p, 1)
	assert.Equal(t, pomodoroWork, p.phase)
	assert.Equal(t, 25*time.Minute, p.remaining)

	// Breaks never log anything.
	log, _ := s.PomodoroLog(0)
	assert.Empty(t, log)
}

func TestPomodoroSkipBreak(t *testing.T) {
	s := newTestStore(t)
	p := newPomodoroModel(s)
	p, _ = p.startBreak(pomodoroLongBreak)

	p, _ = p.startWork()
	assert.Equal(t, pomodoroWork, p.phase)
	assert.Equal(t, 25*time.Minute, p.remaining)
}

func TestPomodoroCancel(t *testing.T) {
	s := newTestStore(t)
	p := newPomodoroModel(s)
	p, _ = p.startWork()
	p.cyclesCompleted = 2
	p.saveSnapshot()

	p, _ = p.cancel()
	assert.Equal(t, pomodoroIdle, p.phase)
	assert.Equal(t, 0, p.cyclesCompleted)

	snap, err := s.LoadPomodoroSnapshot()
	require.NoError(t, err)
	assert.Nil(t, snap, "cancel discards the persisted snapshot")
}

func TestPomodoroSettingsApplyAtNextReset(t *testing.T) {
	s := newTestStore(t)
	p := newPomodoroModel(s)
	p, _ = p.startWork()
	p = tick(t, p, 2)

	w := 50
	_, err := s.UpdatePomodoroSettings(store.PomodoroSettingsPatch{WorkMinutes: &w})
	require.NoError(t, err)

	// In-flight countdown keeps the old duration.
	p = tick(t, p, 1)
	assert.Equal(t, 25*time.Minute-3*time.Second, p.remaining)

	// The next reset picks the edit up.
	p, _ = p.startWork()
	assert.Equal(t, 50*time.Minute, p.remaining)
}

// ============================================================
// Pomodoro snapshot resume
// ============================================================

func TestPomodoroSnapshotRestoredPaused(t *testing.T) {
	s := newTestStore(t)
	p := newPomodoroModel(s)
	p, _ = p.startWork()
	p.taskLabel = "deep work"
	p = tick(t, p, 60)
	p.saveSnapshot()

	// A fresh model (new process) resumes mid-countdown, but paused.
	r := newPomodoroModel(s)
	assert.Equal(t, pomodoroWork, r.phase)
	assert.True(t, r.paused)
	assert.Equal(t, 24*time.Minute, r.remaining)
	assert.Equal(t, "deep work", r.taskLabel)
}

func TestPomodoroSnapshotIdleClears(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SavePomodoroSnapshot(store.PomodoroSnapshot{
		Phase:            "work",
		RemainingSeconds: 300,
	}))

	p := newPomodoroModel(s)
	p, _ = p.cancel()
	p.saveSnapshot()

	r := newPomodoroModel(s)
	assert.Equal(t, pomodoroIdle, r.phase)
}

func TestPomodoroSnapshotWithZeroRemainingIgnored(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SavePomodoroSnapshot(store.PomodoroSnapshot{
		Phase:            "short_break",
		RemainingSeconds: 0,
	}))

	p := newPomodoroModel(s)
	assert.Equal(t, pomodoroIdle, p.phase)
}

func TestPhaseNameRoundTrip(t *testing.T) {
	for phase, name := range phaseNames {
		assert.Equal(t, phase, phaseFromName(name))
	}
	assert.Equal(t, pomodoroIdle, phaseFromName("nonsense"))
}

// ============================================================
// Root app routing
// ============================================================

func TestAppRoutesSettingsDataToPomodoro(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddCompletedPomodoro("refactor", 25, time.Now())
	require.NoError(t, err)

	a := NewApp(s)
	require.Equal(t, viewTasks, a.activeView, "tasks tab is active at startup")

	// The startup refresh must still reach the pomodoro log even though
	// another view is showing.
	model, _ := a.Update(a.pomodoro.refresh()())
	a = model.(App)
	require.Len(t, a.pomodoro.log, 1)
	assert.Equal(t, "refactor", a.pomodoro.log[0].TaskLabel)
}

// ============================================================
// Tasks model
// ============================================================

func loadedTasksModel(t *testing.T, s *store.Store) tasksModel {
	t.Helper()
	m := newTasksModel(s)
	m, _ = m.update(m.refresh()().(tasksDataMsg))
	return m
}

func TestTasksCompleteMovesToDone(t *testing.T) {
	s := newTestStore(t)
	task, err := s.AddTask(store.Task{Text: "ship it"})
	require.NoError(t, err)

	m := loadedTasksModel(t, s)
	m, _ = m.completeOrReopen(*task)

	done, _ := s.ListTasks(store.PartitionDone)
	require.Len(t, done, 1)
	assert.True(t, done[0].Completed)
	require.NotNil(t, done[0].CompletedAt)

	pending, _ := s.ListTasks(store.PartitionPending)
	assert.Empty(t, pending)
}

func TestTasksReopenClearsCompletion(t *testing.T) {
	s := newTestStore(t)
	task, err := s.AddTask(store.Task{Text: "ship it"})
	require.NoError(t, err)

	m := loadedTasksModel(t, s)
	m, _ = m.completeOrReopen(*task)

	done, _ := s.ListTasks(store.PartitionDone)
	require.Len(t, done, 1)
	m = loadedTasksModel(t, s)
	m, _ = m.completeOrReopen(done[0])

	pending, _ := s.ListTasks(store.PartitionPending)
	require.Len(t, pending, 1)
	assert.False(t, pending[0].Completed)
	assert.Nil(t, pending[0].CompletedAt)
}

func TestTasksStopwatchPersists(t *testing.T) {
	s := newTestStore(t)
	task, err := s.AddTask(store.Task{Text: "focus"})
	require.NoError(t, err)

	m := loadedTasksModel(t, s)
	m, _ = m.toggleWatch(*task)
	assert.True(t, m.watchRunning())

	for i := 0; i < stopwatchSaveEvery; i++ {
		m, _ = m.update(tickMsg(time.Now()))
	}

	got, _ := s.ListTasks(store.PartitionPending)
	require.Len(t, got, 1)
	assert.Equal(t, int64(stopwatchSaveEvery), got[0].ActualTime)

	// Stopping flushes and clears the watch.
	m, _ = m.toggleWatch(*task)
	assert.False(t, m.watchRunning())
}

func TestTasksStopwatchAccumulates(t *testing.T) {
	s := newTestStore(t)
	task, err := s.AddTask(store.Task{Text: "focus", ActualTime: 100})
	require.NoError(t, err)

	m := loadedTasksModel(t, s)
	m, _ = m.toggleWatch(*task)
	m.watchElapsed = 20
	m.persistWatch()

	got, _ := s.ListTasks(store.PartitionPending)
	require.Len(t, got, 1)
	assert.Equal(t, int64(120), got[0].ActualTime)
}

func TestTasksCursorClampsAfterReload(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.AddTask(store.Task{Text: "one"})
	b, _ := s.AddTask(store.Task{Text: "two"})

	m := loadedTasksModel(t, s)
	m.cursor[store.PartitionPending] = 1

	require.NoError(t, s.DeleteTask(a.ID, store.PartitionPending))
	require.NoError(t, s.DeleteTask(b.ID, store.PartitionPending))
	m, _ = m.update(m.refresh()().(tasksDataMsg))

	assert.Equal(t, 0, m.cursor[store.PartitionPending])
	assert.Nil(t, m.selected())
}

// ============================================================
// Formatting helpers
// ============================================================

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "25:00", formatCountdown(25*time.Minute))
	assert.Equal(t, "04:59", formatCountdown(4*time.Minute+59*time.Second))
	assert.Equal(t, "00:00", formatCountdown(-time.Second))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "00:00:30", formatSeconds(30))
	assert.Equal(t, "01:01:05", formatSeconds(3665))
}
