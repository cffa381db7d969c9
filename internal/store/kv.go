package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Document keys. One JSON document per key, mirroring the original
// one-record-per-named-list storage layout.
const (
	keyTasksPending     = "tasks_pending"
	keyTasksDone        = "tasks_done"
	keyTasksDeferred    = "tasks_deferred"
	keyHabits           = "habits"
	keyLedgerCurrent    = "habit_log_current"
	keyLedgerHistory    = "habit_log_history"
	keyGoals            = "goals"
	keyPomodoroSettings = "pomodoro_settings"
	keyPomodoroLog      = "pomodoro_log"
	keyPomodoroSnapshot = "pomodoro_snapshot"
	keyWeekAnchor       = "habit_week_anchor"
)

// Exported key names for change-notification subscribers.
const (
	KeyTasksPending     = keyTasksPending
	KeyTasksDone        = keyTasksDone
	KeyTasksDeferred    = keyTasksDeferred
	KeyHabits           = keyHabits
	KeyLedgerCurrent    = keyLedgerCurrent
	KeyLedgerHistory    = keyLedgerHistory
	KeyGoals            = keyGoals
	KeyPomodoroSettings = keyPomodoroSettings
	KeyPomodoroLog      = keyPomodoroLog
)

// loadDoc reads the JSON document stored under key into out. A missing
// row or a document that fails to parse both leave out at its zero
// value: corrupt or absent state degrades to "empty", it never errors
// the caller out.
func loadDoc[T any](s *Store, key string, out *T) error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM lists WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %q: %w", key, err)
	}
	// Schema-mismatched or truncated JSON is treated as empty. Decode
	// into a temporary so a mid-document type error does not leave a
	// partially populated value behind.
	var decoded T
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		*out = decoded
	}
	return nil
}

// saveDoc serializes v and upserts it under key, then notifies
// subscribers that the document changed.
func saveDoc(s *Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO lists (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(raw), now,
	)
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	s.listeners.notify(key)
	return nil
}

// deleteDoc removes the document under key entirely.
func deleteDoc(s *Store, key string) error {
	if _, err := s.db.Exec(`DELETE FROM lists WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	s.listeners.notify(key)
	return nil
}

func loadList[T any](s *Store, key string) ([]T, error) {
	var items []T
	if err := loadDoc(s, key, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func saveList[T any](s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	return saveDoc(s, key, items)
}

// loadLedger reads a habit-id -> completed-dates map.
func loadLedger(s *Store, key string) (map[string][]string, error) {
	ledger := map[string][]string{}
	if err := loadDoc(s, key, &ledger); err != nil {
		return nil, err
	}
	if ledger == nil {
		ledger = map[string][]string{}
	}
	return ledger, nil
}

func saveLedger(s *Store, key string, ledger map[string][]string) error {
	return saveDoc(s, key, ledger)
}
