package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/plannr/internal/store"
	"github.com/sadopc/plannr/internal/tui"
)

func main() {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	// Rollover must run before anything reads the pending list, then
	// the routine pass fills in today's habit tasks.
	now := time.Now()
	if _, err := s.Rollover(now); err != nil {
		fmt.Fprintf(os.Stderr, "error rolling over tasks: %v\n", err)
		os.Exit(1)
	}
	if _, err := s.RolloverWeek(now); err != nil {
		fmt.Fprintf(os.Stderr, "error resetting weekly ledger: %v\n", err)
		os.Exit(1)
	}
	if _, err := s.GenerateRoutineTasks(now); err != nil {
		fmt.Fprintf(os.Stderr, "error generating routine tasks: %v\n", err)
		os.Exit(1)
	}

	app := tui.NewApp(s)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
