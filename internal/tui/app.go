package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/plannr/internal/export"
	"github.com/sadopc/plannr/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	tasks    tasksModel
	habits   habitsModel
	goals    goalsModel
	pomodoro pomodoroModel
	settings settingsModel

	// changes carries document keys from the store subscription into
	// the update loop.
	changes chan string

	help        help.Model
	status      string
	statusIsErr bool
}

func NewApp(s *store.Store) App {
	h := help.New()
	h.ShowAll = false

	changes := make(chan string, 32)
	s.Subscribe(func(key string) {
		select {
		case changes <- key:
		default: // drop when the UI is behind; views refresh on switch anyway
		}
	})

	return App{
		store:      s,
		activeView: viewTasks,
		tasks:      newTasksModel(s),
		habits:     newHabitsModel(s),
		goals:      newGoalsModel(s),
		pomodoro:   newPomodoroModel(s),
		settings:   newSettingsModel(s),
		changes:    changes,
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.tasks.refresh(),
		a.pomodoro.refresh(),
		tickCmd(),
		a.waitForChange(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		return storeChangedMsg(<-a.changes)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.tasks.setSize(a.width, contentHeight)
		a.habits.setSize(a.width, contentHeight)
		a.goals.setSize(a.width, contentHeight)
		a.pomodoro.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			// Persist the in-flight pomodoro so a relaunch resumes it.
			a.pomodoro.saveSnapshot()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTasks
			return a, a.tasks.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewHabits
			return a, a.habits.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewGoals
			return a, a.goals.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewPomodoro
			return a, a.pomodoro.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 5
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Ticks always reach the task stopwatch and the pomodoro
		// countdown, whichever view is showing.
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		a.pomodoro, cmd = a.pomodoro.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case settingsDataMsg:
		// Both the pomodoro tab (log) and the settings tab (config)
		// render from this payload, whichever view asked for it.
		var cmd tea.Cmd
		a.pomodoro, cmd = a.pomodoro.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		a.settings, cmd = a.settings.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case storeChangedMsg:
		cmds = append(cmds, a.waitForChange())
		if cmd := a.refreshForKey(string(msg)); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusIsErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusIsErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

// refreshForKey reloads the view that displays the changed document, if
// it is the one on screen.
func (a App) refreshForKey(key string) tea.Cmd {
	switch a.activeView {
	case viewTasks:
		if key == store.KeyTasksPending || key == store.KeyTasksDone || key == store.KeyTasksDeferred {
			return a.tasks.refresh()
		}
	case viewHabits:
		if key == store.KeyHabits || key == store.KeyLedgerCurrent || key == store.KeyLedgerHistory {
			return a.habits.refresh()
		}
	case viewGoals:
		if key == store.KeyGoals {
			return a.goals.refresh()
		}
	case viewPomodoro:
		if key == store.KeyPomodoroSettings || key == store.KeyPomodoroLog {
			return a.pomodoro.refresh()
		}
	case viewSettings:
		if key == store.KeyPomodoroSettings || key == store.KeyPomodoroLog {
			return a.settings.refresh()
		}
	}
	return nil
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewHabits:
		a.habits, cmd = a.habits.update(msg)
	case viewGoals:
		a.goals, cmd = a.goals.update(msg)
	case viewPomodoro:
		a.pomodoro, cmd = a.pomodoro.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewHabits:
		return a.habits.formActive
	case viewGoals:
		return a.goals.formActive
	case viewPomodoro:
		return a.pomodoro.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTasks:
		return a.tasks.refresh()
	case viewHabits:
		return a.habits.refresh()
	case viewGoals:
		return a.goals.refresh()
	case viewPomodoro:
		return a.pomodoro.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTasks:
		content = a.tasks.view()
	case viewHabits:
		content = a.habits.view()
	case viewGoals:
		content = a.goals.view()
	case viewPomodoro:
		content = a.pomodoro.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("plannr")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusIsErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Stopwatch indicator in footer
	watchInfo := ""
	if a.tasks.watchRunning() {
		watchInfo = successStyle.Render(" ● " + formatSeconds(a.tasks.watchBase+a.tasks.watchElapsed))
	}

	left := footerStyle.Render(helpView)
	right := watchInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		tasks, err := a.store.AllTasks()
		if err != nil {
			return errorStatus(err)
		}
		habits, err := a.store.ListHabits()
		if err != nil {
			return errorStatus(err)
		}
		ledger, err := a.store.HistoricalLedger()
		if err != nil {
			return errorStatus(err)
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("plannr-export-%s.csv", dateStr))
			if err := export.ToCSV(tasks, path); err != nil {
				return errorStatus(err)
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("plannr-export-%s.json", dateStr))
			if err := export.ToJSON(tasks, habits, ledger, path); err != nil {
				return errorStatus(err)
			}
		}

		return exportDoneMsg{path: path}
	}
}
