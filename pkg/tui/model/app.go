// Package model is the terminal host for the panel: a status line standing
// in for the panel button and a popup menu with one block per section.
package model

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/modoterra/svcpanel/pkg/pager"
	"github.com/modoterra/svcpanel/pkg/presenter"
)

// Mode identifies the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
)

// SettingsChangedMsg tells the app the preferences file was reloaded.
type SettingsChangedMsg struct{}

// Config wires the app to the presenter layer.
type Config struct {
	Factory   presenter.Factory
	Pager     *pager.Pager
	Scheduler presenter.Scheduler
	Logger    *slog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	panel *Panel
	menu  *presenter.MenuPresenter

	// cursor indexes selectable rows; button indexes the cursor row's
	// visible buttons.
	cursor int
	button int

	mode   Mode
	filter textinput.Model
	help   help.Model
	width  int
	height int

	logger *slog.Logger
}

// New creates the app and activates the menu presenter.
func New(cfg Config) App {
	fi := textinput.New()
	fi.Placeholder = "filter..."
	fi.CharLimit = 64

	panel := NewPanel()
	menu := presenter.NewMenuPresenter(panel, presenter.MenuConfig{
		Factory:   cfg.Factory,
		Pager:     cfg.Pager,
		Scheduler: cfg.Scheduler,
		Logger:    cfg.Logger,
	})
	menu.SetupEvents()

	return App{
		panel:  panel,
		menu:   menu,
		filter: fi,
		help:   help.New(),
		logger: cfg.Logger,
	}
}

// Init sets the window title.
func (a App) Init() tea.Cmd {
	return tea.SetWindowTitle("svcpanel")
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case postMsg:
		msg.fn()
		a.clamp()
		return a, nil

	case SettingsChangedMsg:
		a.logger.Info("settings changed")
		a.menu.RefreshIcons()
		if a.panel.IsOpen() {
			a.panel.SetOpen(true)
		}
		a.clamp()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a.quit()
	}

	if a.mode == ModeFilter {
		switch msg.String() {
		case "esc":
			a.mode = ModeNormal
			a.filter.SetValue("")
			a.filter.Blur()
		case "enter":
			a.mode = ModeNormal
			a.filter.Blur()
		default:
			var cmd tea.Cmd
			a.filter, cmd = a.filter.Update(msg)
			a.cursor, a.button = 0, 0
			return a, cmd
		}
		a.clamp()
		return a, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a.quit()
	case key.Matches(msg, keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	}

	if !a.panel.IsOpen() {
		if key.Matches(msg, keys.Toggle) {
			a.cursor, a.button = 0, 0
			a.panel.SetOpen(true)
			a.clamp()
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, keys.Close):
		if a.filter.Value() != "" {
			a.filter.SetValue("")
			a.clamp()
			return a, nil
		}
		a.panel.SetOpen(false)
	case key.Matches(msg, keys.Down):
		a.move(1)
	case key.Matches(msg, keys.Up):
		a.move(-1)
	case key.Matches(msg, keys.Right):
		a.moveButton(1)
	case key.Matches(msg, keys.Left):
		a.moveButton(-1)
	case key.Matches(msg, keys.Filter):
		a.mode = ModeFilter
		a.filter.Focus()
		return a, textinput.Blink
	case key.Matches(msg, keys.Refresh):
		a.panel.SetOpen(true)
		a.clamp()
	case key.Matches(msg, keys.Activate):
		a.activate()
		a.clamp()
	}
	return a, nil
}

func (a App) quit() (tea.Model, tea.Cmd) {
	a.menu.OnDestroy()
	return a, tea.Quit
}

func (a *App) move(delta int) {
	rows := a.panel.selectableRows(a.filter.Value())
	if len(rows) == 0 {
		return
	}
	a.cursor = min(max(a.cursor+delta, 0), len(rows)-1)
	a.button = 0
}

func (a *App) moveButton(delta int) {
	item := a.selected()
	if item == nil {
		return
	}
	n := len(item.visibleButtons())
	if n == 0 {
		return
	}
	a.button = min(max(a.button+delta, 0), n-1)
}

// activate presses the selected button, or clicks the row when it has no
// buttons.
func (a *App) activate() {
	item := a.selected()
	if item == nil {
		return
	}
	if buttons := item.visibleButtons(); len(buttons) > 0 {
		b := buttons[min(a.button, len(buttons)-1)]
		a.logger.Debug("action pressed", "item", item.cfg.ID, "action", b.action)
		b.handler()
		return
	}
	if item.click != nil {
		item.click()
	}
}

func (a App) selected() *itemView {
	rows := a.panel.selectableRows(a.filter.Value())
	if a.cursor < 0 || a.cursor >= len(rows) {
		return nil
	}
	return rows[a.cursor].item
}

// clamp keeps the cursor on an existing row after the rows changed.
func (a *App) clamp() {
	rows := a.panel.selectableRows(a.filter.Value())
	if a.cursor >= len(rows) {
		a.cursor = max(len(rows)-1, 0)
	}
	if item := a.selected(); item != nil {
		if n := len(item.visibleButtons()); a.button >= n {
			a.button = max(n-1, 0)
		}
	}
}
