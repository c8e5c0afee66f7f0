package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"astrin/internal/chat"
	"astrin/internal/feeds"
	"astrin/internal/lifecycle"
)

// Deps are the collaborators the app needs. History may be nil, which
// hides the saved-history screen.
type Deps struct {
	Feeds          *feeds.Client
	History        *chat.HistoryClient
	NewSession     SessionFactory
	PollInterval   time.Duration
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

type menuItem struct {
	title       string
	description string
	build       func() screen
}

// Model is the root bubbletea model: a home menu and at most one mounted
// screen. All lifecycle notifications arrive through the bridge.
type Model struct {
	deps   Deps
	bridge *Bridge
	items  []menuItem
	cursor int

	active      screen
	activeTitle string
	showHelp    bool

	width, height int
	ready         bool
}

func New(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	m := Model{deps: deps, bridge: NewBridge()}

	for _, info := range feeds.Catalog {
		m.items = append(m.items, menuItem{
			title:       info.Name,
			description: info.Description,
			build:       func() screen { return m.feedScreen(info) },
		})
	}
	if deps.NewSession != nil {
		m.items = append(m.items, menuItem{
			title:       "Chat with Astrin",
			description: "Ask the AI companion about planets, stars and missions.",
			build: func() screen {
				return NewChatView(deps.NewSession, m.bridge.Notify, deps.Logger.Named("chat"))
			},
		})
	}
	if deps.History != nil {
		m.items = append(m.items, menuItem{
			title:       "Saved Conversations",
			description: "Browse chat history stored by the gateway.",
			build: func() screen {
				return newFeedView(historyBinding(deps.History), m.lifecycleOptions("history")...)
			},
		})
	}
	return m
}

func (m Model) lifecycleOptions(name string) []lifecycle.Option {
	opts := []lifecycle.Option{
		lifecycle.WithName(name),
		lifecycle.WithNotify(m.bridge.Notify),
		lifecycle.WithLogger(m.deps.Logger),
	}
	if m.deps.RequestTimeout > 0 {
		opts = append(opts, lifecycle.WithTimeout(m.deps.RequestTimeout))
	}
	return opts
}

func (m Model) feedScreen(info feeds.Info) screen {
	opts := m.lifecycleOptions(string(info.ID))
	c := m.deps.Feeds
	switch info.ID {
	case feeds.NearEarthObjects:
		return newFeedView(nearEarthObjectsBinding(c), opts...)
	case feeds.PictureOfTheDay:
		return newFeedView(pictureOfDayBinding(c), opts...)
	case feeds.MarsWeather:
		return newFeedView(marsWeatherBinding(c), opts...)
	case feeds.StationLocation:
		return newFeedView(stationPositionBinding(c, m.deps.PollInterval), opts...)
	case feeds.Launches:
		return newFeedView(launchesBinding(c), opts...)
	}
	panic(fmt.Sprintf("ui: no screen for feed %q", info.ID))
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("Astrin"), m.bridge.Wait())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if m.active != nil {
			m.active.SetSize(m.width, m.bodyHeight())
		}
		return m, nil

	case stateChangedMsg:
		var cmd tea.Cmd
		if m.active != nil {
			cmd = m.active.Update(msg)
		}
		return m, tea.Batch(cmd, m.bridge.Wait())

	case backMsg:
		m.unmount()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.active != nil {
		return m, m.active.Update(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.Close()
		return m, tea.Quit
	}

	if m.showHelp {
		switch key {
		case "esc", "?", "f1":
			m.showHelp = false
		}
		return m, nil
	}

	if key == "f1" {
		m.showHelp = true
		return m, nil
	}

	if m.active != nil {
		if key == "esc" {
			m.unmount()
			return m, nil
		}
		if !m.active.CapturesInput() {
			switch key {
			case "q":
				m.Close()
				return m, tea.Quit
			case "?":
				m.showHelp = true
				return m, nil
			}
		}
		return m, m.active.Update(msg)
	}

	switch key {
	case "q":
		m.Close()
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		return m, m.mount(m.cursor)
	}
	return m, nil
}

func (m *Model) mount(i int) tea.Cmd {
	if i < 0 || i >= len(m.items) {
		return nil
	}
	m.unmount()
	item := m.items[i]
	m.active = item.build()
	m.activeTitle = item.title
	m.active.SetSize(m.width, m.bodyHeight())
	m.deps.Logger.Debug("screen mounted", zap.String("screen", item.title))
	return m.active.Mount()
}

func (m *Model) unmount() {
	if m.active == nil {
		return
	}
	m.active.Unmount()
	m.deps.Logger.Debug("screen unmounted", zap.String("screen", m.activeTitle))
	m.active = nil
	m.activeTitle = ""
}

// Close unmounts the active screen and releases the bridge. It is safe to
// call more than once.
func (m *Model) Close() {
	m.unmount()
	m.bridge.Close()
}

const (
	headerHeight = 3
	footerHeight = 2
)

func (m Model) bodyHeight() int {
	return max(m.height-headerHeight-footerHeight, 5)
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	subtitle := "Explore the cosmos"
	if m.active != nil {
		subtitle = m.activeTitle
	}
	header := TitleStyle.Render("✦ ASTRIN") + "  " + SubtitleStyle.Render(subtitle)

	var body string
	if m.active != nil {
		body = m.active.View()
	} else {
		body = m.renderMenu()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		DimStyle.Render(m.footer()),
	)
}

func (m Model) renderMenu() string {
	var sb strings.Builder
	for i, item := range m.items {
		if i == m.cursor {
			sb.WriteString(ActiveItemStyle.Render("▸ " + item.title))
		} else {
			sb.WriteString(InactiveItemStyle.Render("  " + item.title))
		}
		sb.WriteString("\n")
		sb.WriteString(DimStyle.Render("    " + item.description))
		sb.WriteString("\n")
	}
	return ActiveBox.Padding(1, 2).Render(strings.TrimRight(sb.String(), "\n"))
}

func (m Model) footer() string {
	switch {
	case m.active == nil:
		return "↑/↓ select • enter open • ? help • q quit"
	case m.active.CapturesInput():
		return "enter send • /help commands • esc back • ctrl+c quit"
	default:
		return "r reload • pgup/pgdn scroll • esc back • ? help • q quit"
	}
}
