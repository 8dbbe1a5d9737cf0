package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/hostsync/config"
	"github.com/wippyai/hostsync/scenario"
	"github.com/wippyai/hostsync/system"
)

const refreshInterval = 100 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Run  key.Binding
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Run, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Run:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type interactiveModel struct {
	sys       *system.System
	lines     chan string
	output    []string
	rows      []string
	scenarios []scenario.Scenario
	spinner   spinner.Model
	help      help.Model
	selected  int
	running   string
}

type tickMsg time.Time

type lineMsg string

type doneMsg struct {
	err     error
	name    string
	elapsed time.Duration
}

func newInteractiveModel(sys *system.System) *interactiveModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = nameStyle

	return &interactiveModel{
		sys:       sys,
		lines:     make(chan string, 64),
		scenarios: scenario.All(),
		spinner:   sp,
		help:      help.New(),
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick(), m.listen)
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *interactiveModel) listen() tea.Msg {
	return lineMsg(<-m.lines)
}

func (m *interactiveModel) run(sc scenario.Scenario) tea.Cmd {
	return func() tea.Msg {
		begin := time.Now()
		err := sc.Run(context.Background(), m.sys, func(line string) {
			select {
			case m.lines <- line:
			default:
			}
		})
		return doneMsg{err: err, name: sc.Name, elapsed: time.Since(begin)}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			if m.running == "" {
				return m, tea.Quit
			}

		case key.Matches(msg, keys.Up):
			if m.selected > 0 {
				m.selected--
			}

		case key.Matches(msg, keys.Down):
			if m.selected < len(m.scenarios)-1 {
				m.selected++
			}

		case key.Matches(msg, keys.Run):
			if m.running != "" {
				return m, nil
			}
			sc := m.scenarios[m.selected]
			m.running = sc.Name
			m.output = append(m.output, nameStyle.Render("== "+sc.Name))
			return m, m.run(sc)
		}

	case tickMsg:
		m.rows = snapshot(m.sys)
		return m, tick()

	case lineMsg:
		m.output = append(m.output, "   "+string(msg))
		return m, m.listen

	case doneMsg:
		m.running = ""
		if msg.err != nil {
			m.output = append(m.output, errorStyle.Render("   failed: "+msg.err.Error()))
		} else {
			m.output = append(m.output, resultStyle.Render(fmt.Sprintf("   ok (%s)", msg.elapsed.Round(time.Millisecond))))
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// snapshot renders one line per live primitive.
func snapshot(sys *system.System) []string {
	var rows []string
	for _, e := range sys.Entries() {
		label := typeStyle.Render(fmt.Sprintf("%-8s #%-3d", e.Type, e.Handle))
		switch v := e.Value.(type) {
		case *system.Monitor:
			owner := "-"
			if o := v.Owner(); o != nil {
				owner = fmt.Sprintf("thread %d", o.ID())
			}
			rows = append(rows, fmt.Sprintf("%s owner=%s depth=%d waiters=%d", label, owner, v.Depth(), v.Waiters()))
		case *system.Thread:
			rows = append(rows, fmt.Sprintf("%s id=%d %s", label, v.ID(), v.State()))
		default:
			rows = append(rows, label)
		}
	}
	return rows
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hostsync"))
	if m.running != "" {
		b.WriteString(" ")
		b.WriteString(m.spinner.View())
		b.WriteString(" running ")
		b.WriteString(nameStyle.Render(m.running))
	}
	b.WriteString("\n\n")

	var list strings.Builder
	for i, sc := range m.scenarios {
		line := fmt.Sprintf("%-18s %s", sc.Name, helpStyle.Render(sc.Description))
		if i == m.selected {
			list.WriteString(selectedStyle.Render("> " + sc.Name))
			list.WriteString(" " + helpStyle.Render(sc.Description))
		} else {
			list.WriteString("  " + line)
		}
		list.WriteString("\n")
	}

	live := "no live primitives"
	if len(m.rows) > 0 {
		live = strings.Join(m.rows, "\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(strings.TrimRight(list.String(), "\n")),
		panelStyle.Render(live),
	))
	b.WriteString("\n\n")

	out := m.output
	if len(out) > 12 {
		out = out[len(out)-12:]
	}
	for _, l := range out {
		b.WriteString(l)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func runInteractive(cfg *config.Config) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	sys, err := system.New(opts)
	if err != nil {
		return err
	}
	defer sys.Dispose()

	p := tea.NewProgram(newInteractiveModel(sys), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
