package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/freight-sim/freight-sim/sim/experiment"
)

var (
	menuTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	menuItemStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	menuSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Bold(true).
				Foreground(lipgloss.Color("#00FFFF"))

	menuHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

// menuItem is one numbered entry; option 0 terminates.
type menuItem struct {
	sweep string
	label string
}

var menuItems = []menuItem{
	{experiment.SweepMoneyTime, "Money through time"},
	{experiment.SweepGraphTypes, "Varying the graph's type (random and scale-free)"},
	{experiment.SweepNumCompanies, "Varying the number of companies"},
	{experiment.SweepNumNodes, "Varying the number of nodes w/ 8 and 16 trucks (slow)"},
	{experiment.SweepThreshold, "Varying the trucks' threshold"},
}

type menuKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Quit  key.Binding
}

var menuKeys = menuKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run"),
	),
	Quit: key.NewBinding(
		key.WithKeys("0", "q", "ctrl+c", "esc"),
		key.WithHelp("0/q", "terminate"),
	),
}

func (k menuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Quit}
}

func (k menuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Enter, k.Quit}}
}

type menuModel struct {
	cursor int
	chosen string // sweep to run; empty after quit
	done   bool
	help   help.Model
	keys   menuKeyMap
}

func newMenuModel() menuModel {
	return menuModel{help: help.New(), keys: menuKeys}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.cursor = (m.cursor + len(menuItems) - 1) % len(menuItems)
		case key.Matches(msg, m.keys.Down):
			m.cursor = (m.cursor + 1) % len(menuItems)
		case key.Matches(msg, m.keys.Enter):
			m.chosen, m.done = menuItems[m.cursor].sweep, true
			return m, tea.Quit
		default:
			// digits pick an option directly
			if s := msg.String(); len(s) == 1 && s[0] >= '1' && int(s[0]-'0') <= len(menuItems) {
				m.chosen, m.done = menuItems[s[0]-'1'].sweep, true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	if m.done {
		return ""
	}
	var s strings.Builder
	s.WriteString(menuTitleStyle.Render("Select number to choose simulation:"))
	s.WriteString("\n\n")
	for i, item := range menuItems {
		line := fmt.Sprintf("%d - %s", i+1, item.label)
		if i == m.cursor {
			s.WriteString(menuSelectedStyle.Render("> " + line))
		} else {
			s.WriteString(menuItemStyle.Render(line))
		}
		s.WriteString("\n")
	}
	s.WriteString(menuItemStyle.Render("0 - Terminate"))
	s.WriteString("\n")
	s.WriteString(menuHelpStyle.Render(m.help.View(m.keys)))
	return s.String()
}

// chooseSweep shows the menu once and returns the selected sweep, or "" to stop.
func chooseSweep(opts ...tea.ProgramOption) (string, error) {
	final, err := tea.NewProgram(newMenuModel(), opts...).Run()
	if err != nil {
		return "", err
	}
	return final.(menuModel).chosen, nil
}

// menuCmd loops over the interactive menu until option 0 is chosen
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Choose and run experiments from an interactive menu",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig(cmd)
		out := currentSinks()

		for {
			name, err := chooseSweep()
			if err != nil {
				logrus.Fatalf("Error running menu: %v", err)
			}
			if name == "" {
				return
			}
			reg := out.registry()
			res, err := runNamedSweep(cmd.Context(), name, cfg, reg)
			if err != nil {
				logrus.Errorf("%v", err)
				if cmd.Context().Err() != nil {
					return
				}
				continue
			}
			if err := reportSweep(cmd, cfg, out, reg, res); err != nil {
				logrus.Errorf("%v", err)
			}
		}
	},
}
