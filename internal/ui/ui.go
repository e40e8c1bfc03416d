// Package ui is the interactive dashboard shown when rjy runs without a
// subcommand: a live table of tracked sessions with keys to reconnect,
// disconnect, or drop them.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/remote-jupyter/rjy/internal/appconfig"
	"github.com/remote-jupyter/rjy/internal/model"
	"github.com/remote-jupyter/rjy/internal/proc"
	"github.com/remote-jupyter/rjy/internal/registry"
	"github.com/remote-jupyter/rjy/internal/util"
)

type tickMsg time.Time

var (
	connectedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	disconnectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
)

type dashboardModel struct {
	rows       []registry.Row
	filtered   []registry.Row
	sel        int
	filterIn   textinput.Model
	filterMode bool
	showHelp   bool
	status     string
	width      int
	height     int
	cfg        appconfig.Config
	store      *registry.Store
	reg        *registry.Registry
}

func newDashboard(cfg appconfig.Config, store *registry.Store, reg *registry.Registry) dashboardModel {
	fi := textinput.New()
	fi.Placeholder = "key or link substring"
	fi.CharLimit = 128
	fi.Width = 40

	m := dashboardModel{cfg: cfg, store: store, reg: reg, filterIn: fi}
	m.refreshRows()
	m.status = "Ready. Select a session, then c/d/x to reconnect, disconnect, or drop."
	return m
}

func (m *dashboardModel) refreshRows() {
	m.rows = m.reg.Rows()
	m.applyFilter()
}

func (m *dashboardModel) applyFilter() {
	f := strings.ToLower(strings.TrimSpace(m.filterIn.Value()))
	if f == "" {
		m.filtered = append([]registry.Row(nil), m.rows...)
	} else {
		m.filtered = nil
		for _, row := range m.rows {
			if strings.Contains(strings.ToLower(row.Key), f) || strings.Contains(strings.ToLower(row.Link), f) {
				m.filtered = append(m.filtered, row)
			}
		}
	}
	if m.sel >= len(m.filtered) {
		m.sel = len(m.filtered) - 1
	}
	if m.sel < 0 {
		m.sel = 0
	}
}

func tickCmd(seconds int) tea.Cmd {
	if seconds <= 0 {
		seconds = 3
	}
	return tea.Tick(time.Duration(seconds)*time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m dashboardModel) Init() tea.Cmd {
	return tickCmd(m.cfg.UI.RefreshSeconds)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refreshRows()
		return m, tickCmd(m.cfg.UI.RefreshSeconds)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.filterMode {
			switch msg.String() {
			case "enter", "esc":
				m.filterMode = false
				m.filterIn.Blur()
				m.applyFilter()
				return m, nil
			default:
				var cmd tea.Cmd
				m.filterIn, cmd = m.filterIn.Update(msg)
				m.applyFilter()
				return m, cmd
			}
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			if m.sel < len(m.filtered)-1 {
				m.sel++
			}
		case "k", "up":
			if m.sel > 0 {
				m.sel--
			}
		case "/":
			m.filterMode = true
			m.filterIn.Focus()
			m.status = "Filter mode: type and press Enter"
		case "?":
			m.showHelp = !m.showHelp
		case "r":
			m.refreshRows()
			m.status = "Refreshed session status"
		case "c":
			m.mutateSelected("reconnect", m.reg.Reconnect)
		case "d":
			m.mutateSelected("disconnect", m.reg.Disconnect)
		case "x":
			m.mutateSelected("drop", m.reg.Drop)
		}
	}
	return m, nil
}

// mutateSelected applies op to the selected session and persists the
// registry, reporting the outcome on the status line.
func (m *dashboardModel) mutateSelected(name string, op func(key string) error) {
	if len(m.filtered) == 0 {
		m.status = "No session selected"
		return
	}
	key := m.filtered[m.sel].Key
	if err := op(key); err != nil {
		m.status = fmt.Sprintf("%s %s failed: %v", name, key, err)
		return
	}
	if err := m.store.Save(m.reg); err != nil {
		m.status = fmt.Sprintf("persist after %s failed: %v", name, err)
		return
	}
	m.status = fmt.Sprintf("%s %s done", name, key)
	m.refreshRows()
}

func (m dashboardModel) View() string {
	head := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Render("Remote Jupyter Sessions")
	subhead := fmt.Sprintf("sessions=%d shown=%d refresh=%ds", len(m.rows), len(m.filtered), clampRefresh(m.cfg.UI.RefreshSeconds))

	tbl := strings.Builder{}
	tbl.WriteString(fmt.Sprintf("  %-24s %-8s %-14s %s\n", "KEY", "PID", "STATUS", "LINK"))
	for i, row := range m.filtered {
		cursor := " "
		if i == m.sel {
			cursor = ">"
		}
		tbl.WriteString(fmt.Sprintf("%s %-24s %-8s %s %s\n",
			cursor, row.Key, util.EmptyDash(row.PID), renderStatus(row.Status), row.Link))
	}
	if len(m.filtered) == 0 {
		tbl.WriteString("  (no sessions matched)\n")
	}

	filterLine := fmt.Sprintf("Filter: %s", m.filterIn.Value())
	if m.filterMode {
		filterLine = "Filter: " + m.filterIn.View()
	}

	quickHelp := "Keys: c reconnect | d disconnect | x drop | / filter | r refresh | ? help | q quit"
	sessions := m.renderPanel("Sessions", tbl.String(), m.effectiveWidth(), lipgloss.Color("63"))
	status := m.renderPanel("Status", m.status, m.effectiveWidth(), lipgloss.Color("205"))
	help := ""
	if m.showHelp {
		help = m.renderPanel("Help", m.helpBlock(), m.effectiveWidth(), lipgloss.Color("244"))
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		head,
		subhead,
		filterLine,
		quickHelp,
		sessions,
		help,
		status,
	)
}

// Run loads the registry and starts the dashboard program.
func Run() error {
	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}
	sp := proc.NewSSH(cfg.SSHBinary, cfg.SSHArgs)
	store, err := registry.NewStore()
	if err != nil {
		return err
	}
	reg, err := store.Load(sp)
	if err != nil {
		return err
	}
	p := tea.NewProgram(newDashboard(cfg, store, reg), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func renderStatus(st model.Status) string {
	padded := fmt.Sprintf("%-14s", string(st))
	if st == model.StatusConnected {
		return connectedStyle.Render(padded)
	}
	return disconnectedStyle.Render(padded)
}

func clampRefresh(seconds int) int {
	if seconds <= 0 {
		return 3
	}
	return seconds
}

func (m dashboardModel) helpBlock() string {
	return strings.Join([]string{
		"  Navigation: j/k or arrow keys move selection.",
		"  Filtering: press /, type key or link text, then Enter.",
		"  Reconnect: press c on the selected session (live sessions are untouched).",
		"  Disconnect: press d to stop the forward but keep the session tracked.",
		"  Drop: press x to stop the forward and forget the session.",
		"  Refresh: press r to reprobe process liveness.",
		"  Quit: press q (or Ctrl+C); forwards keep running in the background.",
	}, "\n")
}

func (m dashboardModel) effectiveWidth() int {
	if m.width <= 0 {
		return 100
	}
	return m.width
}

func (m dashboardModel) renderPanel(title, body string, width int, accent lipgloss.Color) string {
	if width < 24 {
		width = 24
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title)
	content := strings.TrimSuffix(body, "\n")
	panel := strings.TrimSpace(header + "\n" + content)
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(panel)
}
