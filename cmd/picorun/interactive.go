package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wombatlabs/picomgr/manager"
	"github.com/wombatlabs/picomgr/provider"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	loadedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	unloadedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	gaugeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateBrowse modelState = iota
	stateLookup
)

type interactiveModel struct {
	err      error
	mgr      *manager.Manager
	heap     *provider.Heap
	man      *manifest
	path     string
	status   string
	lookup   textinput.Model
	selected int
	state    modelState
}

func newInteractiveModel(path string) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "name: "
	ti.Placeholder = "module name"
	ti.Width = 40

	return &interactiveModel{
		path:   path,
		lookup: ti,
		state:  stateBrowse,
	}
}

type builtMsg struct {
	err  error
	mgr  *manager.Manager
	heap *provider.Heap
	man  *manifest
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.build
}

func (m *interactiveModel) build() tea.Msg {
	man, err := readManifest(m.path)
	if err != nil {
		return builtMsg{err: err}
	}

	mgr, heap, err := buildManager(man)
	if err != nil {
		return builtMsg{err: err}
	}

	if err := mgr.AllocRegion(man.FinalPadding); err != nil {
		mgr.Close()
		return builtMsg{err: err}
	}

	return builtMsg{mgr: mgr, heap: heap, man: man}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateLookup {
			return m.updateLookup(msg)
		}
		return m.updateBrowse(msg)

	case builtMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mgr = msg.mgr
		m.heap = msg.heap
		m.man = msg.man
		m.status = fmt.Sprintf("registered %d modules, region %d bytes", m.mgr.Count(), m.mgr.RegionSize())
	}

	return m, nil
}

func (m *interactiveModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.mgr != nil {
			m.mgr.Close()
		}
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.mgr != nil && m.selected < m.mgr.Count()-1 {
			m.selected++
		}

	case "l":
		m.doLoad(manager.LoadAll)

	case "b":
		m.doLoad(m.selected)

	case "r":
		m.doRemove()

	case "/":
		m.state = stateLookup
		m.lookup.SetValue("")
		m.lookup.Focus()
	}

	return m, nil
}

func (m *interactiveModel) updateLookup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		m.lookup.Blur()
		return m, nil

	case "enter":
		name := m.lookup.Value()
		m.state = stateBrowse
		m.lookup.Blur()

		if m.mgr == nil {
			return m, nil
		}
		e, ok := m.mgr.ByName(name)
		if !ok {
			m.err = fmt.Errorf("no entry named %q", name)
			return m, nil
		}
		m.err = nil
		m.selected = e.ID
		m.status = fmt.Sprintf("found %s (id %d)", e.Name, e.ID)
		return m, nil
	}

	var cmd tea.Cmd
	m.lookup, cmd = m.lookup.Update(msg)
	return m, cmd
}

func (m *interactiveModel) doLoad(upTo int) {
	if m.mgr == nil {
		return
	}
	m.err = nil
	if err := m.mgr.Load(upTo, m.man.FinalPadding, m.man.importTable()); err != nil {
		m.err = err
		return
	}
	if upTo == manager.LoadAll {
		m.status = "loaded all entries"
	} else {
		m.status = fmt.Sprintf("loaded entries 0..%d", upTo)
	}
}

func (m *interactiveModel) doRemove() {
	if m.mgr == nil || m.mgr.Count() == 0 {
		return
	}
	m.err = nil
	e, _ := m.mgr.ByID(m.selected)
	name := e.Name
	if err := m.mgr.RemoveByID(m.selected); err != nil {
		m.err = err
		return
	}
	if m.selected >= m.mgr.Count() && m.selected > 0 {
		m.selected--
	}
	m.status = fmt.Sprintf("removed %s, %d entries remain", name, m.mgr.Count())
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("picorun — " + m.path))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	if m.mgr == nil {
		b.WriteString("loading manifest...\n")
		return b.String()
	}

	for id := 0; id < m.mgr.Count(); id++ {
		e, _ := m.mgr.ByID(id)

		state := unloadedStyle.Render("unloaded")
		if e.Loaded() {
			off, _ := regionOffset(m.mgr, e.Code)
			state = loadedStyle.Render(fmt.Sprintf("@%d", off))
		}

		line := fmt.Sprintf("%2d  %-31s code=%-6d data=%-6d %s", e.ID, e.Name, e.CodeSize, e.DataSize, state)
		if id == m.selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString("\n")
	b.WriteString(m.gauge())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	if m.state == stateLookup {
		b.WriteString("\n")
		b.WriteString(m.lookup.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter: select  esc: cancel"))
	} else {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("l: load all  b: load to selection  r: remove  /: find  q: quit"))
	}

	return b.String()
}

const gaugeWidth = 40

// gauge renders region occupancy. The used watermark can overshoot the
// region by one inter-module padding, so clamp for display.
func (m *interactiveModel) gauge() string {
	size := m.mgr.RegionSize()
	used := min(m.mgr.UsedSize(), size)

	filled := 0
	if size > 0 {
		filled = used * gaugeWidth / size
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", gaugeWidth-filled)
	live := m.heap.LiveBytes()
	return gaugeStyle.Render(bar) + fmt.Sprintf(" region %d/%d bytes, %d live heap bytes", used, size, live)
}

func runInteractive(manifestPath string) error {
	p := tea.NewProgram(newInteractiveModel(manifestPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
