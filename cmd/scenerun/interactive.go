package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lunarc/script-bridge/ecs"
	"github.com/lunarc/script-bridge/script"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const outputTail = 20

// lineBuffer collects script output lines. The script sinks run on the
// program goroutine but loading happens in a command, so access is locked.
type lineBuffer struct {
	mu    sync.Mutex
	lines []string
}

func (b *lineBuffer) add(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
}

func (b *lineBuffer) tail(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.lines) > n {
		return append([]string(nil), b.lines[len(b.lines)-n:]...)
	}
	return append([]string(nil), b.lines...)
}

type modelState int

const (
	stateRunning modelState = iota
	stateAttach
)

type sceneModel struct {
	err     error
	store   *ecs.Store
	mgr     *script.Manager
	output  *lineBuffer
	scripts string
	scene   string
	dt      float64
	frame   int
	auto    bool
	state   modelState
	attach  textinput.Model
}

type loadedMsg struct {
	err   error
	store *ecs.Store
	mgr   *script.Manager
}

type tickMsg time.Time

func newSceneModel(scripts, scene string, dt float64) *sceneModel {
	ti := textinput.New()
	ti.Placeholder = "module.Class"
	ti.Prompt = "attach: "
	ti.Width = 40
	return &sceneModel{
		scripts: scripts,
		scene:   scene,
		dt:      dt,
		output:  &lineBuffer{},
		attach:  ti,
	}
}

func (m *sceneModel) Init() tea.Cmd {
	return m.loadScene
}

func (m *sceneModel) loadScene() tea.Msg {
	bus := ecs.NewEventBus()
	store := ecs.NewStore(bus)

	mgr := script.NewManager(store)
	mgr.AddSearchPaths(strings.Split(m.scripts, ","))
	mgr.LogTo(
		func(line string) { m.output.add(outputStyle.Render(line)) },
		func(line string) { m.output.add(errorStyle.Render(line)) },
	)
	if err := mgr.Configure(bus); err != nil {
		return loadedMsg{err: err}
	}

	for _, spec := range strings.Split(m.scene, ",") {
		module, class, err := splitSpec(spec)
		if err != nil {
			mgr.Close()
			return loadedMsg{err: err}
		}
		e := store.Create()
		if _, err := mgr.AttachScript(e, module, class); err != nil {
			mgr.Close()
			return loadedMsg{err: fmt.Errorf("attach %s: %w", spec, err)}
		}
	}
	return loadedMsg{store: store, mgr: mgr}
}

func (m *sceneModel) stepFrame() {
	if m.mgr == nil {
		return
	}
	if err := m.mgr.Update(m.dt); err != nil {
		m.output.add(errorStyle.Render(err.Error()))
		m.auto = false
		return
	}
	m.frame++
}

func (m *sceneModel) attachEntity(spec string) {
	module, class, err := splitSpec(strings.TrimSpace(spec))
	if err != nil {
		m.output.add(errorStyle.Render(err.Error()))
		return
	}
	e := m.store.Create()
	if _, err := m.mgr.AttachScript(e, module, class); err != nil {
		m.store.Destroy(e)
		m.output.add(errorStyle.Render(fmt.Sprintf("attach %s: %v", spec, err)))
		return
	}
	m.output.add(statStyle.Render(fmt.Sprintf("attached %s as entity %s", spec, e)))
}

func tick(dt float64) tea.Cmd {
	return tea.Tick(time.Duration(dt*float64(time.Second)), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *sceneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateAttach {
			switch msg.String() {
			case "ctrl+c":
				if m.mgr != nil {
					m.mgr.Close()
				}
				return m, tea.Quit
			case "enter":
				m.attachEntity(m.attach.Value())
				m.attach.Reset()
				m.attach.Blur()
				m.state = stateRunning
			case "esc":
				m.attach.Reset()
				m.attach.Blur()
				m.state = stateRunning
			default:
				var cmd tea.Cmd
				m.attach, cmd = m.attach.Update(msg)
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "q":
			if m.mgr != nil {
				m.mgr.Close()
			}
			return m, tea.Quit

		case " ":
			m.auto = false
			m.stepFrame()

		case "r":
			m.auto = !m.auto
			if m.auto {
				return m, tick(m.dt)
			}

		case "a":
			if m.mgr != nil {
				m.auto = false
				m.state = stateAttach
				return m, m.attach.Focus()
			}
		}

	case tickMsg:
		if m.auto {
			m.stepFrame()
			if m.auto {
				return m, tick(m.dt)
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.store = msg.store
		m.mgr = msg.mgr
	}

	return m, nil
}

func (m *sceneModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.mgr == nil {
		return "Loading scene..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Scene Runner"))
	b.WriteString(" ")
	b.WriteString(m.scene)
	b.WriteString("\n\n")
	b.WriteString(statStyle.Render(fmt.Sprintf("frame %d  •  %d entities  •  dt %.3fs", m.frame, m.store.Len(), m.dt)))
	if m.auto {
		b.WriteString(statStyle.Render("  •  running"))
	}
	b.WriteString("\n\n")

	for _, line := range m.output.tail(outputTail) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.state == stateAttach {
		b.WriteString(m.attach.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter attach • esc cancel"))
		return b.String()
	}

	b.WriteString(helpStyle.Render("space step • r run/pause • a attach • q quit"))
	return b.String()
}

func runInteractive(scripts, scene string, dt float64) error {
	p := tea.NewProgram(newSceneModel(scripts, scene, dt), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
