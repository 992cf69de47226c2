package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Entry is one scenario offered by the picker. Fields are the numeric knobs
// shown on its setup screen, in display order, with their starting values.
type Entry struct {
	Name   string
	Info   string
	Fields []Field
}

type Field struct {
	Name  string
	Value float64
	Step  float64
}

// Launch turns a chosen entry and its edited fields into a live view.
type Launch func(name string, values map[string]float64) (Builder, Options, error)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

type picker struct {
	state, cursor int
	entries       []Entry
	fields        []Field
	fieldCursor   int
	editing       bool
	editBuf       string
	launch        Launch
	styles        Styles
	err           error
	live          Model
}

// NewPicker returns a bubbletea model listing entries; choosing one opens a
// setup screen and then the live view.
func NewPicker(entries []Entry, launch Launch) tea.Model {
	return picker{entries: entries, launch: launch, styles: NewStyles(Themes[0])}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.state == stateMenu {
		return m.menuKey(key)
	}
	return m.configKey(key)
}

func (m picker) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.entries) == 0 {
			return m, nil
		}
		m.fields = append([]Field(nil), m.entries[m.cursor].Fields...)
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m picker) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.fields[m.fieldCursor].Value = v
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				m.editBuf += s
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(m.fields)-1 {
			m.fieldCursor++
		}
	case "enter":
		if len(m.fields) > 0 {
			m.editing, m.editBuf = true, strconv.FormatFloat(m.fields[m.fieldCursor].Value, 'g', -1, 64)
		}
	case "left", "h":
		m.nudge(-1)
	case "right", "l":
		m.nudge(1)
	case "s", " ":
		return m.start()
	}
	return m, nil
}

func (m *picker) nudge(dir float64) {
	if len(m.fields) == 0 {
		return
	}
	f := &m.fields[m.fieldCursor]
	step := f.Step
	if step == 0 {
		step = 0.1
	}
	f.Value += dir * step
}

func (m picker) start() (tea.Model, tea.Cmd) {
	values := make(map[string]float64, len(m.fields))
	for _, f := range m.fields {
		values[f.Name] = f.Value
	}
	name := m.entries[m.cursor].Name
	build, opts, err := m.launch(name, values)
	if err == nil {
		if opts.Title == "" {
			opts.Title = name
		}
		m.live, err = NewModel(build, opts)
	}
	if err != nil {
		m.err = err
		return m, nil
	}
	m.state = stateSim
	return m, m.live.Init()
}

func (m picker) View() string {
	switch m.state {
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return m.viewMenu()
}

func (m picker) viewMenu() string {
	st := m.styles
	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("CLOTHSIM", Themes[0].Primary, Themes[0].Secondary) + "\n")
	b.WriteString("    " + st.Hint.Render("mass-spring cloth") + "\n\n")
	for i, e := range m.entries {
		if i == m.cursor {
			fmt.Fprintf(&b, "    %s %s %s\n", st.Active.Render("▸"), st.Value.Render(fmt.Sprintf("%-12s", e.Name)), st.Active.Render(e.Info))
		} else {
			fmt.Fprintf(&b, "      %s %s\n", st.Label.UnsetWidth().Render(fmt.Sprintf("%-12s", e.Name)), st.Hint.Render(e.Info))
		}
	}
	b.WriteString("\n    " + st.Hint.Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

func (m picker) viewConfig() string {
	st := m.styles
	e := m.entries[m.cursor]
	var b strings.Builder
	b.WriteString("\n\n    " + st.Header.Render(strings.ToUpper(e.Name)) + "\n    " + st.Hint.Render(e.Info) + "\n\n")
	for i, f := range m.fields {
		val := fmt.Sprintf("%10.4g", f.Value)
		if m.editing && i == m.fieldCursor {
			val = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			fmt.Fprintf(&b, "    %s %s %s\n", st.Active.Render("▸"), st.Value.Render(fmt.Sprintf("%-12s", f.Name)), st.Active.Render(val))
		} else {
			fmt.Fprintf(&b, "      %s %s\n", st.Label.UnsetWidth().Render(fmt.Sprintf("%-12s", f.Name)), st.Label.UnsetWidth().Render(val))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + st.Error.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + st.Hint.Render("j/k select  h/l adjust  enter edit  s start  esc back") + "\n")
	return b.String()
}

// RunPicker runs the picker in the alternate screen.
func RunPicker(entries []Entry, launch Launch) error {
	_, err := tea.NewProgram(NewPicker(entries, launch), tea.WithAltScreen()).Run()
	return err
}
