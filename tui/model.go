package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-industrial/midi"
	"go-industrial/sequencer"
	"go-industrial/song"
	"go-industrial/theme"
	"go-industrial/widgets"
)

const (
	defaultWidth   = 72
	spectrumHeight = 6
	tempoStep      = 5
	distortionStep = 10
)

// ExportFunc writes the current arrangement and returns a status line
type ExportFunc func() (string, error)

type Model struct {
	Engine   *sequencer.Engine
	Theme    *theme.Theme
	Export   ExportFunc            // optional, bound to "e"
	Ports    <-chan midi.PortEvent // optional hot-plug feed
	width    int
	status   string
	quitting bool
}

type UpdateMsg struct{}

type PortEventMsg midi.PortEvent

// portsClosedMsg stops listening once the watcher exits
type portsClosedMsg struct{}

func NewModel(engine *sequencer.Engine, th *theme.Theme) Model {
	if th == nil {
		th = theme.New(nil)
	}
	return Model{
		Engine: engine,
		Theme:  th,
		width:  defaultWidth,
	}
}

// ListenForUpdates waits for the next published snapshot
func ListenForUpdates(engine *sequencer.Engine) tea.Cmd {
	return func() tea.Msg {
		<-engine.UpdateChan
		return UpdateMsg{}
	}
}

// ListenForPorts waits for the next port change
func ListenForPorts(events <-chan midi.PortEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return portsClosedMsg{}
		}
		return PortEventMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	if m.Ports != nil {
		return tea.Batch(ListenForUpdates(m.Engine), ListenForPorts(m.Ports))
	}
	return ListenForUpdates(m.Engine)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		p := m.Engine.Params()
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Engine.Stop()
			return m, tea.Quit

		case " ", "p":
			m.Engine.TogglePlay()

		case "s":
			m.Engine.Stop()

		case "l":
			m.Engine.SetLooping(!m.Engine.Looping())

		case "+", "=":
			m.Engine.SetTempo(p.Tempo + tempoStep)

		case "-", "_":
			m.Engine.SetTempo(p.Tempo - tempoStep)

		case "]":
			m.Engine.SetIntensity(p.Intensity + 1)

		case "[":
			m.Engine.SetIntensity(p.Intensity - 1)

		case ".":
			m.Engine.SetDistortion(p.Distortion + distortionStep)

		case ",":
			m.Engine.SetDistortion(p.Distortion - distortionStep)

		case "r":
			m.Engine.SetSeed(p.Seed + 1)
			m.status = fmt.Sprintf("seed %d", p.Seed+1)

		case "e":
			if m.Export == nil {
				m.status = "export not configured"
				break
			}
			line, err := m.Export()
			if err != nil {
				m.status = "export failed: " + err.Error()
			} else {
				m.status = line
			}
		}

	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Engine)

	case PortEventMsg:
		m.status = fmt.Sprintf("port %s: %s", msg.Name, msg.Type)
		if msg.Type == midi.PortDisconnected {
			m.Engine.Pause()
		}
		return m, ListenForPorts(m.Ports)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Engine.Snapshot()
	p := m.Engine.Params()
	sym := m.Theme.Symbols
	width := max(m.width-4, 20)

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	meterStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())

	state, icon := "STOP", sym.Stopped
	switch {
	case snap.Paused:
		state, icon = "PAUSE", sym.Paused
	case snap.Playing:
		state, icon = "PLAY", sym.Playing
	}
	loop := ""
	if m.Engine.Looping() {
		loop = " " + string(sym.Loop)
	}

	header := headerStyle.Render(fmt.Sprintf("go-industrial  %c %s%s  %3dbpm  beat %7.2f",
		icon, state, loop, p.Tempo, snap.Beat))

	sections := m.Engine.Timeline().Sections()
	var strip string
	if len(sections) == 0 {
		strip = dimStyle.Render("(empty timeline)")
	} else {
		strip = widgets.Strip(sections, snap.Section, width, m.Theme.SectionColor)
		strip = playheadLine(sections, snap.Beat, width, sym.Playhead) + "\n" + strip
	}

	sectionLine := lipgloss.NewStyle().Foreground(m.Theme.SectionColor(snap.Kind)).
		Render(fmt.Sprintf("%-14s", snap.SectionName))
	barWidth := max(width-24, 10)
	progress := fmt.Sprintf("%s %s %3.0f%%\n%-14s %s %3.0f%%",
		sectionLine, meterStyle.Render(widgets.Bar(snap.SectionProgress, barWidth, sym.BarFull, sym.BarEmpty)), snap.SectionProgress*100,
		"song", meterStyle.Render(widgets.Bar(snap.TotalProgress, barWidth, sym.BarFull, sym.BarEmpty)), snap.TotalProgress*100)

	spectrum := meterStyle.Render(strings.Join(
		widgets.Spectrum(snap.Frequencies, width, spectrumHeight, sym.Levels), "\n"))

	params := fgStyle.Render(fmt.Sprintf("intensity %2d/%d  distortion %3d%%  seed %d  level %.2f",
		p.Intensity, song.MaxIntensity, p.Distortion, p.Seed, snap.AverageVolume))

	help := dimStyle.Render("space:play/pause  s:stop  l:loop  +/-:tempo  [/]:intensity  ,/.:distortion  r:reseed  e:export  q:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(strip)
	out.WriteString("\n\n")
	out.WriteString(progress)
	out.WriteString("\n\n")
	out.WriteString(spectrum)
	out.WriteString("\n\n")
	out.WriteString(params)
	out.WriteString("\n")
	if m.status != "" {
		out.WriteString(dimStyle.Render(m.status))
		out.WriteString("\n")
	}
	out.WriteString("\n")
	out.WriteString(help)
	return out.String()
}

// playheadLine marks the beat position above the section strip
func playheadLine(sections []song.Section, beat float64, width int, mark rune) string {
	total := song.TotalBeats(sections)
	if total == 0 {
		return ""
	}
	col := int(beat / float64(total) * float64(width))
	col = min(max(col, 0), width-1)
	return strings.Repeat(" ", col) + string(mark)
}
