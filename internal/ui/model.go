// Package ui provides the Bubbletea terminal user interface shown while a
// long capture is being cut.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Track is one confirmed track's display state.
type Track struct {
	Num        int
	Start, End int64
	Name       string
	Done       bool
}

// Model is the Bubbletea model for the cutting UI.
type Model struct {
	InputPath   string
	SampleRate  int
	TotalFrames int64 // 0 when the input length is unknown

	Position int64
	LevelDB  float64
	PeakDB   float64

	Tracks []Track

	StartTime time.Time
	Done      bool
	Err       error

	// ProgressChan carries driver events into the Bubbletea loop.
	ProgressChan chan tea.Msg

	Width  int
	Height int
}

// NewModel creates the UI model for one input file.
func NewModel(inputPath string, sampleRate int, totalFrames int64) Model {
	return Model{
		InputPath:    inputPath,
		SampleRate:   sampleRate,
		TotalFrames:  totalFrames,
		LevelDB:      -60.0,
		PeakDB:       -60.0,
		StartTime:    time.Now(),
		ProgressChan: make(chan tea.Msg, 100),
	}
}

// Init starts listening for driver events.
func (m Model) Init() tea.Cmd {
	return waitForProgress(m.ProgressChan)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case ProgressMsg:
		m.Position = msg.Frame
		m.LevelDB = msg.LevelDB
		if msg.LevelDB > m.PeakDB {
			m.PeakDB = msg.LevelDB
		}
		return m, waitForProgress(m.ProgressChan)

	case TrackStartMsg:
		m.Tracks = append(m.Tracks, Track{Num: msg.Num, Start: msg.Start, Name: msg.Name})
		return m, waitForProgress(m.ProgressChan)

	case TrackDoneMsg:
		for i := range m.Tracks {
			if m.Tracks[i].Num == msg.Num {
				m.Tracks[i].End = msg.End
				m.Tracks[i].Done = true
				return m, waitForProgress(m.ProgressChan)
			}
		}
		// An EOF-forced end can close a track the UI never saw open.
		m.Tracks = append(m.Tracks, Track{
			Num: msg.Num, Start: msg.Start, End: msg.End, Name: msg.Name, Done: true,
		})
		return m, waitForProgress(m.ProgressChan)

	case DoneMsg:
		m.Done = true
		m.Err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.Done {
		return renderSummary(m)
	}
	return renderCuttingView(m)
}

// waitForProgress creates a command that waits for driver events.
func waitForProgress(progressChan chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-progressChan
	}
}
