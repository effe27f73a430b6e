package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/trackcutter/internal/sink"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A40000"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	doneIcon   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
	activeIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#A40000")).
			Padding(0, 1).
			Width(60)
)

// renderCuttingView renders the in-progress view: header, confirmed
// tracks, and the live position box.
func renderCuttingView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	for _, t := range m.Tracks {
		b.WriteString(renderTrack(m, t))
		b.WriteString("\n")
	}
	if len(m.Tracks) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(renderPositionBox(m))
	return b.String()
}

func renderHeader(m Model) string {
	title := titleStyle.Render("Trackcutter 🎚")
	subtitle := subtitleStyle.Render(fmt.Sprintf("Cutting %s", filepath.Base(m.InputPath)))
	return title + "\n" + subtitle
}

func renderTrack(m Model, t Track) string {
	label := t.Name
	if label == "" {
		label = fmt.Sprintf("track %d", t.Num)
	}
	if t.Done {
		return fmt.Sprintf(" %s %-30s %s – %s", doneIcon, label,
			sink.Timecode(t.Start, m.SampleRate), sink.Timecode(t.End, m.SampleRate))
	}
	return fmt.Sprintf(" %s %-30s %s – …", activeIcon, label,
		sink.Timecode(t.Start, m.SampleRate))
}

func renderPositionBox(m Model) string {
	var content strings.Builder

	fmt.Fprintf(&content, "Position: %s", sink.Timecode(m.Position, m.SampleRate))
	if m.TotalFrames > 0 {
		progress := float64(m.Position) / float64(m.TotalFrames)
		if progress > 1.0 {
			progress = 1.0
		}
		content.WriteString("\n")
		content.WriteString(renderProgressBar(progress, 40))
	}
	fmt.Fprintf(&content, "\n📊 Level: %.1f dB | Peak: %.1f dB", m.LevelDB, m.PeakDB)
	fmt.Fprintf(&content, "\n⏱  Elapsed: %.1fs", time.Since(m.StartTime).Seconds())

	return boxStyle.Render(content.String())
}

func renderProgressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("%s %d%%", bar, int(progress*100))
}

// renderSummary renders the final view after the run completes.
func renderSummary(m Model) string {
	var b strings.Builder

	if m.Err != nil {
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A40000")).
			Render("✗ Cutting failed")
		b.WriteString(header)
		b.WriteString("\n")
		fmt.Fprintf(&b, "   %v\n", m.Err)
		return b.String()
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("✨ Cutting complete")
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, t := range m.Tracks {
		b.WriteString(renderTrack(m, t))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d track(s) found in %s\n", len(m.Tracks), filepath.Base(m.InputPath))
	return b.String()
}
