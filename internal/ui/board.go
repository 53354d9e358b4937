package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bearanvil/trafficled/internal/speeds"
)

// SpeedClass is the colour an LED shows.
type SpeedClass int

const (
	ClassUnknown SpeedClass = iota
	ClassSlow
	ClassMedium
	ClassFast
)

func (c SpeedClass) String() string {
	switch c {
	case ClassSlow:
		return "slow"
	case ClassMedium:
		return "medium"
	case ClassFast:
		return "fast"
	default:
		return "unknown"
	}
}

func (c SpeedClass) style() lipgloss.Style {
	switch c {
	case ClassSlow:
		return SlowStyle
	case ClassMedium:
		return MediumStyle
	case ClassFast:
		return FastStyle
	default:
		return UnknownStyle
	}
}

// Cutoffs split percent flow into classes: below Slow is slow, below Medium
// is medium, anything else is fast.
type Cutoffs struct {
	Slow   uint32
	Medium uint32
}

func DefaultCutoffs() Cutoffs {
	return Cutoffs{Slow: 50, Medium: 75}
}

// Classify colours one LED from its live and typical speed.
func (c Cutoffs) Classify(live, typical uint32) SpeedClass {
	pct, ok := speeds.PercentFlow(live, typical)
	switch {
	case !ok:
		return ClassUnknown
	case pct < c.Slow:
		return ClassSlow
	case pct < c.Medium:
		return ClassMedium
	default:
		return ClassFast
	}
}

// Summary counts LEDs per class.
type Summary struct {
	Slow, Medium, Fast, Unknown int
}

func (s Summary) Total() int { return s.Slow + s.Medium + s.Fast + s.Unknown }

// Board renders one direction's LEDs.
type Board struct {
	Title   string
	Live    speeds.Table
	Typical speeds.Table
	Cutoffs Cutoffs
	Width   int
}

// cellWidth fits "0326 100%" plus a separating space.
const cellWidth = 10

// Summary classifies every LED with a live speed.
func (b *Board) Summary() Summary {
	var s Summary
	for _, led := range b.Live.LEDs() {
		switch b.class(led) {
		case ClassSlow:
			s.Slow++
		case ClassMedium:
			s.Medium++
		case ClassFast:
			s.Fast++
		default:
			s.Unknown++
		}
	}
	return s
}

// A missing typical speed reads as 0, which classifies as unknown.
func (b *Board) class(led uint32) SpeedClass {
	return b.Cutoffs.Classify(b.Live[led], b.Typical[led])
}

func (b *Board) cell(led uint32) string {
	text := "  --"
	if pct, ok := speeds.PercentFlow(b.Live[led], b.Typical[led]); ok {
		text = fmt.Sprintf("%3d%%", pct)
	}
	return b.class(led).style().Render(fmt.Sprintf("%04d %s", led, text))
}

// Render returns the board as a bordered grid.
func (b *Board) Render() string {
	width := max(b.Width, MinTerminalWidth)
	perRow := max((width-6)/cellWidth, 1)

	s := b.Summary()
	title := HeaderTitleStyle.Render(strings.ToUpper(b.Title))
	counts := StatusStyle.Render(fmt.Sprintf("%d LEDs  ", s.Total())) +
		SlowStyle.Render(fmt.Sprintf("slow %d", s.Slow)) + "  " +
		MediumStyle.Render(fmt.Sprintf("medium %d", s.Medium)) + "  " +
		FastStyle.Render(fmt.Sprintf("fast %d", s.Fast)) + "  " +
		UnknownStyle.Render(fmt.Sprintf("unknown %d", s.Unknown))

	var rows []string
	var row []string
	for _, led := range b.Live.LEDs() {
		row = append(row, b.cell(led))
		if len(row) == perRow {
			rows = append(rows, "  "+strings.Join(row, " "))
			row = row[:0]
		}
	}
	if len(row) > 0 {
		rows = append(rows, "  "+strings.Join(row, " "))
	}
	if len(rows) == 0 {
		rows = append(rows, StatusStyle.Render("no live data"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, counts, "", strings.Join(rows, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Render(content)
}

// RenderBoard renders live against typical speeds for one direction.
func RenderBoard(title string, live, typical speeds.Table, cutoffs Cutoffs, width int) string {
	b := &Board{Title: title, Live: live, Typical: typical, Cutoffs: cutoffs, Width: width}
	return b.Render()
}
