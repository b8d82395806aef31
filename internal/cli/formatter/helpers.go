package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// Miles renders a distance with one decimal, or a dash for zero.
func Miles(v float64) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f mi", v)
}

// Minutes renders a duration given in minutes as "1h05" or "45m".
func Minutes(v float64) string {
	m := int(v + 0.5)
	switch {
	case m <= 0:
		return "-"
	case m < 60:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%dh%02d", m/60, m%60)
	}
}

// DayLabel renders a calendar date as "Mon Mar 2".
func DayLabel(t time.Time) string {
	return t.Format("Mon Jan 2")
}
