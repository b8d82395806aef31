package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// FocusStyle colors a week focus by training load: quality phases warm,
// easing phases cool.
func FocusStyle(f domain.Focus) lipgloss.Style {
	switch f {
	case domain.FocusBuild, domain.FocusSpecific, domain.FocusSharpening:
		return StyleYellow
	case domain.FocusTaper:
		return StylePurple
	case domain.FocusRecovery:
		return StyleBlue
	case domain.FocusBase:
		return StyleGreen
	default:
		return StyleFg
	}
}

// IntensityStyle colors an intensity bucket.
func IntensityStyle(bucket string) lipgloss.Style {
	switch bucket {
	case domain.BucketHard:
		return StyleRed
	case domain.BucketModerate:
		return StyleYellow
	case domain.BucketEasy:
		return StyleGreen
	default:
		return StyleDim
	}
}

// SourceBadge marks where a session's text came from.
func SourceBadge(s domain.TextSource) string {
	switch s {
	case domain.SourceProvider:
		return StyleGreen.Render("● provider")
	case domain.SourceFallback:
		return StyleYellow.Render("○ fallback")
	case domain.SourceRest:
		return StyleDim.Render("· rest")
	default:
		return StyleDim.Render(string(s))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
