package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderVolumeBar renders a week's volume relative to the plan's peak week,
// e.g. "████████░░ 42.0 mi". The bar takes the week's focus color.
func RenderVolumeBar(volume, peak float64, width int, style func(string) string) string {
	if width < 2 {
		width = 2
	}
	frac := 0.0
	if peak > 0 {
		frac = min(max(volume/peak, 0), 1)
	}
	filled := int(frac*float64(width) + 0.5)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	if style != nil {
		bar = style(bar)
	}
	return fmt.Sprintf("%s %5.1f mi", bar, volume)
}
