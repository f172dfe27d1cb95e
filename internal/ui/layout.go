package ui

const (
	minWidth     = 40
	defaultWidth = 80
	maxWidth     = 140
)

func DetermineLayoutMode(cols int) LayoutMode {
	if cols < 70 {
		return LayoutNarrow
	}
	if cols >= 120 {
		return LayoutWide
	}
	return LayoutMedium
}

// ContentWidth clamps a terminal width to something readable. Unknown
// widths fall back to 80 columns.
func ContentWidth(cols int) int {
	if cols <= 0 {
		return defaultWidth
	}
	return min(maxWidth, max(minWidth, cols))
}
