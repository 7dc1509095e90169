package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arvrtise/haus/internal/join"
)

// modalMaxWidth caps the error modal's content width.
const modalMaxWidth = 56

// ErrorModal renders an open join.Display as a centered box.
type ErrorModal struct {
	Display join.Display
}

// View renders the modal centered in width x height. A closed display
// renders as the empty string.
func (e ErrorModal) View(width, height int) string {
	if !e.Display.IsOpen {
		return ""
	}

	inner := modalMaxWidth
	if width > 0 && width-8 < inner {
		inner = max(width-8, 20)
	}

	var b strings.Builder
	b.WriteString(styleModalTitle.Render("✗ " + e.Display.Title))
	b.WriteString("\n\n")
	if e.Display.Message != "" {
		b.WriteString(lipgloss.NewStyle().Width(inner).Render(e.Display.Message))
		b.WriteString("\n\n")
	}
	b.WriteString(styleModalHint.Render("esc or enter to close"))

	return centerOverlay(styleModal.Render(b.String()), width, height)
}

// centerOverlay places content in the center of the given dimensions.
func centerOverlay(content string, width, height int) string {
	contentWidth := lipgloss.Width(content)
	contentHeight := lipgloss.Height(content)

	if width <= 0 || height <= 0 {
		return content
	}

	leftPad := 0
	if contentWidth < width {
		leftPad = (width - contentWidth) / 2
	}
	topPad := 0
	if contentHeight < height {
		topPad = (height - contentHeight) / 2
	}

	return lipgloss.NewStyle().
		PaddingLeft(leftPad).
		PaddingTop(topPad).
		Render(content)
}
