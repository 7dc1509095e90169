package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary     = lipgloss.Color("#00BFFF") // Cyan: primary accent
	colorSuccess     = lipgloss.Color("#00E676") // Green: devices ready
	colorDanger      = lipgloss.Color("#FF5252") // Red: errors
	colorMuted       = lipgloss.Color("#636363") // Gray: de-emphasized
	colorMutedLight  = lipgloss.Color("#8C8C8C") // Lighter gray: normal text
	colorBrightWhite = lipgloss.Color("#FFFFFF") // Pure white: emphatic text
	colorSurfaceDim  = lipgloss.Color("#181825") // Darkest surface: footer bg
)

// Header styles.
var (
	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleSubtitle = lipgloss.NewStyle().
			Foreground(colorMutedLight)
)

// Name field styles.
var (
	styleLabel = lipgloss.NewStyle().
			Foreground(colorBrightWhite).
			Bold(true)

	styleInputFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(0, 1)

	styleInputBlurred = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorMuted).
				Padding(0, 1)

	styleInputInvalid = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDanger).
				Padding(0, 1)

	styleInvalidHint = lipgloss.NewStyle().
				Foreground(colorDanger)
)

// Join button styles.
var (
	styleButton = lipgloss.NewStyle().
			Foreground(colorBrightWhite).
			Background(colorPrimary).
			Bold(true).
			Padding(0, 3)

	styleButtonFocused = styleButton.
				Underline(true)

	styleButtonDisabled = lipgloss.NewStyle().
				Foreground(colorMuted).
				Background(colorSurfaceDim).
				Padding(0, 3)

	styleLoading = lipgloss.NewStyle().
			Foreground(colorPrimary)
)

// Device status styles.
var (
	styleDevicesReady = lipgloss.NewStyle().
				Foreground(colorSuccess)

	styleDevicesPending = lipgloss.NewStyle().
				Foreground(colorMuted).
				Italic(true)
)

// Error modal styles.
var (
	styleModal = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorDanger).
			Padding(1, 2)

	styleModalTitle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleModalHint = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// Footer styles use a top border with clear key/desc contrast.
var (
	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Background(colorSurfaceDim).
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(colorMuted)

	styleFooterKey = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleFooterSep = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleFooterDesc = lipgloss.NewStyle().
			Foreground(colorMutedLight)
)
