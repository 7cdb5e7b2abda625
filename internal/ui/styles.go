package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. One accent color, traffic-light colors for severity.
const (
	ColorLime     = "154" // Accent, passing probes
	ColorLimeDim  = "106" // Section headers
	ColorWhite    = "255" // Headers, important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Separators, raw output
	ColorRed      = "196" // Critical failures
	ColorYellow   = "220" // Warnings
)

// Styles holds all styles used by the report and progress renderers.
type Styles struct {
	Header      lipgloss.Style
	Section     lipgloss.Style
	Pass        lipgloss.Style
	Warning     lipgloss.Style
	Critical    lipgloss.Style
	Dim         lipgloss.Style
	Active      lipgloss.Style
	Label       lipgloss.Style
	Remediation lipgloss.Style
	Border      lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Section:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLimeDim)),
		Pass:        lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warning:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Critical:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Active:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Label:       lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Remediation: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color(ColorGray)),
		Border:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode. Rendering
// with them leaves text byte-for-byte unchanged.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:      plain,
		Section:     plain,
		Pass:        plain,
		Warning:     plain,
		Critical:    plain,
		Dim:         plain,
		Active:      plain,
		Label:       plain,
		Remediation: plain,
		Border:      plain,
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// ForSeverity returns the badge text and style for a classified
// severity ("pass", "warning" or "critical").
func (s Styles) ForSeverity(severity string) (string, lipgloss.Style) {
	switch severity {
	case "pass":
		return "PASS", s.Pass
	case "warning":
		return "WARN", s.Warning
	case "critical":
		return "FAIL", s.Critical
	default:
		return "????", s.Dim
	}
}
