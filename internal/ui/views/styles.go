package views

import "github.com/charmbracelet/lipgloss"

// Shared colors. ColorPrimary matches the default accent used across
// the input border, highlights and the title.
var (
	ColorPrimary = lipgloss.Color("63")
	ColorDim     = lipgloss.Color("241")
	ColorError   = lipgloss.Color("196")
)

var (
	TitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	DisclaimerStyle = lipgloss.NewStyle().Faint(true).Italic(true)
	ImageInfoStyle  = lipgloss.NewStyle().Foreground(ColorDim)

	UserMessageStyle   = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	SystemMessageStyle = lipgloss.NewStyle().Faint(true)
	ReportBannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	CaptionStyle       = lipgloss.NewStyle().Faint(true).Italic(true)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	StatusThinkingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	StatusSearchingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	StatusDoneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StatusErrorStyle     = lipgloss.NewStyle().Foreground(ColorError)
	StatusDefaultStyle   = lipgloss.NewStyle()
	ModelNameStyle       = lipgloss.NewStyle().Foreground(ColorDim)

	PopupBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2)
)
