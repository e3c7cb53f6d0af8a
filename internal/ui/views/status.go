package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/mia/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// RenderStatus renders the status bar.
func RenderStatus(s models.State) string {
	var icon string
	var style lipgloss.Style

	switch s.StatusPhase {
	case "thinking":
		icon = s.Spinner.View()
		style = StatusThinkingStyle
		label := s.StatusMessage
		if label == "" {
			label = "Analyzing"
		}
		// Animate the dots
		dots := strings.Repeat(".", s.DotCount)
		return withModel(s, style.Render(fmt.Sprintf("%s %s%s", icon, label, dots)))
	case "searching":
		icon = s.Spinner.View()
		style = StatusSearchingStyle
	case "done":
		icon = "✔"
		style = StatusDoneStyle
	case "error":
		icon = "✗"
		style = StatusErrorStyle
	default:
		style = StatusDefaultStyle
	}

	status := "Ready"
	if s.StatusMessage != "" {
		status = fmt.Sprintf("%s %s", icon, s.StatusMessage)
	} else if s.StatusPhase != "ready" && s.StatusPhase != "" {
		status = icon
	}

	return withModel(s, style.Render(status))
}

// withModel appends the active model name to the right of the status.
func withModel(s models.State, left string) string {
	if s.CurrentModel == "" {
		return left
	}
	return fmt.Sprintf("%s  %s", left, ModelNameStyle.Render(s.CurrentModel))
}
