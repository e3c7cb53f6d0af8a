package views

import (
	"strings"

	"github.com/Cyclone1070/mia/internal/ui/models"
	"github.com/Cyclone1070/mia/internal/ui/services"
)

const reportBanner = "📋 Analysis Results"

// reportCaption accompanies every rendered report.
const reportCaption = "Note: This analysis is generated by AI and should be reviewed by a qualified healthcare professional."

// RenderChat renders the transcript viewport.
func RenderChat(s models.State, renderer services.MarkdownRenderer) string {
	if len(s.Messages) == 0 {
		return "No analyses yet. Enter the path to a medical image to begin."
	}
	return s.Viewport.View()
}

// FormatChatContent formats the transcript for the viewport.
func FormatChatContent(messages []models.Message, width int, renderer services.MarkdownRenderer) string {
	var lines []string
	for _, msg := range messages {
		switch msg.Role {
		case "user":
			lines = append(lines, UserMessageStyle.Render("You: "+msg.Content))
		case "report":
			lines = append(lines, ReportBannerStyle.Render(reportBanner))
			rendered, err := services.RenderMarkdown(msg.Content, width, renderer)
			if err != nil {
				// Fall back to the raw markdown
				lines = append(lines, msg.Content)
			} else {
				lines = append(lines, rendered)
			}
			lines = append(lines, CaptionStyle.Render(reportCaption))
		default:
			lines = append(lines, SystemMessageStyle.Render(msg.Content))
		}
		lines = append(lines, "") // Spacing between entries
	}
	return strings.Join(lines, "\n")
}
