package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/mia/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

const (
	appTitle   = "🏥 Medical Imaging Diagnosis Agent"
	disclaimer = "⚠ For educational use only. All analyses must be reviewed by qualified healthcare professionals."
)

// HeaderHeight is the number of lines RenderHeader always occupies.
const HeaderHeight = 3

// RenderHeader renders the title, the disclaimer and the image panel.
func RenderHeader(s models.State) string {
	info := "No image loaded"
	if s.Image != nil {
		info = FormatImageInfo(*s.Image)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Render(appTitle),
		DisclaimerStyle.Render(disclaimer),
		ImageInfoStyle.Render(info),
	)
}

// FormatImageInfo formats the loaded image summary as a single line.
func FormatImageInfo(p models.ImagePanel) string {
	return fmt.Sprintf("%s  %s  %dx%d  %s  %s",
		p.Path,
		formatLabel(p.MIME),
		p.Width, p.Height,
		humanSize(p.ByteSize),
		shortFingerprint(p.Fingerprint),
	)
}

func formatLabel(mime string) string {
	switch mime {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPEG"
	default:
		return strings.ToUpper(strings.TrimPrefix(mime, "image/"))
	}
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		fp = fp[:12]
	}
	return "sha256:" + fp
}
