// Package services provides rendering helpers used by the views.
package services

import (
	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown into styled terminal output.
// This abstraction allows tests to substitute a deterministic renderer.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders markdown with the glamour library.
type GlamourRenderer struct{}

// NewGlamourRenderer creates a new GlamourRenderer.
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{}
}

// Render renders content wrapped to width using the terminal's style.
func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}

// RenderMarkdown renders content, guarding against unusable widths
// before the first WindowSizeMsg has arrived.
func RenderMarkdown(content string, width int, renderer MarkdownRenderer) (string, error) {
	if width <= 0 {
		width = 80
	}
	return renderer.Render(content, width)
}
