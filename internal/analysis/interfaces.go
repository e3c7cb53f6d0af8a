package analysis

import (
	"context"

	"github.com/Cyclone1070/mia/internal/conversation"
)

// runner drives the reason/act loop for one analysis run and returns the
// model's final text answer.
type runner interface {
	Run(ctx context.Context, transcript *conversation.Transcript) (string, error)
}
