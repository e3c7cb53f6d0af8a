// Package orchestrator drives the reason/act loop between the model provider
// and the registered tools for a single analysis run.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Cyclone1070/mia/internal/conversation"
	"github.com/Cyclone1070/mia/internal/provider/model"
	"github.com/Cyclone1070/mia/internal/tool"
)

// ErrIterationLimit is returned when the loop hits its reasoning step cap
// without the model producing a final text answer.
var ErrIterationLimit = errors.New("max iterations reached")

type state int

const (
	stateReason state = iota
	stateAct
	stateDone
)

// Options bounds a run.
type Options struct {
	// MaxIterations caps the number of reasoning steps (provider calls).
	MaxIterations int

	// ActConcurrency caps how many tool calls execute in parallel.
	ActConcurrency int

	// Generation is forwarded to the provider on every reasoning step.
	Generation *model.GenerateConfig
}

// Orchestrator runs the loop for one analysis: ask the model, execute any
// tools it requests, feed the results back, and repeat until the model
// answers in plain text or the iteration cap is hit.
type Orchestrator struct {
	provider model.Provider
	registry *tool.Registry
	events   chan<- Event
	opts     Options
}

// New creates an orchestrator. events may be nil when no UI is attached.
func New(provider model.Provider, registry *tool.Registry, events chan<- Event, opts Options) *Orchestrator {
	if opts.ActConcurrency < 1 {
		opts.ActConcurrency = 1
	}
	return &Orchestrator{
		provider: provider,
		registry: registry,
		events:   events,
		opts:     opts,
	}
}

// Run drives the loop until the model produces a final text answer, which is
// returned. Every message generated along the way is appended to transcript
// in order: assistant turns as they arrive, tool results in the order the
// model requested them. A cancelled context aborts the run with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, transcript *conversation.Transcript) (string, error) {
	defer o.emit(DoneEvent{})

	iterations := 0
	for current := stateReason; current != stateDone; {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		switch current {
		case stateReason:
			if iterations >= o.opts.MaxIterations {
				return "", fmt.Errorf("%w (%d)", ErrIterationLimit, o.opts.MaxIterations)
			}
			iterations++

			msg, err := o.reason(ctx, transcript)
			if err != nil {
				return "", err
			}
			if msg.HasToolCalls() {
				current = stateAct
			} else {
				current = stateDone
			}

		case stateAct:
			if err := o.act(ctx, transcript); err != nil {
				return "", err
			}
			current = stateReason
		}
	}

	final, ok := transcript.LastAssistant()
	if !ok {
		return "", fmt.Errorf("loop finished without an assistant message")
	}
	return final.Text, nil
}

// reason asks the provider for the next assistant turn and appends it.
// Provider failures are fatal to the run.
func (o *Orchestrator) reason(ctx context.Context, transcript *conversation.Transcript) (conversation.AssistantMessage, error) {
	o.emit(ThinkingEvent{})

	resp, err := o.provider.Generate(ctx, &model.GenerateRequest{
		History: transcript.Messages(),
		Tools:   toToolDefinitions(o.registry.Declarations()),
		Config:  o.opts.Generation,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return conversation.AssistantMessage{}, ctxErr
		}
		return conversation.AssistantMessage{}, fmt.Errorf("provider.Generate: %w", err)
	}

	transcript.Append(resp.Message)
	if resp.Message.Text != "" {
		o.emit(TextEvent{Text: resp.Message.Text})
	}
	return resp.Message, nil
}

// act executes every pending tool call. Calls run concurrently, but results
// are appended to the transcript in request order after all of them finish.
func (o *Orchestrator) act(ctx context.Context, transcript *conversation.Transcript) error {
	calls := transcript.PendingCalls()
	results := make([]conversation.ToolResultMessage, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.ActConcurrency)
	for i, call := range calls {
		g.Go(func() error {
			result, err := o.execute(gctx, call)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, result := range results {
		transcript.Append(result)
	}
	return nil
}

// execute runs a single tool call. Tool failures and unknown tool names are
// converted into failed results for the model to read; only context
// cancellation is returned as an error.
func (o *Orchestrator) execute(ctx context.Context, call conversation.ToolCall) (conversation.ToolResultMessage, error) {
	t, ok := o.registry.Get(call.Name)
	if !ok {
		declsJSON, _ := json.MarshalIndent(o.registry.Declarations(), "", "  ")
		return conversation.ToolResultMessage{
			CallID:  call.ID,
			Name:    call.Name,
			Content: fmt.Sprintf("Error: tool %q does not exist.\n\nAvailable tools:\n%s", call.Name, declsJSON),
			IsError: true,
		}, nil
	}

	o.emit(ToolStartEvent{Name: call.Name, Query: queryArg(call.Args)})

	out, err := t.Execute(ctx, call.Args)
	if err != nil {
		o.emit(ToolEndEvent{Name: call.Name, Failed: true})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return conversation.ToolResultMessage{}, ctxErr
		}
		return conversation.ToolResultMessage{
			CallID:  call.ID,
			Name:    call.Name,
			Content: fmt.Sprintf("%s failed: %s", call.Name, err),
			IsError: true,
		}, nil
	}

	o.emit(ToolEndEvent{Name: call.Name})
	return conversation.ToolResultMessage{
		CallID:  call.ID,
		Name:    call.Name,
		Content: out,
	}, nil
}

func (o *Orchestrator) emit(e Event) {
	if o.events != nil {
		o.events <- e
	}
}

// queryArg extracts the conventional query argument for status display.
func queryArg(args map[string]any) string {
	q, _ := args["query"].(string)
	return q
}
