// Package orchestrator drives one user turn to completion: it issues model
// calls, dispatches tool calls, appends results to the transcript, and
// re-issues model calls until a terminal response is reached.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	chat "github.com/medifinder/chat/internal/chat/models"
	"github.com/medifinder/chat/internal/events"
	"github.com/medifinder/chat/internal/orchestrator/adapter"
	provider "github.com/medifinder/chat/internal/provider/models"
	"github.com/medifinder/chat/internal/transcript"
)

// Orchestrator manages the turn loop: model streaming, tool dispatch, and
// transcript updates. It borrows the transcript store for the duration of
// one turn and retains no state across turns.
type Orchestrator struct {
	provider  provider.Provider
	invoker   adapter.Invoker
	maxRounds int
	genConfig *provider.GenerateConfig
	logger    *slog.Logger
}

// New creates a new Orchestrator instance. maxRounds bounds the number of
// model-call/tool-dispatch cycles within one turn.
func New(p provider.Provider, invoker adapter.Invoker, maxRounds int, genConfig *provider.GenerateConfig, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		provider:  p,
		invoker:   invoker,
		maxRounds: maxRounds,
		genConfig: genConfig,
		logger:    logger,
	}
}

// RunTurn executes one user turn. Events are emitted in production order:
// chunk events for an assistant message always precede the tool events
// generated from that message, which precede the next round's chunks.
// The caller owns the surrounding start/end events.
func (o *Orchestrator) RunTurn(ctx context.Context, store *transcript.Store, userText string, em *events.Emitter) error {
	if strings.TrimSpace(userText) == "" {
		return chat.ErrEmptyMessage
	}

	if err := store.Append(chat.UserMessage(userText)); err != nil {
		return err
	}

	for round := 0; round < o.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		o.logger.Debug("model round started", "round", round)

		msg, err := o.completeRound(ctx, store, em)
		if err != nil {
			return err
		}

		uses := msg.ToolUses()
		if len(uses) == 0 {
			return nil
		}

		if err := o.dispatchTools(ctx, store, uses, em); err != nil {
			return err
		}
	}

	return &chat.ToolUseLimitError{Rounds: o.maxRounds}
}

// completeRound performs one model call, streaming text deltas as chunk
// events, and appends the assembled assistant message to the transcript.
func (o *Orchestrator) completeRound(ctx context.Context, store *transcript.Store, em *events.Emitter) (chat.Message, error) {
	req := &provider.GenerateRequest{
		History: store.Messages(),
		Config:  o.genConfig,
	}

	stream, err := o.provider.GenerateStream(ctx, req)
	if errors.Is(err, provider.ErrStreamingNotSupported) {
		return o.completeRoundSync(ctx, store, em, req)
	}
	if err != nil {
		return chat.Message{}, err
	}
	defer stream.Close()

	var (
		fragments []chat.Fragment
		text      strings.Builder
		total     strings.Builder
	)

	flushText := func() {
		if text.Len() > 0 {
			fragments = append(fragments, chat.TextFragment{Text: text.String()})
			text.Reset()
		}
	}

	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Cancellation leaves no partial message behind; provider
			// faults preserve validly completed text.
			if ctx.Err() != nil {
				return chat.Message{}, ctx.Err()
			}
			if total.Len() > 0 {
				flushText()
				// Preserve only the completed text. Tool uses collected
				// before the fault were never dispatched; keeping them
				// would put a dangling tool call in the history.
				var textOnly []chat.Fragment
				for _, f := range fragments {
					if _, ok := f.(chat.TextFragment); ok {
						textOnly = append(textOnly, f)
					}
				}
				partial := chat.Message{Role: chat.RoleAssistant, Fragments: textOnly}
				if appendErr := store.Append(partial); appendErr != nil {
					o.logger.Error("failed to append partial message", "error", appendErr)
				}
				return chat.Message{}, fmt.Errorf("provider failed after partial output: %w", err)
			}
			return chat.Message{}, err
		}

		if chunk.Delta != "" {
			text.WriteString(chunk.Delta)
			total.WriteString(chunk.Delta)
			em.Emit(events.ChunkEvent{Text: chunk.Delta})
		}

		if chunk.ToolUse != nil {
			flushText()
			use := *chunk.ToolUse
			if use.ID == "" {
				use.ID = uuid.NewString()
			}
			fragments = append(fragments, use)
		}

		if chunk.Done {
			break
		}
	}

	flushText()

	msg := chat.Message{Role: chat.RoleAssistant, Fragments: fragments}
	if len(fragments) == 0 {
		// A round with no output at all is a malformed provider response.
		return chat.Message{}, &provider.ProviderError{
			Code:       provider.ErrorCodeMalformed,
			Message:    "model produced no output",
			Underlying: provider.ErrMalformedResponse,
		}
	}

	if err := store.Append(msg); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

// completeRoundSync is the non-streaming fallback: chunk events are
// synthesized from the full response text.
func (o *Orchestrator) completeRoundSync(ctx context.Context, store *transcript.Store, em *events.Emitter, req *provider.GenerateRequest) (chat.Message, error) {
	resp, err := o.provider.Generate(ctx, req)
	if err != nil {
		return chat.Message{}, err
	}

	var fragments []chat.Fragment
	if resp.Text != "" {
		em.Emit(events.ChunkEvent{Text: resp.Text})
		fragments = append(fragments, chat.TextFragment{Text: resp.Text})
	}
	for _, use := range resp.ToolUses {
		if use.ID == "" {
			use.ID = uuid.NewString()
		}
		fragments = append(fragments, use)
	}

	if len(fragments) == 0 {
		return chat.Message{}, &provider.ProviderError{
			Code:       provider.ErrorCodeMalformed,
			Message:    "model produced no output",
			Underlying: provider.ErrMalformedResponse,
		}
	}

	msg := chat.Message{Role: chat.RoleAssistant, Fragments: fragments}
	if err := store.Append(msg); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

// dispatchTools invokes the recorded tool uses sequentially, in the order
// the model emitted them, so transcript append order is deterministic.
// Tool failures are recovered locally; the model reacts to them in its
// next round.
func (o *Orchestrator) dispatchTools(ctx context.Context, store *transcript.Store, uses []chat.ToolUseFragment, em *events.Emitter) error {
	for _, use := range uses {
		if err := ctx.Err(); err != nil {
			return err
		}

		em.Emit(events.ToolUseEvent{ID: use.ID, Name: use.Name, Arguments: use.Arguments})

		result, toolErr := o.invoker.Invoke(ctx, use.Name, use.Arguments)

		frag := chat.ToolResultFragment{
			ToolUseID: use.ID,
			Name:      use.Name,
			Result:    result,
			Err:       toolErr,
		}

		if toolErr != nil {
			em.Emit(events.ToolErrorEvent{ID: use.ID, Name: use.Name, Err: toolErr})
		} else {
			em.Emit(events.ToolResultEvent{ID: use.ID, Name: use.Name, Result: result})
		}

		if err := store.Append(chat.ToolMessage(frag)); err != nil {
			return err
		}
	}

	return nil
}
