// Package adapter bridges tool invocations requested by the completion
// provider to the external tool executor, and maps executor outcomes back
// into transcript-ready results.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	chat "github.com/medifinder/chat/internal/chat/models"
)

// Invoker dispatches one tool invocation. A failed invocation is reported
// as a *ToolError, never as a fault that escapes into the orchestrator.
type Invoker interface {
	Invoke(ctx context.Context, name string, args map[string]any) (string, *chat.ToolError)
}

// ToolExecutor is the executor-side contract the adapter delegates to.
// Satisfied by executor.Client.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
}

// ExecutorAdapter translates between the provider's tool-use requests and
// the tool executor. It passes arguments through unmodified and applies no
// caching or retry; retry policy belongs to the executor.
type ExecutorAdapter struct {
	exec   ToolExecutor
	logger *slog.Logger
}

// NewExecutorAdapter creates an adapter over the given executor.
func NewExecutorAdapter(exec ToolExecutor, logger *slog.Logger) *ExecutorAdapter {
	return &ExecutorAdapter{exec: exec, logger: logger}
}

// Invoke executes a single tool call. Executor faults of any kind,
// including panics, are captured as ToolError values.
func (a *ExecutorAdapter) Invoke(ctx context.Context, name string, args map[string]any) (result string, toolErr *chat.ToolError) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("tool executor panicked", "tool", name, "panic", r)
			result = ""
			toolErr = &chat.ToolError{
				Kind:    chat.ToolErrorKindExecution,
				Message: fmt.Sprintf("executor panic: %v", r),
			}
		}
	}()

	out, err := a.exec.Execute(ctx, name, args)
	if err != nil {
		a.logger.Warn("tool invocation failed", "tool", name, "error", err)
		return "", classify(err)
	}

	return out, nil
}

// classify maps executor errors onto the tool error taxonomy.
func classify(err error) *chat.ToolError {
	kind := chat.ToolErrorKindExecution
	if errors.Is(err, context.DeadlineExceeded) {
		kind = chat.ToolErrorKindTimeout
	}
	return &chat.ToolError{Kind: kind, Message: err.Error()}
}

var _ Invoker = (*ExecutorAdapter)(nil)
