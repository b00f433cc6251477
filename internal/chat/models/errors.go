package models

import (
	"errors"
	"fmt"
)

// ErrTurnActive is returned when a turn or reset is attempted while another
// turn is running for the same session. No state is mutated in that case.
var ErrTurnActive = errors.New("a turn is already active for this session")

// ErrEmptyMessage is returned when a turn is started with no user text.
var ErrEmptyMessage = errors.New("empty message")

// ToolErrorKind classifies tool invocation failures.
type ToolErrorKind string

const (
	ToolErrorKindExecution ToolErrorKind = "execution"
	ToolErrorKindTimeout   ToolErrorKind = "timeout"
	ToolErrorKindMalformed ToolErrorKind = "malformed_response"
)

// ToolError is a recoverable tool invocation failure. The turn continues:
// the error is recorded in the transcript so the model can react to it.
type ToolError struct {
	Kind    ToolErrorKind
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error (%s): %s", e.Kind, e.Message)
}

// ToolUseLimitError terminates a turn that exceeded the configured number
// of model/tool rounds.
type ToolUseLimitError struct {
	Rounds int
}

func (e *ToolUseLimitError) Error() string {
	return fmt.Sprintf("tool-use limit exceeded after %d rounds", e.Rounds)
}
