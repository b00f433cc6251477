package gemini

import (
	"io"
	"iter"

	chat "github.com/medifinder/chat/internal/chat/models"
	provider "github.com/medifinder/chat/internal/provider/models"
	"google.golang.org/genai"
)

// geminiStream adapts the SDK's pull-free response sequence to the
// provider.ResponseStream contract. Each SDK response may carry several
// parts; pending holds the ones not yet handed to the caller.
type geminiStream struct {
	next    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	pending []provider.StreamChunk
	done    bool
}

func newGeminiStream(seq iter.Seq2[*genai.GenerateContentResponse, error]) *geminiStream {
	next, stop := iter.Pull2(seq)
	return &geminiStream{next: next, stop: stop}
}

// Next returns the next chunk, or io.EOF once the model's turn is complete.
func (s *geminiStream) Next() (*provider.StreamChunk, error) {
	for {
		if len(s.pending) > 0 {
			chunk := s.pending[0]
			s.pending = s.pending[1:]
			return &chunk, nil
		}

		if s.done {
			return nil, io.EOF
		}

		resp, err, ok := s.next()
		if !ok {
			s.done = true
			return &provider.StreamChunk{Done: true}, nil
		}
		if err != nil {
			s.done = true
			return nil, mapGeminiError(err)
		}

		if err := s.enqueue(resp); err != nil {
			s.done = true
			return nil, err
		}
	}
}

// enqueue converts one SDK response into pending chunks.
func (s *geminiStream) enqueue(resp *genai.GenerateContentResponse) error {
	if len(resp.Candidates) == 0 {
		return nil
	}

	candidate := resp.Candidates[0]

	if candidate.FinishReason == genai.FinishReasonSafety {
		return &provider.ProviderError{
			Code:       provider.ErrorCodeContentBlocked,
			Message:    "content blocked by safety filters",
			Underlying: provider.ErrContentBlocked,
		}
	}

	if candidate.Content == nil {
		return nil
	}

	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			s.pending = append(s.pending, provider.StreamChunk{Delta: part.Text})
		}
		if part.FunctionCall != nil {
			s.pending = append(s.pending, provider.StreamChunk{
				ToolUse: &chat.ToolUseFragment{
					ID:        part.FunctionCall.ID,
					Name:      part.FunctionCall.Name,
					Arguments: part.FunctionCall.Args,
				},
			})
		}
	}

	return nil
}

// Close releases the underlying sequence.
func (s *geminiStream) Close() error {
	s.stop()
	return nil
}

var _ provider.ResponseStream = (*geminiStream)(nil)
