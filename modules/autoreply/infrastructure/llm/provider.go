package llm

import (
	"context"
	"errors"
)

var ErrEmptyCompletion = errors.New("empty completion")

type Options struct {
	Temperature   float64
	MaxTokens     int64
	StopSequences []string
}

// Provider is the text-generation collaborator. It is treated as a
// pure function over the prompt; callers own timeouts and map any
// failure to their own generation-failed handling.
type Provider interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}
