package llm

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	CallTimeout time.Duration
}

type OpenAIProvider struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	var client openai.Client
	if cfg.BaseURL != "" {
		client = openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
		)
	} else {
		client = openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
		)
	}
	timeout := cfg.CallTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIProvider{
		client:  client,
		model:   cfg.Model,
		timeout: timeout,
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(opts.MaxTokens)
	}
	if len(opts.StopSequences) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: opts.StopSequences,
		}
	}

	response, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, "completion request failed")
	}
	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return response.Choices[0].Message.Content, nil
}
