package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"innovation-engine/backend/internal/features/chat/domain"
)

// openAIClient is the go-openai implementation of CompletionClient.
type openAIClient struct {
	client *openai.Client
	logger *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client. The API key is required.
func NewOpenAIClient(cfg AIConfig, logger *zap.Logger) (CompletionClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai api key is not set")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.OrgID != "" {
		clientCfg.OrgID = cfg.OrgID
	}
	return &openAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger.With(zap.String("component", "openai")),
	}, nil
}

// Complete sends a single chat completion request and returns the text of
// the first choice.
func (c *openAIClient) Complete(ctx context.Context, model string, messages []domain.Message) (string, error) {
	if model == "" {
		return "", errors.New("openai: model must not be empty")
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		c.logger.Debug("chat completion failed", zap.String("model", model), zap.Error(err))
		return "", fmt.Errorf("%w: create chat completion: %w", domain.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", domain.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream opens a streaming chat completion. The transform and error observer
// from opts are attached before the stream is handed back.
func (c *openAIClient) Stream(ctx context.Context, model string, messages []domain.Message, opts StreamOptions) (TokenStream, error) {
	if model == "" {
		return nil, errors.New("openai: model must not be empty")
	}
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(messages),
		Stream:   true,
	})
	if err != nil {
		c.logger.Debug("chat completion stream failed to open", zap.String("model", model), zap.Error(err))
		return nil, fmt.Errorf("%w: create chat completion stream: %w", domain.ErrUpstream, err)
	}

	var out TokenStream = &openAIStream{stream: stream}
	out = observe(out, opts.OnError)
	if opts.Transform != nil {
		out = opts.Transform(ctx, out)
	}
	return out, nil
}

func toOpenAIMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}

// openAIStream adapts a go-openai stream to TokenStream, skipping chunks
// that carry no text.
type openAIStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openAIStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", fmt.Errorf("%w: receive stream chunk: %w", domain.ErrUpstream, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if text := resp.Choices[0].Delta.Content; text != "" {
			return text, nil
		}
	}
}

func (s *openAIStream) Close() error {
	s.stream.Close()
	return nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
