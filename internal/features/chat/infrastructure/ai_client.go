package infrastructure

import (
	"context"

	"innovation-engine/backend/internal/features/chat/domain"
)

// TokenStream yields text chunks from an in-flight completion.
// Recv returns io.EOF once the stream has ended cleanly.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// StreamTransform rewrites a token stream before it reaches the transport.
type StreamTransform func(ctx context.Context, src TokenStream) TokenStream

// StreamOptions configures a streaming completion.
type StreamOptions struct {
	// Transform is applied to the provider stream, if set.
	Transform StreamTransform
	// OnError observes errors raised after the stream has started. It does
	// not alter the stream; the error is still returned from Recv.
	OnError func(err error)
}

// CompletionClient defines a generic interface for text completion services.
type CompletionClient interface {
	// Complete waits for the full completion text.
	Complete(ctx context.Context, model string, messages []domain.Message) (string, error)

	// Stream starts a streaming completion. An error means no stream was opened.
	Stream(ctx context.Context, model string, messages []domain.Message, opts StreamOptions) (TokenStream, error)
}

// AIConfig holds configuration for the completion client.
type AIConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"`
	OrgID   string `json:"org_id,omitempty"`
}

// observedStream reports the first non-EOF error to an observer.
type observedStream struct {
	TokenStream
	onError  func(error)
	reported bool
}

func observe(s TokenStream, onError func(error)) TokenStream {
	if onError == nil {
		return s
	}
	return &observedStream{TokenStream: s, onError: onError}
}

func (o *observedStream) Recv() (string, error) {
	chunk, err := o.TokenStream.Recv()
	if err != nil && !isEOF(err) && !o.reported {
		o.reported = true
		o.onError(err)
	}
	return chunk, err
}
