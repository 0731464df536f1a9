package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"innovation-engine/backend/internal/features/chat/domain"
	"innovation-engine/backend/internal/features/chat/infrastructure"
	"innovation-engine/backend/internal/metrics"
)

var tracer = otel.Tracer("innovation-engine/backend/chat")

// ChatConfig selects the models and stream pacing used by the chat service.
type ChatConfig struct {
	ClassifierModel string
	PrimaryModel    string
	SmoothingDelay  time.Duration
}

// ChatStream is a started answer stream. Variant and Category are for
// diagnostics only and are never sent to the caller.
type ChatStream struct {
	Tokens   infrastructure.TokenStream
	Variant  domain.Variant
	Category domain.Category
}

// ChatService defines the interface for the chat application service.
type ChatService interface {
	// StartChat classifies the last message, composes the domain prompt and
	// opens the answer stream. If any of that fails it opens a stream for the
	// generic fallback prompt instead. It returns once a stream is open.
	StartChat(ctx context.Context, messages []domain.Message) (*ChatStream, error)
}

// chatService is the implementation of ChatService.
type chatService struct {
	client     infrastructure.CompletionClient
	classifier *Classifier
	cfg        ChatConfig
	transform  infrastructure.StreamTransform
	logger     *zap.Logger
}

// NewChatService creates a new instance of chatService.
func NewChatService(client infrastructure.CompletionClient, cfg ChatConfig, logger *zap.Logger) (ChatService, error) {
	if client == nil {
		return nil, errors.New("chat service: completion client must not be nil")
	}
	if strings.TrimSpace(cfg.PrimaryModel) == "" {
		return nil, errors.New("chat service: primary model must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	classifier, err := NewClassifier(client, cfg.ClassifierModel, logger)
	if err != nil {
		return nil, err
	}
	return &chatService{
		client:     client,
		classifier: classifier,
		cfg:        cfg,
		transform:  infrastructure.SmoothStream(cfg.SmoothingDelay),
		logger:     logger.With(zap.String("component", "chat")),
	}, nil
}

func (s *chatService) StartChat(ctx context.Context, messages []domain.Message) (*ChatStream, error) {
	question, err := domain.Question(messages)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	stream, stage, err := s.startPrimary(ctx, messages, question)
	if err == nil {
		s.started(stream, start)
		return stream, nil
	}
	metrics.ChatUpstreamFailures.WithLabelValues(stage).Inc()
	s.logger.Error("innovation engine error, using fallback prompt", zap.String("stage", stage), zap.Error(err))

	fallback, fbErr := s.startFallback(ctx, messages)
	if fbErr != nil {
		metrics.ChatUpstreamFailures.WithLabelValues(metrics.StageFallbackStream).Inc()
		s.logger.Error("fallback stream could not be started", zap.Error(fbErr))
		return nil, &domain.FallbackError{Cause: err, Fallback: fbErr}
	}
	s.started(fallback, start)
	return fallback, nil
}

// startPrimary runs classification, composition and the primary stream. On
// failure it reports the stage that failed.
func (s *chatService) startPrimary(ctx context.Context, messages []domain.Message, question string) (*ChatStream, string, error) {
	category, err := s.classifier.Classify(ctx, question)
	if err != nil {
		return nil, metrics.StageClassify, err
	}

	final, err := ComposeMessages(category, messages)
	if err != nil {
		return nil, metrics.StageClassify, err
	}

	tokens, err := s.openStream(ctx, domain.VariantPrimary, category, final)
	if err != nil {
		return nil, metrics.StagePrimaryStream, err
	}
	return &ChatStream{Tokens: tokens, Variant: domain.VariantPrimary, Category: category}, "", nil
}

func (s *chatService) startFallback(ctx context.Context, messages []domain.Message) (*ChatStream, error) {
	final, err := FallbackMessages(messages)
	if err != nil {
		return nil, err
	}
	tokens, err := s.openStream(ctx, domain.VariantFallback, "", final)
	if err != nil {
		return nil, err
	}
	return &ChatStream{Tokens: tokens, Variant: domain.VariantFallback}, nil
}

func (s *chatService) openStream(ctx context.Context, variant domain.Variant, category domain.Category, messages []domain.Message) (infrastructure.TokenStream, error) {
	ctx, span := tracer.Start(ctx, "chat.stream")
	defer span.End()
	span.SetAttributes(
		attribute.String("model", s.cfg.PrimaryModel),
		attribute.String("variant", string(variant)),
		attribute.String("category", string(category)),
	)

	tokens, err := s.client.Stream(ctx, s.cfg.PrimaryModel, messages, infrastructure.StreamOptions{
		Transform: s.transform,
		OnError:   s.streamErrorObserver(variant),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stream initiation failed")
		return nil, fmt.Errorf("open %s stream: %w", variant, err)
	}
	return tokens, nil
}

// streamErrorObserver logs errors raised after a stream has started. The
// stream itself is left as is; the caller sees it end early.
func (s *chatService) streamErrorObserver(variant domain.Variant) func(error) {
	return func(err error) {
		metrics.ChatStreamErrors.WithLabelValues(string(variant)).Inc()
		if variant == domain.VariantFallback {
			s.logger.Error("fallback error", zap.Error(err))
			return
		}
		s.logger.Error("error generating innovation", zap.Error(err))
	}
}

func (s *chatService) started(stream *ChatStream, start time.Time) {
	metrics.ChatRequests.WithLabelValues(string(stream.Variant)).Inc()
	metrics.ChatStreamInitiation.WithLabelValues(string(stream.Variant)).Observe(time.Since(start).Seconds())
	s.logger.Info("chat stream started",
		zap.String("variant", string(stream.Variant)),
		zap.String("category", string(stream.Category)),
		zap.Duration("elapsed", time.Since(start)))
}
