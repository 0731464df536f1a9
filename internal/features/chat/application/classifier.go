package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"innovation-engine/backend/internal/features/chat/domain"
	"innovation-engine/backend/internal/features/chat/infrastructure"
	"innovation-engine/backend/internal/metrics"
)

// Classifier resolves a question to a domain category with one synchronous
// completion call.
type Classifier struct {
	client infrastructure.CompletionClient
	model  string
	logger *zap.Logger
}

// NewClassifier creates a Classifier that calls model through client.
func NewClassifier(client infrastructure.CompletionClient, model string, logger *zap.Logger) (*Classifier, error) {
	if client == nil {
		return nil, errors.New("classifier: completion client must not be nil")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("classifier: model must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{client: client, model: model, logger: logger.With(zap.String("component", "classifier"))}, nil
}

// Classify asks the model for the category of question. Output that is not
// exactly a category label resolves to domain.DefaultCategory; only failures
// of the completion call itself are returned as errors.
func (c *Classifier) Classify(ctx context.Context, question string) (domain.Category, error) {
	ctx, span := tracer.Start(ctx, "chat.classify")
	defer span.End()
	span.SetAttributes(attribute.String("model", c.model))

	raw, err := c.client.Complete(ctx, c.model, []domain.Message{
		{Role: string(domain.RoleUser), Content: BuildClassificationPrompt(question)},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classification call failed")
		return "", fmt.Errorf("classify question: %w", err)
	}

	category := domain.ParseCategory(raw)
	if !domain.IsValid(strings.TrimSpace(raw)) {
		c.logger.Debug("unrecognised classification, using default",
			zap.String("raw", raw),
			zap.String("category", string(category)))
	}
	span.SetAttributes(attribute.String("category", string(category)))
	metrics.ChatClassifications.WithLabelValues(string(category)).Inc()
	return category, nil
}

// BuildClassificationPrompt renders the classifier instruction followed by
// the literal question.
func BuildClassificationPrompt(question string) string {
	var b strings.Builder
	b.WriteString("\nAnalyze the following question and determine which domain category it falls under:\n")
	for _, d := range domain.Describe() {
		fmt.Fprintf(&b, "- %s: %s\n", d.Category, d.Description)
	}
	b.WriteString("\nReturn ONLY the category name without explanation.\n\nQuestion: \n")
	b.WriteString(question)
	return b.String()
}
