package application

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"innovation-engine/backend/internal/features/chat/domain"
	"innovation-engine/backend/internal/features/chat/infrastructure"
)

const (
	testClassifierModel = "fast-model"
	testPrimaryModel    = "primary-model"
)

type completeCall struct {
	model    string
	messages []domain.Message
}

type streamCall struct {
	model    string
	messages []domain.Message
	opts     infrastructure.StreamOptions
}

// stubCompletion is a scripted CompletionClient.
type stubCompletion struct {
	classification string
	completeErr    error
	streamErrs     []error // consumed one per Stream call
	chunks         []string
	midStreamErr   error

	completes []completeCall
	streams   []streamCall
}

func (s *stubCompletion) Complete(_ context.Context, model string, messages []domain.Message) (string, error) {
	s.completes = append(s.completes, completeCall{model: model, messages: messages})
	if s.completeErr != nil {
		return "", s.completeErr
	}
	return s.classification, nil
}

func (s *stubCompletion) Stream(ctx context.Context, model string, messages []domain.Message, opts infrastructure.StreamOptions) (infrastructure.TokenStream, error) {
	s.streams = append(s.streams, streamCall{model: model, messages: messages, opts: opts})
	if len(s.streamErrs) > 0 {
		err := s.streamErrs[0]
		s.streamErrs = s.streamErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	var out infrastructure.TokenStream = &scriptedStream{chunks: append([]string(nil), s.chunks...), err: s.midStreamErr, onError: opts.OnError}
	if opts.Transform != nil {
		out = opts.Transform(ctx, out)
	}
	return out, nil
}

type scriptedStream struct {
	chunks  []string
	err     error
	onError func(error)
}

func (s *scriptedStream) Recv() (string, error) {
	if len(s.chunks) > 0 {
		c := s.chunks[0]
		s.chunks = s.chunks[1:]
		return c, nil
	}
	if s.err != nil {
		if s.onError != nil {
			s.onError(s.err)
			s.onError = nil
		}
		return "", s.err
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error { return nil }

func newTestService(t *testing.T, client infrastructure.CompletionClient) (ChatService, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	svc, err := NewChatService(client, ChatConfig{
		ClassifierModel: testClassifierModel,
		PrimaryModel:    testPrimaryModel,
	}, zap.New(core))
	require.NoError(t, err)
	return svc, logs
}

func readAll(t *testing.T, s infrastructure.TokenStream) (string, error) {
	t.Helper()
	var b strings.Builder
	for {
		c, err := s.Recv()
		if err != nil {
			return b.String(), err
		}
		b.WriteString(c)
	}
}

func userMessages(question string) []domain.Message {
	return []domain.Message{{Role: "user", Content: question}}
}

func TestNewChatService_ValidatesDependencies(t *testing.T) {
	_, err := NewChatService(nil, ChatConfig{ClassifierModel: "a", PrimaryModel: "b"}, nil)
	require.Error(t, err)

	_, err = NewChatService(&stubCompletion{}, ChatConfig{ClassifierModel: "a"}, nil)
	require.Error(t, err)

	_, err = NewChatService(&stubCompletion{}, ChatConfig{PrimaryModel: "b"}, nil)
	require.Error(t, err)
}

func TestStartChat_MedicalQuestionUsesDomainPrompt(t *testing.T) {
	const question = "How can hospitals reduce wait times?"
	client := &stubCompletion{classification: "Medical", chunks: []string{"Triage ", "kiosks."}}
	svc, _ := newTestService(t, client)

	stream, err := svc.StartChat(context.Background(), userMessages(question))
	require.NoError(t, err)
	require.Equal(t, domain.VariantPrimary, stream.Variant)
	require.Equal(t, domain.CategoryMedical, stream.Category)

	// classification: one call on the fast model carrying the question
	require.Len(t, client.completes, 1)
	require.Equal(t, testClassifierModel, client.completes[0].model)
	require.Len(t, client.completes[0].messages, 1)
	require.True(t, strings.HasSuffix(client.completes[0].messages[0].Content, question))

	// generation: one stream on the primary model with the composed prompt
	require.Len(t, client.streams, 1)
	call := client.streams[0]
	require.Equal(t, testPrimaryModel, call.model)
	require.Len(t, call.messages, 1)
	prompt := call.messages[0].Content
	require.Equal(t, "user", call.messages[0].Role)
	require.Contains(t, prompt, domain.TemplateFor(domain.CategoryMedical))
	require.Contains(t, prompt, question)
	require.Contains(t, prompt, domain.GuidanceFor(domain.CategoryMedical))
	require.NotNil(t, call.opts.Transform)
	require.NotNil(t, call.opts.OnError)

	text, err := readAll(t, stream.Tokens)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, "Triage kiosks.", text)
}

func TestStartChat_ArtsIsNotOther(t *testing.T) {
	client := &stubCompletion{classification: "Arts"}
	svc, _ := newTestService(t, client)

	stream, err := svc.StartChat(context.Background(), userMessages("Ideas for a mural?"))
	require.NoError(t, err)
	require.Equal(t, domain.CategoryArts, stream.Category)
	require.Contains(t, client.streams[0].messages[0].Content, domain.TemplateFor(domain.CategoryArts))
}

func TestStartChat_UnparseableClassificationUsesOther(t *testing.T) {
	for _, raw := range []string{"I don't know", "", "medical", "Medical and Technical"} {
		client := &stubCompletion{classification: raw}
		svc, _ := newTestService(t, client)

		stream, err := svc.StartChat(context.Background(), userMessages("question"))
		require.NoError(t, err, "raw=%q", raw)
		require.Equal(t, domain.VariantPrimary, stream.Variant)
		require.Equal(t, domain.CategoryOther, stream.Category, "raw=%q", raw)
		require.Contains(t, client.streams[0].messages[0].Content, domain.TemplateFor(domain.CategoryOther))
	}
}

func TestStartChat_ClassifierFailureFallsBack(t *testing.T) {
	const question = "How can hospitals reduce wait times?"
	netErr := errors.New("dial tcp: connection refused")
	client := &stubCompletion{completeErr: netErr, chunks: []string{"fallback answer"}}
	svc, logs := newTestService(t, client)

	stream, err := svc.StartChat(context.Background(), userMessages(question))
	require.NoError(t, err)
	require.Equal(t, domain.VariantFallback, stream.Variant)

	require.Len(t, client.streams, 1, "exactly one stream is opened")
	call := client.streams[0]
	require.Equal(t, testPrimaryModel, call.model)
	require.Len(t, call.messages, 1)
	require.Equal(t, "Generate a creative and innovative solution to this problem: "+question, call.messages[0].Content)

	require.Equal(t, 1, logs.FilterMessageSnippet("using fallback prompt").Len())

	text, err := readAll(t, stream.Tokens)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, "fallback answer", text)
}

func TestStartChat_PrimaryStreamFailureFallsBack(t *testing.T) {
	client := &stubCompletion{
		classification: "Business",
		streamErrs:     []error{errors.New("503 overloaded"), nil},
	}
	svc, _ := newTestService(t, client)

	stream, err := svc.StartChat(context.Background(), userMessages("q"))
	require.NoError(t, err)
	require.Equal(t, domain.VariantFallback, stream.Variant)
	require.Len(t, client.streams, 2)
	require.Contains(t, client.streams[0].messages[0].Content, domain.TemplateFor(domain.CategoryBusiness))
	require.Equal(t, "Generate a creative and innovative solution to this problem: q", client.streams[1].messages[0].Content)
	require.Equal(t, testPrimaryModel, client.streams[1].model)
}

func TestStartChat_FallbackFailureIsReturned(t *testing.T) {
	classifyErr := errors.New("classify down")
	fallbackErr := errors.New("provider unreachable")
	client := &stubCompletion{completeErr: classifyErr, streamErrs: []error{fallbackErr}}
	svc, logs := newTestService(t, client)

	stream, err := svc.StartChat(context.Background(), userMessages("q"))
	require.Nil(t, stream)
	require.Error(t, err)

	var fbErr *domain.FallbackError
	require.ErrorAs(t, err, &fbErr)
	require.ErrorIs(t, err, fallbackErr)
	require.ErrorIs(t, err, classifyErr)
	require.Equal(t, 1, logs.FilterMessage("fallback stream could not be started").Len())
}

func TestStartChat_KeepsHistoryAndReplacesLastMessage(t *testing.T) {
	msgs := []domain.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
		{Role: "user", Content: "follow up about solar panels"},
	}
	original := append([]domain.Message(nil), msgs...)
	client := &stubCompletion{classification: "Environment"}
	svc, _ := newTestService(t, client)

	_, err := svc.StartChat(context.Background(), msgs)
	require.NoError(t, err)
	require.Equal(t, original, msgs, "input must not be mutated")

	sent := client.streams[0].messages
	require.Len(t, sent, 4)
	require.Equal(t, msgs[:3], sent[:3])
	require.Contains(t, sent[3].Content, "Problem: follow up about solar panels")
	require.True(t, strings.HasSuffix(client.completes[0].messages[0].Content, "follow up about solar panels"))
}

func TestStartChat_SingleMessageProducesSingleMessage(t *testing.T) {
	client := &stubCompletion{classification: "Social"}
	svc, _ := newTestService(t, client)

	_, err := svc.StartChat(context.Background(), userMessages("only"))
	require.NoError(t, err)
	require.Len(t, client.streams[0].messages, 1)
	require.True(t, strings.HasSuffix(client.completes[0].messages[0].Content, "only"))
}

func TestStartChat_EmptyMessages(t *testing.T) {
	client := &stubCompletion{}
	svc, _ := newTestService(t, client)

	_, err := svc.StartChat(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrNoMessages)
	require.Empty(t, client.completes)
	require.Empty(t, client.streams)
}

func TestStartChat_MidStreamErrorIsLoggedAndTruncates(t *testing.T) {
	broken := errors.New("upstream reset")
	client := &stubCompletion{classification: "Technical", chunks: []string{"partial "}, midStreamErr: broken}
	svc, logs := newTestService(t, client)

	stream, err := svc.StartChat(context.Background(), userMessages("q"))
	require.NoError(t, err)

	text, err := readAll(t, stream.Tokens)
	require.ErrorIs(t, err, broken)
	require.Equal(t, "partial ", text)
	require.Len(t, client.streams, 1, "mid-stream errors are not retried")
	require.Equal(t, 1, logs.FilterMessage("error generating innovation").Len())
}

func TestStartChat_FuzzedClassifierOutputNeverFails(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ .:-\n"
	for i := 0; i < 1000; i++ {
		var b strings.Builder
		for j, n := 0, rng.Intn(24); j < n; j++ {
			b.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		raw := b.String()
		if domain.IsValid(strings.TrimSpace(raw)) {
			continue
		}
		client := &stubCompletion{classification: raw}
		svc, err := NewChatService(client, ChatConfig{ClassifierModel: testClassifierModel, PrimaryModel: testPrimaryModel}, zap.NewNop())
		require.NoError(t, err)

		stream, err := svc.StartChat(context.Background(), userMessages("q"))
		require.NoError(t, err, "raw=%q", raw)
		require.Equal(t, domain.CategoryOther, stream.Category, "raw=%q", raw)
	}
}
