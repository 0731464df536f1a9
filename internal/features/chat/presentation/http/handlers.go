package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"innovation-engine/backend/internal/features/chat/application"
	"innovation-engine/backend/internal/features/chat/domain"
	"innovation-engine/backend/internal/middleware"
)

// DefaultTimeout bounds classification, stream initiation and streaming.
const DefaultTimeout = 30 * time.Second

var registerOnce sync.Once
var registerErr error

// RegisterValidators installs the custom binding tags used by chat requests.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		registerErr = v.RegisterValidation("chatrole", func(fl validator.FieldLevel) bool {
			return domain.IsValidRole(fl.Field().String())
		})
	})
	return registerErr
}

// ChatHandler holds the chat service.
type ChatHandler struct {
	chatService application.ChatService
	timeout     time.Duration
	logger      *zap.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService application.ChatService, timeout time.Duration, logger *zap.Logger) (*ChatHandler, error) {
	if chatService == nil {
		return nil, errors.New("chat handler: chat service must not be nil")
	}
	if err := RegisterValidators(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		chatService: chatService,
		timeout:     timeout,
		logger:      logger.With(zap.String("component", "chat_handler")),
	}, nil
}

// ChatHandler handles a chat turn and streams the answer back.
func (h *ChatHandler) ChatHandler(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger := middleware.RequestLogger(c, h.logger)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	stream, err := h.chatService.StartChat(ctx, req.Messages)
	if err != nil {
		if errors.Is(err, domain.ErrNoMessages) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("chat request failed", zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate response"})
		return
	}
	defer stream.Tokens.Close()

	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header(dataStreamHeader, dataStreamVersion)
	c.Status(http.StatusOK)

	h.pump(ctx, c, stream, logger)
}

// pump copies the token stream to the response until it ends, fails or the
// context is done. A failed stream is simply cut short.
func (h *ChatHandler) pump(ctx context.Context, c *gin.Context, stream *application.ChatStream, logger *zap.Logger) {
	out := dataStreamWriter{w: c.Writer}
	if err := out.Start(); err != nil {
		logger.Warn("write stream start", zap.Error(err))
		return
	}
	c.Writer.Flush()

	for {
		if ctx.Err() != nil {
			logger.Warn("chat stream stopped", zap.Error(ctx.Err()))
			return
		}
		chunk, err := stream.Tokens.Recv()
		if errors.Is(err, io.EOF) {
			if err := out.Finish(); err != nil {
				logger.Warn("write stream finish", zap.Error(err))
			}
			c.Writer.Flush()
			return
		}
		if err != nil {
			logger.Warn("chat stream truncated",
				zap.String("variant", string(stream.Variant)),
				zap.Error(err))
			return
		}
		if err := out.Text(chunk); err != nil {
			logger.Warn("write stream chunk", zap.Error(err))
			return
		}
		c.Writer.Flush()
	}
}
