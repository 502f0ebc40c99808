// Package api is the HTTP boundary in front of the orchestrator. It only
// validates field bounds and maps outcomes to status codes; everything
// conversational happens in the core.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"taskchat/app/config"
	"taskchat/app/service/conversation"
	"taskchat/app/service/orchestrator"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

type chatRequest struct {
	UserID         string `json:"user_id" validate:"required,max=100"`
	Message        string `json:"message" validate:"required,min=1,max=10000"`
	ConversationID string `json:"conversation_id" validate:"omitempty,max=100"`
}

type chatResponse struct {
	ConversationID string                  `json:"conversation_id"`
	Response       string                  `json:"response"`
	ToolCalls      []conversation.ToolCall `json:"tool_calls"`
	ReasoningTrace orchestrator.Trace      `json:"reasoning_trace"`
}

type Service struct {
	cfg          *config.Config
	orchestrator *orchestrator.Service
	validate     *validator.Validate
	app          *fiber.App
}

func New(di *do.Injector) (*Service, error) {
	s := &Service{
		cfg:          do.MustInvoke[*config.Config](di),
		orchestrator: do.MustInvoke[*orchestrator.Service](di),
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Post("/api/chat", s.handleChat)

	return s, nil
}

func (s *Service) handleChat(c *fiber.Ctx) error {
	var body chatRequest

	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := s.validate.Struct(body); err != nil {
		field := "request"

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			field = validationErrs[0].Field()
		}

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("invalid field: %s", field),
		})
	}

	reply, err := s.orchestrator.RunTurn(c.UserContext(), orchestrator.Request{
		UserID:         body.UserID,
		Message:        body.Message,
		ConversationID: body.ConversationID,
	})
	if err != nil {
		slog.Error("Turn failed", "error", err, "user_id", body.UserID)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}

	return c.JSON(chatResponse{
		ConversationID: reply.ConversationID,
		Response:       reply.Response,
		ToolCalls:      reply.ToolCalls,
		ReasoningTrace: reply.Trace,
	})
}

// Run serves until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.app.Listen(s.cfg.Server.Addr)
	}()

	select {
	case <-ctx.Done():
		return s.app.Shutdown()
	case err := <-errCh:
		return err
	}
}
