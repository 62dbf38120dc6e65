package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nirmaan-ai/backend/internal/query"
	"github.com/nirmaan-ai/backend/pkg/logger"
)

type AnswerEngine interface {
	Answer(ctx context.Context, question string) (*query.Answer, error)
}

type AskHandler struct {
	engine AnswerEngine
}

func NewAskHandler(engine AnswerEngine) *AskHandler {
	return &AskHandler{engine: engine}
}

// HandleAsk answers POST /ask. Success returns {english, telugu}; any
// pipeline failure collapses into a single {detail} error body.
func (h *AskHandler) HandleAsk(c *fiber.Ctx) error {
	var req struct {
		Question string `json:"question"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "question is required",
		})
	}

	answer, err := h.engine.Answer(c.Context(), req.Question)
	if err != nil {
		logger.Error("Failed to answer question", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": err.Error(),
		})
	}

	return c.JSON(answer)
}
