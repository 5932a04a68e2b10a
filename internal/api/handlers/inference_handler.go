package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/fbuehler/autopost-api/internal/service"
	"github.com/fbuehler/autopost-api/internal/transfer"
)

type InferenceHandler struct {
	inference service.InferenceService
}

func NewInferenceHandler(inference service.InferenceService) *InferenceHandler {
	return &InferenceHandler{inference: inference}
}

func (h *InferenceHandler) Complete(c *fiber.Ctx) error {
	var req transfer.InferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No data provided",
		})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text required",
		})
	}

	result, err := h.inference.Complete(c.Context(), req.Model, req.Text)
	if err != nil {
		slog.Error("inference failed", "model", req.Model, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Inference failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *InferenceHandler) ListModels(c *fiber.Ctx) error {
	models, err := h.inference.ListModels(c.Context())
	if err != nil {
		slog.Error("listing models failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list models",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"models": models,
	})
}
