package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fbuehler/autopost-api/internal/models"
	"github.com/fbuehler/autopost-api/internal/repository"
	"github.com/fbuehler/autopost-api/internal/schedule"
	"github.com/fbuehler/autopost-api/internal/transfer"
)

type AccountHandler struct {
	accounts repository.AccountRepository
}

func NewAccountHandler(accounts repository.AccountRepository) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) AddAccount(c *fiber.Ctx) error {
	var req transfer.AccountCreation
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No data provided",
		})
	}
	if req.UserID == "" || req.Username == "" || len(req.Platforms) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	acc := &models.Account{
		UserID:    req.UserID,
		Username:  req.Username,
		Platforms: req.Platforms,
		IsAI:      req.IsAI,
	}
	if req.Autoposting != nil {
		acc.Autoposting = *req.Autoposting
		fillDowntimeWindow(&acc.Autoposting)
	}

	id, err := h.accounts.Create(c.Context(), acc)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Account already exists",
			})
		}
		slog.Error("creating account failed", "username", req.Username, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to create account",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      strconv.FormatInt(id, 10),
	})
}

func (h *AccountHandler) UpdateAccount(c *fiber.Ctx) error {
	var req transfer.AccountPatch
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No data provided",
		})
	}
	if req.UserID == "" || req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	if req.Autoposting != nil {
		fillDowntimeWindow(req.Autoposting)
	}

	rows, err := h.accounts.Update(c.Context(), req.UserID, req.Username, repository.AccountUpdate{
		IsAI:        req.IsAI,
		Autoposting: req.Autoposting,
		Platforms:   req.Platforms,
	})
	if err != nil {
		slog.Error("updating account failed", "username", req.Username, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to update account",
		})
	}
	if rows == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"updated": rows,
	})
}

func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id required",
		})
	}

	accounts, err := h.accounts.ListByUserID(c.Context(), userID)
	if err != nil {
		slog.Error("listing accounts failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"accounts": accounts,
	})
}

func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	var req transfer.AccountDeletion
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No data provided",
		})
	}
	if req.UserID == "" || req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	rows, err := h.accounts.Delete(c.Context(), req.UserID, req.Username)
	if err != nil {
		slog.Error("deleting account failed", "username", req.Username, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to delete account",
		})
	}
	if rows == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"deleted": rows,
	})
}

// fillDowntimeWindow generates nightly downtime bounds when the policy
// asks for downtime hours without saying when.
func fillDowntimeWindow(policy *models.AutopostingPolicy) {
	if policy.DowntimeHours > 0 && policy.DowntimeStart == "" && policy.DowntimeEnd == "" {
		policy.DowntimeStart, policy.DowntimeEnd = schedule.GenerateDowntimeWindow(policy.DowntimeHours)
	}
}
