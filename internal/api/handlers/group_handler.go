package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/fbuehler/autopost-api/internal/models"
	"github.com/fbuehler/autopost-api/internal/repository"
	"github.com/fbuehler/autopost-api/internal/transfer"
)

type GroupHandler struct {
	groups repository.GroupRepository
}

func NewGroupHandler(groups repository.GroupRepository) *GroupHandler {
	return &GroupHandler{groups: groups}
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	var req transfer.GroupCreation
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No data provided",
		})
	}
	if req.UserID == "" || req.GroupName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	id, err := h.groups.Create(c.Context(), &models.Group{
		UserID:           req.UserID,
		GroupName:        req.GroupName,
		AccountUsernames: req.AccountUsernames,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Group already exists",
			})
		}
		slog.Error("creating group failed", "group_name", req.GroupName, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to create group",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"group_id": id,
	})
}

func (h *GroupHandler) ListGroups(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id required",
		})
	}

	groups, err := h.groups.ListByUserID(c.Context(), userID)
	if err != nil {
		slog.Error("listing groups failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list groups",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"groups": groups,
		"count":  len(groups),
	})
}

func (h *GroupHandler) GetGroup(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	groupName := c.Query("group_name")
	if userID == "" || groupName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id and group_name required",
		})
	}

	group, err := h.groups.GetByName(c.Context(), userID, groupName)
	if err != nil {
		slog.Error("getting group failed", "group_name", groupName, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to get group",
		})
	}
	if group == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(group)
}

func (h *GroupHandler) AddToGroup(c *fiber.Ctx) error {
	var req transfer.GroupPatch
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No data provided",
		})
	}
	if req.UserID == "" || req.GroupName == "" || len(req.AccountUsernames) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	rows, err := h.groups.AddAccounts(c.Context(), req.UserID, req.GroupName, req.AccountUsernames)
	if err != nil {
		slog.Error("adding accounts to group failed", "group_name", req.GroupName, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to update group",
		})
	}
	if rows == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"updated": rows,
	})
}

func (h *GroupHandler) DeleteGroup(c *fiber.Ctx) error {
	var req transfer.GroupDeletion
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No data provided",
		})
	}
	if req.UserID == "" || req.GroupName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	rows, err := h.groups.Delete(c.Context(), req.UserID, req.GroupName)
	if err != nil {
		slog.Error("deleting group failed", "group_name", req.GroupName, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to delete group",
		})
	}
	if rows == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"deleted": rows,
	})
}

func (h *GroupHandler) AddGroupVideo(c *fiber.Ctx) error {
	var req transfer.GroupVideoAddition
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No data provided",
		})
	}
	if req.UserID == "" || req.GroupName == "" || req.VideoID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	group, err := h.groups.GetByName(c.Context(), req.UserID, req.GroupName)
	if err != nil {
		slog.Error("getting group failed", "group_name", req.GroupName, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to get group",
		})
	}
	if group == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	if err := h.groups.AddVideo(c.Context(), group.ID, req.VideoID); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Video already in group",
			})
		}
		slog.Error("adding video to group failed", "group_name", req.GroupName, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to add video to group",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
	})
}

func (h *GroupHandler) GroupVideos(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	groupName := c.Query("group_name")
	if userID == "" || groupName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id and group_name required",
		})
	}

	group, err := h.groups.GetByName(c.Context(), userID, groupName)
	if err != nil {
		slog.Error("getting group failed", "group_name", groupName, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to get group",
		})
	}
	if group == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	videos, err := h.groups.ListVideos(c.Context(), group.ID)
	if err != nil {
		slog.Error("listing group videos failed", "group_name", groupName, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list group videos",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"videos": videos,
		"count":  len(videos),
	})
}
