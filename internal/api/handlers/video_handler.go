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

type VideoHandler struct {
	videos repository.VideoRepository
	jobs   repository.ScheduledJobRepository
}

func NewVideoHandler(videos repository.VideoRepository, jobs repository.ScheduledJobRepository) *VideoHandler {
	return &VideoHandler{videos: videos, jobs: jobs}
}

func (h *VideoHandler) AddVideo(c *fiber.Ctx) error {
	var req transfer.VideoCreation
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No data provided",
		})
	}
	if req.VideoID == "" || req.Caption == "" || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	err := h.videos.Create(c.Context(), &models.Video{
		VideoID:  req.VideoID,
		Caption:  req.Caption,
		UserID:   req.UserID,
		Status:   models.VideoStatusAvailable,
		Reusable: req.Reusable,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Video already exists",
			})
		}
		slog.Error("creating video failed", "video_id", req.VideoID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to create video",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      req.VideoID,
	})
}

func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	status := c.Query("status")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id required",
		})
	}

	videos, err := h.videos.ListByUserID(c.Context(), userID, status)
	if err != nil {
		slog.Error("listing videos failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list videos",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"videos": videos,
	})
}

// TrackJob registers a job that was dispatched outside this service so the
// reconciler resolves it alongside its own.
func (h *VideoHandler) TrackJob(c *fiber.Ctx) error {
	var req transfer.JobTracking
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No data provided",
		})
	}
	if req.JobID == "" || req.VideoID == "" || req.AccountUsername == "" ||
		req.UserID == "" || req.ScheduledDate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	id, err := h.jobs.Create(c.Context(), &models.ScheduledJob{
		JobID:           req.JobID,
		VideoID:         req.VideoID,
		AccountUsername: req.AccountUsername,
		UserID:          req.UserID,
		ScheduledDate:   req.ScheduledDate,
		QueueKey:        schedule.NormalizeInstant(req.ScheduledDate),
		Status:          models.JobStatusPending,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Job already tracked",
			})
		}
		slog.Error("tracking job failed", "job_id", req.JobID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to track job",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      strconv.FormatInt(id, 10),
	})
}
