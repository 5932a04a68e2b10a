package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/fbuehler/autopost-api/internal/metrics"
	"github.com/fbuehler/autopost-api/internal/service"
	"github.com/fbuehler/autopost-api/internal/uploadpost"
	"github.com/fbuehler/autopost-api/pkg/utils"
)

type UploadHandler struct {
	client    uploadpost.Client
	assets    *service.AssetService
	schedules service.ScheduleService
	tracker   service.TrackerService
	collector *metrics.Collector
}

func NewUploadHandler(
	client uploadpost.Client,
	assets *service.AssetService,
	schedules service.ScheduleService,
	tracker service.TrackerService,
	collector *metrics.Collector) *UploadHandler {
	return &UploadHandler{
		client:    client,
		assets:    assets,
		schedules: schedules,
		tracker:   tracker,
		collector: collector,
	}
}

// UploadVideo dispatches one video to the publishing service. The raw
// response is normalized to a single outcome before it reaches the caller,
// and tracking side effects run regardless of how the dispatch went.
func (h *UploadHandler) UploadVideo(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No video file provided",
		})
	}

	title := c.FormValue("title")
	user := c.FormValue("user")
	platformsRaw := c.FormValue("platforms")
	scheduledDate := c.FormValue("scheduled_date")
	userID := c.FormValue("user_id")
	videoID := c.FormValue("video_id")
	caption := c.FormValue("caption")

	if title == "" || user == "" || platformsRaw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields: video, title, user, platforms are required",
		})
	}

	var platforms []string
	if err := json.Unmarshal([]byte(platformsRaw), &platforms); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": `Invalid platforms format. Use JSON array like ["tiktok"]`,
		})
	}

	params := make(map[string]string)
	if raw := c.FormValue("params"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid params format: " + err.Error(),
			})
		}
	}

	if scheduledDate == "auto" {
		if userID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id required for auto scheduling",
			})
		}
		scheduledDate = h.schedules.ResolveAutoSchedule(c.Context(), userID, user)
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Error("opening uploaded file failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read video file",
		})
	}
	defer file.Close()

	data := make([]byte, 0, fileHeader.Size)
	buf := bytes.NewBuffer(data)
	if _, err := buf.ReadFrom(file); err != nil {
		slog.Error("reading uploaded file failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read video file",
		})
	}

	// Stage the asset in R2 for the duration of the dispatch, mirroring
	// the bot's shared-bucket handoff.
	key := fmt.Sprintf("uploads/%s-%s", utils.NewVideoID(), fileHeader.Filename)
	if _, err := h.assets.Store(c.Context(), key, buf.Bytes()); err != nil {
		if errors.Is(err, service.ErrNotVideo) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "File is not a supported video format",
			})
		}
		slog.Error("staging asset failed", "key", key, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to store video file",
		})
	}
	defer func() {
		if err := h.assets.Delete(c.Context(), key); err != nil {
			slog.Warn("deleting staged asset failed", "key", key, "error", err)
		}
	}()

	req := service.TrackRequest{
		VideoID:  videoID,
		UserID:   userID,
		Username: user,
		Caption:  caption,
		Source:   c.Get("X-Source"),
	}

	raw, err := h.client.UploadVideo(c.Context(), uploadpost.UploadRequest{
		Video:         bytes.NewReader(buf.Bytes()),
		FileName:      fileHeader.Filename,
		Title:         title,
		User:          user,
		Platforms:     platforms,
		ScheduledDate: scheduledDate,
		Params:        params,
	})
	if err != nil {
		slog.Error("dispatch failed", "user", user, "error", err)
		result := &service.UploadResult{
			Outcome:    service.OutcomeFailure,
			StatusCode: fiber.StatusInternalServerError,
			Error:      "Upload failed",
		}
		h.collector.ObserveDispatch(string(result.Outcome))
		h.tracker.TrackUpload(c.Context(), req, result)
		return c.Status(result.StatusCode).JSON(result)
	}

	result := service.ParseUploadResponse(raw)
	h.collector.ObserveDispatch(string(result.Outcome))
	h.tracker.TrackUpload(c.Context(), req, result)

	return c.Status(result.StatusCode).JSON(result)
}
