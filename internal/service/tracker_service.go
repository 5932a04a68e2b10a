package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fbuehler/autopost-api/internal/models"
	"github.com/fbuehler/autopost-api/internal/repository"
	"github.com/fbuehler/autopost-api/internal/schedule"
	"github.com/fbuehler/autopost-api/pkg/utils"
)

// SourceBot marks uploads originating from the chat bot, which registers
// its videos before dispatching. Anything else gets an implicit Video
// record so jobs never reference an unknown asset.
const SourceBot = "telegram"

type TrackRequest struct {
	VideoID  string
	UserID   string
	Username string
	Caption  string
	Source   string
}

// TrackerService interprets a normalized dispatch outcome and applies its
// side effects: video status, job records, the schedule queue, and the
// account's upload cadence. It never fails the caller — a tracking error
// must not mask the upload result.
type TrackerService interface {
	TrackUpload(ctx context.Context, req TrackRequest, result *UploadResult)
}

type trackerService struct {
	videos   repository.VideoRepository
	accounts repository.AccountRepository
	jobs     repository.ScheduledJobRepository
	schedule ScheduleService
}

func NewTrackerService(
	videos repository.VideoRepository,
	accounts repository.AccountRepository,
	jobs repository.ScheduledJobRepository,
	schedule ScheduleService) TrackerService {
	return &trackerService{
		videos:   videos,
		accounts: accounts,
		jobs:     jobs,
		schedule: schedule,
	}
}

func (s *trackerService) TrackUpload(ctx context.Context, req TrackRequest, result *UploadResult) {
	if req.VideoID == "" {
		req.VideoID = utils.NewVideoID()
		slog.Info("no video id provided, generated one", "video_id", req.VideoID)
	}

	if req.Source != SourceBot {
		err := s.videos.Create(ctx, &models.Video{
			VideoID: req.VideoID,
			Caption: req.Caption,
			UserID:  req.UserID,
			Status:  models.VideoStatusExternal,
		})
		if err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
			slog.Error("registering external video failed", "video_id", req.VideoID, "error", err)
		}
	}

	if err := s.applyOutcome(ctx, req, result); err != nil {
		slog.Error("tracking upload failed", "video_id", req.VideoID,
			"account", req.Username, "outcome", string(result.Outcome), "error", err)
	}
}

func (s *trackerService) applyOutcome(ctx context.Context, req TrackRequest, result *UploadResult) error {
	now := schedule.FormatUTC(time.Now())

	switch result.Outcome {
	case OutcomeScheduled:
		queueKey := schedule.NormalizeInstant(result.ScheduledDate)

		if _, err := s.videos.UpdateStatus(ctx, req.VideoID, models.VideoStatusScheduled, result.ScheduledDate); err != nil {
			return err
		}

		if result.JobID != "" {
			_, err := s.jobs.Create(ctx, &models.ScheduledJob{
				JobID:           result.JobID,
				VideoID:         req.VideoID,
				AccountUsername: req.Username,
				UserID:          req.UserID,
				ScheduledDate:   result.ScheduledDate,
				QueueKey:        queueKey,
			})
			if err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
				return err
			}
		}

		if err := s.schedule.AddScheduledTime(ctx, req.UserID, req.Username, queueKey); err != nil {
			return err
		}
		return s.recalculate(ctx, req)

	case OutcomeAsync:
		if _, err := s.videos.UpdateStatus(ctx, req.VideoID, models.VideoStatusUploading, ""); err != nil {
			return err
		}

		if result.RequestID != "" {
			// Earliest point the reconciler should expect the job to
			// resolve; no queue entry is made for async uploads.
			checkTime := schedule.FormatUTC(time.Now().Add(10 * time.Minute))
			_, err := s.jobs.Create(ctx, &models.ScheduledJob{
				JobID:           result.RequestID,
				VideoID:         req.VideoID,
				AccountUsername: req.Username,
				UserID:          req.UserID,
				ScheduledDate:   checkTime,
				IsAsync:         true,
			})
			if err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
				return err
			}
		}

		if _, err := s.accounts.UpdateLastUploadTime(ctx, req.UserID, req.Username, now); err != nil {
			return err
		}
		return s.recalculate(ctx, req)

	case OutcomeSuccess, OutcomePartial:
		status := models.VideoStatusPosted
		if result.Outcome == OutcomePartial {
			status = models.VideoStatusPartial
		}
		if _, err := s.videos.UpdateStatus(ctx, req.VideoID, status, ""); err != nil {
			return err
		}

		if urls := JoinPostURLs(result.PostURLs); urls != "" {
			if _, err := s.videos.SetPostURL(ctx, req.VideoID, urls); err != nil {
				return err
			}
		}

		if _, err := s.accounts.UpdateLastUploadTime(ctx, req.UserID, req.Username, now); err != nil {
			return err
		}
		return s.recalculate(ctx, req)

	default:
		// Failed dispatch does not consume a cadence slot: no last-upload
		// update, no recompute.
		_, err := s.videos.UpdateStatus(ctx, req.VideoID, models.VideoStatusFailed, "")
		return err
	}
}

func (s *trackerService) recalculate(ctx context.Context, req TrackRequest) error {
	acc, err := s.accounts.GetByUsername(ctx, req.UserID, req.Username)
	if err != nil {
		return err
	}
	if acc == nil {
		slog.Warn("account not found for next-upload recompute", "username", req.Username)
		return nil
	}

	err = s.schedule.RecalculateNextUpload(ctx, acc)
	if errors.Is(err, schedule.ErrAutopostingDisabled) {
		return nil
	}
	return err
}
