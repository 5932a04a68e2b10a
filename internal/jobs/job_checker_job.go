package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/fbuehler/autopost-api/internal/metrics"
	"github.com/fbuehler/autopost-api/internal/models"
	"github.com/fbuehler/autopost-api/internal/notifier"
	"github.com/fbuehler/autopost-api/internal/repository"
	"github.com/fbuehler/autopost-api/internal/schedule"
	"github.com/fbuehler/autopost-api/internal/service"
	"github.com/fbuehler/autopost-api/internal/transfer"
	"github.com/fbuehler/autopost-api/internal/uploadpost"
)

// JobCheckerJob reconciles locally recorded publish jobs against the
// upstream service. Scheduled jobs resolve through one bounded history
// fetch per sweep; async jobs are polled individually by request id. A
// sweep never returns an error: per-item failures are logged and the job
// stays pending for the next pass.
type JobCheckerJob struct {
	jobs         repository.ScheduledJobRepository
	videos       repository.VideoRepository
	schedules    service.ScheduleService
	accounts     repository.AccountRepository
	client       uploadpost.Client
	notify       notifier.Notifier
	collector    *metrics.Collector
	historyLimit int
}

func NewJobCheckerJob(
	jobs repository.ScheduledJobRepository,
	videos repository.VideoRepository,
	accounts repository.AccountRepository,
	schedules service.ScheduleService,
	client uploadpost.Client,
	notify notifier.Notifier,
	collector *metrics.Collector,
	historyLimit int) *JobCheckerJob {
	return &JobCheckerJob{
		jobs:         jobs,
		videos:       videos,
		accounts:     accounts,
		schedules:    schedules,
		client:       client,
		notify:       notify,
		collector:    collector,
		historyLimit: historyLimit,
	}
}

// CheckJobs runs one reconciliation sweep. Safe to call from the cron
// timer and the manual trigger route concurrently; terminal job updates
// are conditional on the pending status, so overlap cannot double-complete
// a job.
func (j *JobCheckerJob) CheckJobs() {
	ctx := context.Background()
	start := time.Now()
	slog.Info("starting job checker")

	scheduled, err := j.jobs.ListPending(ctx, false)
	if err != nil {
		slog.Error("listing pending scheduled jobs failed", "error", err)
		return
	}
	async, err := j.jobs.ListPending(ctx, true)
	if err != nil {
		slog.Error("listing pending async jobs failed", "error", err)
		return
	}

	if len(scheduled) == 0 && len(async) == 0 {
		slog.Info("no pending jobs to check")
		return
	}
	slog.Info("found pending jobs", "scheduled", len(scheduled), "async", len(async))

	if len(scheduled) > 0 {
		history, err := j.client.FetchHistory(ctx, j.historyLimit)
		if err != nil {
			slog.Error("fetching upload history failed", "error", err)
		} else {
			index := make(map[string]transfer.HistoryItem, len(history))
			for _, item := range history {
				if item.JobID != "" {
					index[item.JobID] = item
				}
			}
			for _, jb := range scheduled {
				j.checkScheduledJob(ctx, jb, index)
			}
		}
	}

	for _, jb := range async {
		j.checkAsyncJob(ctx, jb)
	}

	j.pruneTouchedAccounts(ctx, scheduled, async)

	j.collector.ObserveSweep(time.Since(start))
	slog.Info("job checker completed", "duration", time.Since(start))
}

// checkScheduledJob resolves one non-async job against the history index.
// A job missing from the fetched page stays pending; the page is bounded,
// so older jobs may take several sweeps to appear.
func (j *JobCheckerJob) checkScheduledJob(ctx context.Context, jb *models.ScheduledJob, index map[string]transfer.HistoryItem) {
	item, ok := index[jb.JobID]
	if !ok {
		return
	}

	now := schedule.FormatUTC(time.Now())

	if item.Success {
		rows, err := j.jobs.UpdateStatus(ctx, jb.JobID, models.JobStatusCompleted, item.PostURL)
		if err != nil {
			slog.Error("completing job failed", "job_id", jb.JobID, "error", err)
			return
		}
		if rows == 0 {
			// Already finalized by an overlapping sweep.
			return
		}

		if _, err := j.videos.UpdateStatus(ctx, jb.VideoID, models.VideoStatusPosted, ""); err != nil {
			slog.Error("updating video status failed", "video_id", jb.VideoID, "error", err)
		}
		if item.PostURL != "" {
			if _, err := j.videos.SetPostURL(ctx, jb.VideoID, item.PostURL); err != nil {
				slog.Error("updating video post url failed", "video_id", jb.VideoID, "error", err)
			}
		}

		if err := j.schedules.RemoveScheduledTime(ctx, jb.UserID, jb.AccountUsername, jb.QueueKey); err != nil {
			slog.Error("removing queue entry failed", "job_id", jb.JobID, "error", err)
		}
		if _, err := j.accounts.UpdateLastUploadTime(ctx, jb.UserID, jb.AccountUsername, now); err != nil {
			slog.Error("updating last upload time failed", "account", jb.AccountUsername, "error", err)
		}

		j.notify.NotifyCompletion(jb.UserID, jb.AccountUsername, item.Platform, item.PostURL, jb.VideoID)
		j.collector.ObserveJobTransition(models.JobStatusCompleted)
		slog.Info("job completed", "job_id", jb.JobID, "post_url", item.PostURL)
		return
	}

	rows, err := j.jobs.UpdateStatus(ctx, jb.JobID, models.JobStatusFailed, "")
	if err != nil {
		slog.Error("failing job failed", "job_id", jb.JobID, "error", err)
		return
	}
	if rows == 0 {
		return
	}

	if err := j.schedules.RemoveScheduledTime(ctx, jb.UserID, jb.AccountUsername, jb.QueueKey); err != nil {
		slog.Error("removing queue entry failed", "job_id", jb.JobID, "error", err)
	}

	j.notify.NotifyFailure(jb.UserID, jb.AccountUsername, jb.VideoID)
	j.collector.ObserveJobTransition(models.JobStatusFailed)
	slog.Error("job failed upstream", "job_id", jb.JobID)
}

// checkAsyncJob polls the status endpoint for one background upload.
func (j *JobCheckerJob) checkAsyncJob(ctx context.Context, jb *models.ScheduledJob) {
	status, err := j.client.FetchStatus(ctx, jb.JobID)
	if err != nil {
		slog.Warn("fetching async status failed", "request_id", jb.JobID, "error", err)
		return
	}

	switch status.Status {
	case "completed":
		var succeeded []transfer.StatusResult
		anyFailed := false
		for _, result := range status.Results {
			if result.Success {
				succeeded = append(succeeded, result)
			} else {
				anyFailed = true
			}
		}

		if len(succeeded) == 0 {
			j.failAsyncJob(ctx, jb)
			return
		}

		postURLs := make(map[string]string)
		platforms := make([]string, 0, len(succeeded))
		for _, result := range succeeded {
			platforms = append(platforms, result.Platform)
			if result.URL != "" {
				postURLs[result.Platform] = result.URL
			}
		}
		urls := service.JoinPostURLs(postURLs)

		rows, err := j.jobs.UpdateStatus(ctx, jb.JobID, models.JobStatusCompleted, urls)
		if err != nil {
			slog.Error("completing async job failed", "request_id", jb.JobID, "error", err)
			return
		}
		if rows == 0 {
			return
		}

		if urls != "" {
			if _, err := j.videos.SetPostURL(ctx, jb.VideoID, urls); err != nil {
				slog.Error("updating video post url failed", "video_id", jb.VideoID, "error", err)
			}
		}

		videoStatus := models.VideoStatusPosted
		if anyFailed {
			videoStatus = models.VideoStatusPartial
		}
		if _, err := j.videos.UpdateStatus(ctx, jb.VideoID, videoStatus, ""); err != nil {
			slog.Error("updating video status failed", "video_id", jb.VideoID, "error", err)
		}

		now := schedule.FormatUTC(time.Now())
		if _, err := j.accounts.UpdateLastUploadTime(ctx, jb.UserID, jb.AccountUsername, now); err != nil {
			slog.Error("updating last upload time failed", "account", jb.AccountUsername, "error", err)
		}
		j.removeQueueEntry(ctx, jb)

		j.notify.NotifyAsyncCompletion(jb.UserID, jb.AccountUsername, platforms, postURLs)
		j.collector.ObserveJobTransition(models.JobStatusCompleted)
		slog.Info("async job completed", "request_id", jb.JobID, "urls", urls)

	case "failed":
		j.failAsyncJob(ctx, jb)

	default:
		// Still processing upstream; check again next sweep.
	}
}

func (j *JobCheckerJob) failAsyncJob(ctx context.Context, jb *models.ScheduledJob) {
	rows, err := j.jobs.UpdateStatus(ctx, jb.JobID, models.JobStatusFailed, "")
	if err != nil {
		slog.Error("failing async job failed", "request_id", jb.JobID, "error", err)
		return
	}
	if rows == 0 {
		return
	}

	if _, err := j.videos.UpdateStatus(ctx, jb.VideoID, models.VideoStatusFailed, ""); err != nil {
		slog.Error("updating video status failed", "video_id", jb.VideoID, "error", err)
	}
	j.removeQueueEntry(ctx, jb)

	j.notify.NotifyFailure(jb.UserID, jb.AccountUsername, jb.VideoID)
	j.collector.ObserveJobTransition(models.JobStatusFailed)
	slog.Error("async job failed upstream", "request_id", jb.JobID)
}

func (j *JobCheckerJob) removeQueueEntry(ctx context.Context, jb *models.ScheduledJob) {
	if jb.QueueKey == "" {
		return
	}
	if err := j.schedules.RemoveScheduledTime(ctx, jb.UserID, jb.AccountUsername, jb.QueueKey); err != nil {
		slog.Error("removing queue entry failed", "job_id", jb.JobID, "error", err)
	}
}

// pruneTouchedAccounts clears expired queue entries for every account that
// had a job in this sweep.
func (j *JobCheckerJob) pruneTouchedAccounts(ctx context.Context, lists ...[]*models.ScheduledJob) {
	type accountKey struct {
		userID   string
		username string
	}
	seen := make(map[accountKey]struct{})
	for _, list := range lists {
		for _, jb := range list {
			seen[accountKey{jb.UserID, jb.AccountUsername}] = struct{}{}
		}
	}

	now := time.Now()
	for key := range seen {
		if err := j.schedules.PruneExpired(ctx, key.userID, key.username, now); err != nil {
			slog.Error("pruning expired schedule entries failed",
				"account", key.username, "error", err)
		}
	}
}
