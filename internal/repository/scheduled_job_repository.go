package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/fbuehler/autopost-api/internal/models"
	"github.com/fbuehler/autopost-api/internal/schedule"
)

type ScheduledJobRepository interface {
	Create(ctx context.Context, job *models.ScheduledJob) (int64, error)
	ListPending(ctx context.Context, isAsync bool) ([]*models.ScheduledJob, error)
	UpdateStatus(ctx context.Context, jobID, status, platformPostURL string) (int64, error)
}

type scheduledJobRepository struct {
	db *sql.DB
}

func NewScheduledJobRepository(db *sql.DB) ScheduledJobRepository {
	return &scheduledJobRepository{db: db}
}

const jobColumns = `id, job_id, video_id, account_username, user_id, scheduled_date, queue_key, status, is_async, platform_post_url, created_at, completed_at`

func (r *scheduledJobRepository) Create(ctx context.Context, job *models.ScheduledJob) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO scheduled_jobs (job_id, video_id, account_username, user_id, scheduled_date, queue_key, is_async, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, job.JobID, job.VideoID, job.AccountUsername, job.UserID, job.ScheduledDate,
		job.QueueKey, job.IsAsync, schedule.FormatUTC(time.Now())).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, mapConstraintError(err)
	}
	return id, nil
}

func (r *scheduledJobRepository) ListPending(ctx context.Context, isAsync bool) ([]*models.ScheduledJob, error) {
	query := `SELECT ` + jobColumns + ` FROM scheduled_jobs WHERE status = $1 AND is_async = $2`
	rows, err := r.db.QueryContext(ctx, query, models.JobStatusPending, isAsync)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.ScheduledJob
	for rows.Next() {
		var job models.ScheduledJob
		var queueKey, postURL, createdAt, completedAt sql.NullString

		err := rows.Scan(&job.ID, &job.JobID, &job.VideoID, &job.AccountUsername, &job.UserID,
			&job.ScheduledDate, &queueKey, &job.Status, &job.IsAsync, &postURL, &createdAt, &completedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		job.QueueKey = queueKey.String
		job.PlatformPostURL = postURL.String
		job.CreatedAt = createdAt.String
		job.CompletedAt = completedAt.String
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

// UpdateStatus finalizes a job. Only pending jobs transition; calling it
// again on a terminal job affects zero rows, which keeps overlapping sweeps
// from double-completing.
func (r *scheduledJobRepository) UpdateStatus(ctx context.Context, jobID, status, platformPostURL string) (int64, error) {
	var res sql.Result
	var err error

	now := schedule.FormatUTC(time.Now())
	if platformPostURL != "" {
		res, err = r.db.ExecContext(ctx, `
			UPDATE scheduled_jobs
			SET status = $1, platform_post_url = $2, completed_at = $3
			WHERE job_id = $4 AND status = $5
		`, status, platformPostURL, now, jobID, models.JobStatusPending)
	} else {
		res, err = r.db.ExecContext(ctx, `
			UPDATE scheduled_jobs
			SET status = $1, completed_at = $2
			WHERE job_id = $3 AND status = $4
		`, status, now, jobID, models.JobStatusPending)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}
