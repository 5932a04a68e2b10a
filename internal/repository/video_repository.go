package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/fbuehler/autopost-api/internal/models"
	"github.com/fbuehler/autopost-api/internal/schedule"
)

type VideoRepository interface {
	Create(ctx context.Context, v *models.Video) error
	GetByID(ctx context.Context, videoID string) (*models.Video, error)
	ListByUserID(ctx context.Context, userID, status string) ([]*models.Video, error)
	UpdateStatus(ctx context.Context, videoID, status, scheduledAt string) (int64, error)
	SetPostURL(ctx context.Context, videoID, postURL string) (int64, error)
}

type videoRepository struct {
	db *sql.DB
}

func NewVideoRepository(db *sql.DB) VideoRepository {
	return &videoRepository{db: db}
}

const videoColumns = `video_id, caption, user_id, status, reusable, created_at, scheduled_at, posted_at, post_url`

func (r *videoRepository) Create(ctx context.Context, v *models.Video) error {
	status := v.Status
	if status == "" {
		status = models.VideoStatusAvailable
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO videos (video_id, caption, user_id, status, reusable, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.VideoID, v.Caption, v.UserID, status, v.Reusable, schedule.FormatUTC(time.Now()))
	if err != nil {
		slog.Info(err.Error())
		return mapConstraintError(err)
	}
	return nil
}

func (r *videoRepository) GetByID(ctx context.Context, videoID string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE video_id = $1`
	row := r.db.QueryRowContext(ctx, query, videoID)

	v, err := scanVideo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return v, nil
}

func (r *videoRepository) ListByUserID(ctx context.Context, userID, status string) ([]*models.Video, error) {
	var rows *sql.Rows
	var err error

	if status != "" {
		query := `SELECT ` + videoColumns + ` FROM videos WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC`
		rows, err = r.db.QueryContext(ctx, query, userID, status)
	} else {
		query := `SELECT ` + videoColumns + ` FROM videos WHERE user_id = $1 ORDER BY created_at DESC`
		rows, err = r.db.QueryContext(ctx, query, userID)
	}
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func scanVideo(row rowScanner) (*models.Video, error) {
	var v models.Video
	var createdAt, scheduledAt, postedAt, postURL sql.NullString

	err := row.Scan(&v.VideoID, &v.Caption, &v.UserID, &v.Status, &v.Reusable,
		&createdAt, &scheduledAt, &postedAt, &postURL)
	if err != nil {
		return nil, err
	}

	v.CreatedAt = createdAt.String
	v.ScheduledAt = scheduledAt.String
	v.PostedAt = postedAt.String
	v.PostURL = postURL.String
	return &v, nil
}

func (r *videoRepository) UpdateStatus(ctx context.Context, videoID, status, scheduledAt string) (int64, error) {
	var res sql.Result
	var err error

	if scheduledAt != "" {
		res, err = r.db.ExecContext(ctx,
			`UPDATE videos SET status = $1, scheduled_at = $2 WHERE video_id = $3`,
			status, scheduledAt, videoID)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE videos SET status = $1 WHERE video_id = $2`,
			status, videoID)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

func (r *videoRepository) SetPostURL(ctx context.Context, videoID, postURL string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE videos SET post_url = $1, posted_at = $2 WHERE video_id = $3`,
		postURL, schedule.FormatUTC(time.Now()), videoID)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}
