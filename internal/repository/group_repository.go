package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fbuehler/autopost-api/internal/models"
	"github.com/fbuehler/autopost-api/internal/schedule"
)

type GroupRepository interface {
	Create(ctx context.Context, g *models.Group) (int64, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.Group, error)
	GetByName(ctx context.Context, userID, groupName string) (*models.Group, error)
	AddAccounts(ctx context.Context, userID, groupName string, usernames []string) (int64, error)
	Delete(ctx context.Context, userID, groupName string) (int64, error)
	AddVideo(ctx context.Context, groupID int64, videoID string) error
	ListVideos(ctx context.Context, groupID int64) ([]*models.Video, error)
}

type groupRepository struct {
	db *sql.DB
}

func NewGroupRepository(db *sql.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, g *models.Group) (int64, error) {
	usernames := g.AccountUsernames
	if usernames == nil {
		usernames = []string{}
	}
	usernamesJSON, err := json.Marshal(usernames)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO groups (user_id, group_name, account_usernames, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, g.UserID, g.GroupName, string(usernamesJSON), schedule.FormatUTC(time.Now())).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, mapConstraintError(err)
	}
	return id, nil
}

func (r *groupRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, group_name, account_usernames, created_at FROM groups WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *groupRepository) GetByName(ctx context.Context, userID, groupName string) (*models.Group, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, group_name, account_usernames, created_at FROM groups WHERE user_id = $1 AND group_name = $2`,
		userID, groupName)

	g, err := scanGroup(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return g, nil
}

func scanGroup(row rowScanner) (*models.Group, error) {
	var g models.Group
	var usernamesJSON string
	var createdAt sql.NullString

	if err := row.Scan(&g.ID, &g.UserID, &g.GroupName, &usernamesJSON, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(usernamesJSON), &g.AccountUsernames); err != nil {
		return nil, fmt.Errorf("decode account usernames for %s: %w", g.GroupName, err)
	}
	g.CreatedAt = createdAt.String
	return &g, nil
}

func (r *groupRepository) AddAccounts(ctx context.Context, userID, groupName string, usernames []string) (int64, error) {
	group, err := r.GetByName(ctx, userID, groupName)
	if err != nil {
		return 0, err
	}
	if group == nil {
		return 0, nil
	}

	current := group.AccountUsernames
	for _, username := range usernames {
		exists := false
		for _, have := range current {
			if have == username {
				exists = true
				break
			}
		}
		if !exists {
			current = append(current, username)
		}
	}

	usernamesJSON, err := json.Marshal(current)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE groups SET account_usernames = $1 WHERE user_id = $2 AND group_name = $3`,
		string(usernamesJSON), userID, groupName)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

func (r *groupRepository) Delete(ctx context.Context, userID, groupName string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM groups WHERE user_id = $1 AND group_name = $2`, userID, groupName)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

func (r *groupRepository) AddVideo(ctx context.Context, groupID int64, videoID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_videos (group_id, video_id, added_at)
		VALUES ($1, $2, $3)
	`, groupID, videoID, schedule.FormatUTC(time.Now()))
	if err != nil {
		slog.Info(err.Error())
		return mapConstraintError(err)
	}
	return nil
}

func (r *groupRepository) ListVideos(ctx context.Context, groupID int64) ([]*models.Video, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT v.video_id, v.caption, v.user_id, v.status, v.reusable, v.created_at, v.scheduled_at, v.posted_at, v.post_url
		FROM videos v
		INNER JOIN group_videos gv ON v.video_id = gv.video_id
		WHERE gv.group_id = $1
		ORDER BY gv.added_at DESC
	`, groupID)
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
