package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fbuehler/autopost-api/internal/models"
	"github.com/fbuehler/autopost-api/internal/schedule"
)

// AccountUpdate carries the optional fields of a PATCH; nil fields are left
// untouched.
type AccountUpdate struct {
	IsAI        *bool
	Autoposting *models.AutopostingPolicy
	Platforms   []string
}

type AccountRepository interface {
	Create(ctx context.Context, acc *models.Account) (int64, error)
	GetByUsername(ctx context.Context, userID, username string) (*models.Account, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.Account, error)
	Update(ctx context.Context, userID, username string, upd AccountUpdate) (int64, error)
	Delete(ctx context.Context, userID, username string) (int64, error)
	UpdateLastUploadTime(ctx context.Context, userID, username, uploadTime string) (int64, error)
	UpdateNextUploadTime(ctx context.Context, userID, username, next string) (int64, error)
	GetNextUploadTime(ctx context.Context, userID, username string) (string, error)
	GetScheduledTimes(ctx context.Context, userID, username string) ([]string, error)
	SetScheduledTimes(ctx context.Context, userID, username string, times []string) (int64, error)
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, user_id, username, platforms, created_at, is_ai, autoposting_properties, last_upload_time, scheduled_times, next_upload_time`

func (r *accountRepository) Create(ctx context.Context, acc *models.Account) (int64, error) {
	platformsJSON, err := json.Marshal(acc.Platforms)
	if err != nil {
		return 0, err
	}
	policyJSON, err := json.Marshal(acc.Autoposting)
	if err != nil {
		return 0, err
	}

	// next_upload_time starts at now so a freshly added AI account posts
	// immediately on its first auto-scheduled upload.
	now := schedule.FormatUTC(time.Now())

	query := `
		INSERT INTO accounts (user_id, username, platforms, created_at, is_ai, autoposting_properties, next_upload_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err = r.db.QueryRowContext(ctx, query,
		acc.UserID, acc.Username, string(platformsJSON), now, acc.IsAI, string(policyJSON), now,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, mapConstraintError(err)
	}

	return id, nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, userID, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND username = $2`
	row := r.db.QueryRowContext(ctx, query, userID, username)

	acc, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return acc, nil
}

func (r *accountRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var acc models.Account
	var platformsJSON string
	var createdAt, policyJSON, lastUpload, timesJSON, nextUpload sql.NullString

	err := row.Scan(&acc.ID, &acc.UserID, &acc.Username, &platformsJSON, &createdAt,
		&acc.IsAI, &policyJSON, &lastUpload, &timesJSON, &nextUpload)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(platformsJSON), &acc.Platforms); err != nil {
		return nil, fmt.Errorf("decode platforms for %s: %w", acc.Username, err)
	}
	if policyJSON.Valid && policyJSON.String != "" {
		if err := json.Unmarshal([]byte(policyJSON.String), &acc.Autoposting); err != nil {
			return nil, fmt.Errorf("decode autoposting policy for %s: %w", acc.Username, err)
		}
	}
	if timesJSON.Valid && timesJSON.String != "" {
		if err := json.Unmarshal([]byte(timesJSON.String), &acc.ScheduledTimes); err != nil {
			return nil, fmt.Errorf("decode scheduled times for %s: %w", acc.Username, err)
		}
	}
	if acc.ScheduledTimes == nil {
		acc.ScheduledTimes = []string{}
	}
	acc.CreatedAt = createdAt.String
	acc.LastUploadTime = lastUpload.String
	acc.NextUploadTime = nextUpload.String

	return &acc, nil
}

func (r *accountRepository) Update(ctx context.Context, userID, username string, upd AccountUpdate) (int64, error) {
	var sets []string
	var args []any

	if upd.IsAI != nil {
		args = append(args, *upd.IsAI)
		sets = append(sets, fmt.Sprintf("is_ai = $%d", len(args)))
	}
	if upd.Autoposting != nil {
		policyJSON, err := json.Marshal(upd.Autoposting)
		if err != nil {
			return 0, err
		}
		args = append(args, string(policyJSON))
		sets = append(sets, fmt.Sprintf("autoposting_properties = $%d", len(args)))
	}
	if upd.Platforms != nil {
		platformsJSON, err := json.Marshal(upd.Platforms)
		if err != nil {
			return 0, err
		}
		args = append(args, string(platformsJSON))
		sets = append(sets, fmt.Sprintf("platforms = $%d", len(args)))
	}

	if len(sets) == 0 {
		return 0, nil
	}

	args = append(args, userID, username)
	query := fmt.Sprintf(`UPDATE accounts SET %s WHERE user_id = $%d AND username = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountRepository) Delete(ctx context.Context, userID, username string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE user_id = $1 AND username = $2`, userID, username)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountRepository) UpdateLastUploadTime(ctx context.Context, userID, username, uploadTime string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET last_upload_time = $1 WHERE user_id = $2 AND username = $3`,
		uploadTime, userID, username)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountRepository) UpdateNextUploadTime(ctx context.Context, userID, username, next string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET next_upload_time = $1 WHERE user_id = $2 AND username = $3`,
		next, userID, username)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountRepository) GetNextUploadTime(ctx context.Context, userID, username string) (string, error) {
	var next sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT next_upload_time FROM accounts WHERE user_id = $1 AND username = $2`,
		userID, username).Scan(&next)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		slog.Info(err.Error())
		return "", err
	}
	return next.String, nil
}

func (r *accountRepository) GetScheduledTimes(ctx context.Context, userID, username string) ([]string, error) {
	var timesJSON sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT scheduled_times FROM accounts WHERE user_id = $1 AND username = $2`,
		userID, username).Scan(&timesJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		slog.Info(err.Error())
		return nil, err
	}

	if !timesJSON.Valid || timesJSON.String == "" {
		return []string{}, nil
	}
	var times []string
	if err := json.Unmarshal([]byte(timesJSON.String), &times); err != nil {
		return nil, fmt.Errorf("decode scheduled times for %s: %w", username, err)
	}
	return times, nil
}

func (r *accountRepository) SetScheduledTimes(ctx context.Context, userID, username string, times []string) (int64, error) {
	timesJSON, err := json.Marshal(times)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET scheduled_times = $1 WHERE user_id = $2 AND username = $3`,
		string(timesJSON), userID, username)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}
