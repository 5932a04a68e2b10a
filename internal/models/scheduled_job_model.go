package models

// ScheduledJob tracks one dispatched upload-post job until the reconciler
// resolves it. QueueKey is the exact string added to the account's pending
// schedule queue at dispatch time; async jobs never add a queue entry, so
// their QueueKey is empty and queue removal is a no-op.
type ScheduledJob struct {
	ID              int64  `db:"id" json:"id"`
	JobID           string `db:"job_id" json:"job_id"`
	VideoID         string `db:"video_id" json:"video_id"`
	AccountUsername string `db:"account_username" json:"account_username"`
	UserID          string `db:"user_id" json:"user_id"`
	ScheduledDate   string `db:"scheduled_date" json:"scheduled_date"`
	QueueKey        string `db:"queue_key" json:"queue_key,omitempty"`
	Status          string `db:"status" json:"status"`
	IsAsync         bool   `db:"is_async" json:"is_async"`
	PlatformPostURL string `db:"platform_post_url" json:"platform_post_url,omitempty"`
	CreatedAt       string `db:"created_at" json:"created_at"`
	CompletedAt     string `db:"completed_at" json:"completed_at,omitempty"`
}

const (
	JobStatusPending   = "pending"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)
