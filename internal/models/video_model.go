package models

type Video struct {
	VideoID     string `db:"video_id" json:"video_id"`
	Caption     string `db:"caption" json:"caption"`
	UserID      string `db:"user_id" json:"user_id"`
	Status      string `db:"status" json:"status"`
	Reusable    bool   `db:"reusable" json:"reusable"`
	CreatedAt   string `db:"created_at" json:"created_at"`
	ScheduledAt string `db:"scheduled_at" json:"scheduled_at,omitempty"`
	PostedAt    string `db:"posted_at" json:"posted_at,omitempty"`
	PostURL     string `db:"post_url" json:"post_url,omitempty"`
}

const (
	VideoStatusAvailable = "available"
	VideoStatusUploading = "uploading"
	VideoStatusScheduled = "scheduled"
	VideoStatusPosted    = "posted"
	VideoStatusPartial   = "partial"
	VideoStatusFailed    = "failed"
	VideoStatusExternal  = "external"
)
