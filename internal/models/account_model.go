package models

// AutopostingPolicy is stored as a JSON document in the accounts table.
// DowntimeStart/DowntimeEnd are local wall-clock times (HH:MM, Europe/Berlin).
type AutopostingPolicy struct {
	Enabled          bool           `json:"enabled"`
	PostingFrequency string         `json:"posting_frequency,omitempty"` // hourly, daily, weekly
	DailyPosts       map[string]int `json:"daily_posts,omitempty"`
	DowntimeHours    int            `json:"downtime_hours,omitempty"`
	DowntimeStart    string         `json:"downtime_start,omitempty"`
	DowntimeEnd      string         `json:"downtime_end,omitempty"`
}

type Account struct {
	ID             int64             `db:"id" json:"id"`
	UserID         string            `db:"user_id" json:"user_id"`
	Username       string            `db:"username" json:"username"`
	Platforms      []string          `db:"platforms" json:"platforms"`
	IsAI           bool              `db:"is_ai" json:"is_ai"`
	Autoposting    AutopostingPolicy `db:"autoposting_properties" json:"autoposting_properties"`
	LastUploadTime string            `db:"last_upload_time" json:"last_upload_time,omitempty"`
	ScheduledTimes []string          `db:"scheduled_times" json:"scheduled_times"`
	NextUploadTime string            `db:"next_upload_time" json:"next_upload_time,omitempty"`
	CreatedAt      string            `db:"created_at" json:"created_at"`
}
