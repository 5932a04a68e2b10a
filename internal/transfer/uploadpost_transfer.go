package transfer

// Wire shapes of the upload-post publishing API. The upload response is
// heterogeneous: which fields are present depends on whether the call was
// scheduled, queued for background processing, or executed immediately.

type PlatformResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

type UploadResponse struct {
	JobID          string                    `json:"job_id,omitempty"`
	ScheduledDate  string                    `json:"scheduled_date,omitempty"`
	RequestID      string                    `json:"request_id,omitempty"`
	Message        string                    `json:"message,omitempty"`
	TotalPlatforms int                       `json:"total_platforms,omitempty"`
	Results        map[string]PlatformResult `json:"results,omitempty"`
	Error          string                    `json:"error,omitempty"`
	Warnings       []string                  `json:"warnings,omitempty"`
}

type HistoryItem struct {
	JobID    string `json:"job_id"`
	Success  bool   `json:"success"`
	PostURL  string `json:"post_url"`
	Platform string `json:"platform"`
}

type HistoryResponse struct {
	History []HistoryItem `json:"history"`
}

type StatusResult struct {
	Platform string `json:"platform"`
	Success  bool   `json:"success"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

type StatusResponse struct {
	Status  string         `json:"status"` // pending, completed, failed
	Results []StatusResult `json:"results"`
}
