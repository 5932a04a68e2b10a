package service

import (
	"sort"
	"strings"

	"github.com/fbuehler/autopost-api/internal/transfer"
)

// Outcome classifies one publish call.
type Outcome string

const (
	OutcomeScheduled Outcome = "scheduled"
	OutcomeAsync     Outcome = "async"
	OutcomeSuccess   Outcome = "success"
	OutcomePartial   Outcome = "partial"
	OutcomeFailure   Outcome = "failure"
)

type PlatformFailure struct {
	Platform string `json:"platform"`
	Error    string `json:"error"`
}

// UploadResult is the canonical form of the publishing service's
// heterogeneous upload response. StatusCode is the HTTP-equivalent code the
// API layer answers with.
type UploadResult struct {
	Outcome        Outcome           `json:"outcome"`
	StatusCode     int               `json:"-"`
	Success        bool              `json:"success"`
	JobID          string            `json:"job_id,omitempty"`
	ScheduledDate  string            `json:"scheduled_date,omitempty"`
	RequestID      string            `json:"request_id,omitempty"`
	Message        string            `json:"message,omitempty"`
	TotalPlatforms int               `json:"total_platforms,omitempty"`
	Succeeded      []string          `json:"succeeded_platforms,omitempty"`
	Failed         []PlatformFailure `json:"failed_platforms,omitempty"`
	PostURLs       map[string]string `json:"post_urls,omitempty"`
	Warnings       []string          `json:"warnings,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// ParseUploadResponse reduces the raw response to one of five outcomes:
//
//	Scheduled (202): job id plus a scheduled date, nothing posted yet
//	Async     (200): request id with a "background" processing message
//	Success   (200): every per-platform result succeeded
//	Partial   (207): some platforms succeeded, some failed
//	Failure   (500): everything failed, or nothing to go on
//
// Warnings on the raw response pass through untouched.
func ParseUploadResponse(raw *transfer.UploadResponse) *UploadResult {
	if raw.ScheduledDate != "" && raw.JobID != "" {
		return &UploadResult{
			Outcome:       OutcomeScheduled,
			StatusCode:    202,
			Success:       true,
			JobID:         raw.JobID,
			ScheduledDate: raw.ScheduledDate,
			Warnings:      raw.Warnings,
		}
	}

	if raw.RequestID != "" && strings.Contains(strings.ToLower(raw.Message), "background") {
		return &UploadResult{
			Outcome:        OutcomeAsync,
			StatusCode:     200,
			Success:        true,
			RequestID:      raw.RequestID,
			Message:        raw.Message,
			TotalPlatforms: raw.TotalPlatforms,
			Warnings:       raw.Warnings,
		}
	}

	var succeeded []string
	var failed []PlatformFailure
	postURLs := make(map[string]string)

	platforms := make([]string, 0, len(raw.Results))
	for platform := range raw.Results {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	for _, platform := range platforms {
		result := raw.Results[platform]
		if result.Success {
			succeeded = append(succeeded, platform)
			if result.URL != "" {
				postURLs[platform] = result.URL
			}
		} else {
			errMsg := result.Error
			if errMsg == "" {
				errMsg = "Unknown error"
			}
			failed = append(failed, PlatformFailure{Platform: platform, Error: errMsg})
		}
	}

	if len(succeeded) == 0 {
		errMsg := raw.Error
		if errMsg == "" {
			errMsg = "Upload failed on all platforms"
		}
		return &UploadResult{
			Outcome:    OutcomeFailure,
			StatusCode: 500,
			Failed:     failed,
			Warnings:   raw.Warnings,
			Error:      errMsg,
		}
	}

	if len(failed) > 0 {
		return &UploadResult{
			Outcome:    OutcomePartial,
			StatusCode: 207,
			Success:    true,
			Succeeded:  succeeded,
			Failed:     failed,
			PostURLs:   postURLs,
			Warnings:   raw.Warnings,
		}
	}

	return &UploadResult{
		Outcome:    OutcomeSuccess,
		StatusCode: 200,
		Success:    true,
		Succeeded:  succeeded,
		PostURLs:   postURLs,
		Warnings:   raw.Warnings,
	}
}

// JoinPostURLs renders a platform->url map as the pipe-separated
// "platform: url" string persisted on videos. Platforms are sorted so the
// output is stable.
func JoinPostURLs(urls map[string]string) string {
	if len(urls) == 0 {
		return ""
	}
	platforms := make([]string, 0, len(urls))
	for platform := range urls {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	parts := make([]string, 0, len(platforms))
	for _, platform := range platforms {
		parts = append(parts, platform+": "+urls[platform])
	}
	return strings.Join(parts, " | ")
}
