package transfer

import "github.com/fbuehler/autopost-api/internal/models"

type AccountCreation struct {
	UserID      string                    `json:"user_id"`
	Username    string                    `json:"username"`
	Platforms   []string                  `json:"platforms"`
	IsAI        bool                      `json:"is_ai"`
	Autoposting *models.AutopostingPolicy `json:"autoposting_properties"`
}

type AccountPatch struct {
	UserID      string                    `json:"user_id"`
	Username    string                    `json:"username"`
	IsAI        *bool                     `json:"is_ai"`
	Autoposting *models.AutopostingPolicy `json:"autoposting_properties"`
	Platforms   []string                  `json:"platforms"`
}

type AccountDeletion struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type VideoCreation struct {
	VideoID  string `json:"video_id"`
	Caption  string `json:"caption"`
	UserID   string `json:"user_id"`
	Reusable bool   `json:"reusable"`
}

// JobTracking registers an upload-post job created outside this service so
// the reconciler picks it up.
type JobTracking struct {
	JobID           string `json:"job_id"`
	VideoID         string `json:"video_id"`
	AccountUsername string `json:"account_username"`
	UserID          string `json:"user_id"`
	ScheduledDate   string `json:"scheduled_date"`
}

type GroupCreation struct {
	UserID           string   `json:"user_id"`
	GroupName        string   `json:"group_name"`
	AccountUsernames []string `json:"account_usernames"`
}

type GroupPatch struct {
	UserID           string   `json:"user_id"`
	GroupName        string   `json:"group_name"`
	AccountUsernames []string `json:"account_usernames"`
}

type GroupDeletion struct {
	UserID    string `json:"user_id"`
	GroupName string `json:"group_name"`
}

type GroupVideoAddition struct {
	UserID    string `json:"user_id"`
	GroupName string `json:"group_name"`
	VideoID   string `json:"video_id"`
}

type InferenceRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}
