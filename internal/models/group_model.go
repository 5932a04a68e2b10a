package models

type Group struct {
	ID               int64    `db:"id" json:"id"`
	UserID           string   `db:"user_id" json:"user_id"`
	GroupName        string   `db:"group_name" json:"group_name"`
	AccountUsernames []string `db:"account_usernames" json:"account_usernames"`
	CreatedAt        string   `db:"created_at" json:"created_at"`
}
