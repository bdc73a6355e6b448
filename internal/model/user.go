package model

import (
	"net/url"
	"time"
)

const avatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// User is a registered account.
//
// PasswordHash is tagged json:"-" so no API response can ever carry it.
// Storage backends persist it through their own record types.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	AvatarURL    string    `json:"avatarUrl"`
}

// Handle is the attribution string used in createdBy fields.
func (u User) Handle() string {
	return "@" + u.Username
}

// AvatarURL returns the generated avatar image for a username.
func AvatarURL(username string) string {
	return avatarBaseURL + url.QueryEscape(username)
}
