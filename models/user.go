package models

import (
	"time"

	"github.com/Dosada05/sports-center/schedule"
)

type User struct {
	ID                    int            `json:"id"`
	Name                  string         `json:"name"`
	Email                 string         `json:"email"`
	PasswordHash          string         `json:"-"`
	APIToken              *string        `json:"-"`
	IsAdmin               bool           `json:"is_admin"`
	IsMember              bool           `json:"is_member"`
	MembershipStart       *schedule.Date `json:"membership_start,omitempty"`
	MembershipEnd         *schedule.Date `json:"membership_end,omitempty"`
	SubscriptionCancelled bool           `json:"subscription_cancelled"`
	CreatedAt             time.Time      `json:"created_at"`
}

// IsActiveMember reports whether the user enjoys member benefits on today.
// Administrators never do.
func (u User) IsActiveMember(today schedule.Date) bool {
	if u.IsAdmin || !u.IsMember || u.MembershipEnd == nil {
		return false
	}
	return !u.MembershipEnd.Before(today)
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
