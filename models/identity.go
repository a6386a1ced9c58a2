package models

// Identity is the resolved caller every business operation receives.
type Identity struct {
	UserID         int  `json:"id"`
	IsAdmin        bool `json:"is_admin"`
	IsActiveMember bool `json:"is_active_member"`
}
