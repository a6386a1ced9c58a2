package models

import (
	"time"

	"github.com/Dosada05/sports-center/schedule"
)

// TournamentStatus mirrors the tournament_status ENUM.
type TournamentStatus string

const (
	TournamentOpen     TournamentStatus = "open"
	TournamentClosed   TournamentStatus = "closed"
	TournamentFinished TournamentStatus = "finished"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentOpen, TournamentClosed, TournamentFinished:
		return true
	}
	return false
}

// Tournament is an event users can enroll in. Status holds the stored value
// until a service replaces it with the derived one on read.
type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Sport       string           `json:"sport" db:"sport"`
	Category    *string          `json:"category,omitempty" db:"category"`
	StartDate   schedule.Date    `json:"start_date" db:"start_date"`
	EndDate     schedule.Date    `json:"end_date" db:"end_date"`
	Province    string           `json:"province" db:"province"`
	City        string           `json:"city" db:"city"`
	Venue       *string          `json:"venue,omitempty" db:"venue"`
	Description string           `json:"description" db:"description"`
	Capacity    int              `json:"capacity" db:"capacity"`
	Enrolled    int              `json:"enrolled" db:"enrolled"`
	Status      TournamentStatus `json:"status" db:"status"`
	Active      bool             `json:"active" db:"active"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	IsEnrolled *bool `json:"is_enrolled,omitempty" db:"-"`
}

// TournamentPatch lists the fields an administrator may change.
type TournamentPatch struct {
	Name        *string           `json:"name,omitempty" validate:"omitempty,min=3,max=150"`
	Sport       *string           `json:"sport,omitempty" validate:"omitempty,min=2,max=60"`
	Category    *string           `json:"category,omitempty" validate:"omitempty,max=60"`
	StartDate   *schedule.Date    `json:"start_date,omitempty"`
	EndDate     *schedule.Date    `json:"end_date,omitempty"`
	Province    *string           `json:"province,omitempty" validate:"omitempty,max=80"`
	City        *string           `json:"city,omitempty" validate:"omitempty,max=80"`
	Venue       *string           `json:"venue,omitempty" validate:"omitempty,max=150"`
	Description *string           `json:"description,omitempty" validate:"omitempty,max=4000"`
	Capacity    *int              `json:"capacity,omitempty" validate:"omitempty,gt=0"`
	Status      *TournamentStatus `json:"status,omitempty" validate:"omitempty,oneof=open closed finished"`
	Active      *bool             `json:"active,omitempty"`
}

// Apply copies the set fields onto t.
func (p TournamentPatch) Apply(t *Tournament) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Sport != nil {
		t.Sport = *p.Sport
	}
	if p.Category != nil {
		t.Category = p.Category
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.Province != nil {
		t.Province = *p.Province
	}
	if p.City != nil {
		t.City = *p.City
	}
	if p.Venue != nil {
		t.Venue = p.Venue
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Capacity != nil {
		t.Capacity = *p.Capacity
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Active != nil {
		t.Active = *p.Active
	}
}

// Enrollment links a user to a tournament.
type Enrollment struct {
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	UserName       string `json:"user_name,omitempty" db:"-"`
	UserEmail      string `json:"user_email,omitempty" db:"-"`
	TournamentName string `json:"tournament_name,omitempty" db:"-"`
}
