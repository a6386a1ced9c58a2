package models

import "time"

// FacilityCategory mirrors the facility_category ENUM.
type FacilityCategory string

const (
	CategoryPadel        FacilityCategory = "padel"
	CategoryTennis       FacilityCategory = "tennis"
	CategoryIndoorSoccer FacilityCategory = "indoor_soccer"
	CategoryPool         FacilityCategory = "pool"
	CategoryGym          FacilityCategory = "gym"
)

func (c FacilityCategory) Valid() bool {
	switch c {
	case CategoryPadel, CategoryTennis, CategoryIndoorSoccer, CategoryPool, CategoryGym:
		return true
	}
	return false
}

// Facility is a bookable sports facility.
type Facility struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Category    FacilityCategory `json:"category" db:"category"`
	Description *string          `json:"description,omitempty" db:"description"`
	Location    *string          `json:"location,omitempty" db:"location"`
	HourlyPrice Money            `json:"hourly_price" db:"hourly_price"`
	Active      bool             `json:"active" db:"active"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	ImageKey    *string          `json:"-" db:"image_key"`
	ImageURL    *string          `json:"image_url,omitempty" db:"-"`
}

// FacilityPatch lists the fields an administrator may change. Nil fields are
// left untouched.
type FacilityPatch struct {
	Name        *string           `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Category    *FacilityCategory `json:"category,omitempty" validate:"omitempty,oneof=padel tennis indoor_soccer pool gym"`
	Description *string           `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location    *string           `json:"location,omitempty" validate:"omitempty,max=255"`
	HourlyPrice *Money            `json:"hourly_price,omitempty"`
	Active      *bool             `json:"active,omitempty"`
}

// Apply copies the set fields onto f.
func (p FacilityPatch) Apply(f *Facility) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Description != nil {
		f.Description = p.Description
	}
	if p.Location != nil {
		f.Location = p.Location
	}
	if p.HourlyPrice != nil {
		f.HourlyPrice = *p.HourlyPrice
	}
	if p.Active != nil {
		f.Active = *p.Active
	}
}

// Slot is an occupied interval of a facility on a given day.
type Slot struct {
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

// Availability is the occupied slots of a facility on a date.
type Availability struct {
	FacilityID int    `json:"facility_id"`
	Date       string `json:"date"`
	Occupied   []Slot `json:"occupied"`
}
