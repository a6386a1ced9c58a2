package models

import (
	"time"

	"github.com/Dosada05/sports-center/schedule"
)

// ReservationStatus mirrors the reservation_status ENUM.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// Blocking reports whether a reservation in this status holds its slot.
func (s ReservationStatus) Blocking() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

// Reservation is a booked slot of a facility.
type Reservation struct {
	ID         int               `json:"id" db:"id"`
	FacilityID int               `json:"facility_id" db:"facility_id"`
	UserID     *int              `json:"user_id,omitempty" db:"user_id"`
	Date       schedule.Date     `json:"date" db:"date"`
	StartTime  schedule.Clock    `json:"start_time" db:"start_time"`
	EndTime    schedule.Clock    `json:"end_time" db:"end_time"`
	TotalPrice Money             `json:"total_price" db:"total_price"`
	Status     ReservationStatus `json:"status" db:"status"`
	PaymentID  *string           `json:"payment_id,omitempty" db:"payment_id"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`

	Facility *Facility        `json:"facility,omitempty" db:"-"`
	User     *ReservationUser `json:"user,omitempty" db:"-"`
}

// ReservationUser is the owner summary shown in administrative listings.
type ReservationUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Range returns the booked interval.
func (r Reservation) Range() schedule.Range {
	return schedule.Range{Start: r.StartTime, End: r.EndTime}
}

// OwnedBy reports whether userID booked this reservation.
func (r Reservation) OwnedBy(userID int) bool {
	return r.UserID != nil && *r.UserID == userID
}
