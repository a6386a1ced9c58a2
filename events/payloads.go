package events

import "time"

type ReservationEvent struct {
	ReservationID int       `json:"reservation_id"`
	FacilityID    int       `json:"facility_id"`
	UserID        int       `json:"user_id"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	TotalPrice    string    `json:"total_price"`
	RefundAmount  string    `json:"refund_amount,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type EnrollmentEvent struct {
	TournamentID int       `json:"tournament_id"`
	UserID       int       `json:"user_id"`
	Enrolled     int       `json:"enrolled"`
	Capacity     int       `json:"capacity"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type MembershipEvent struct {
	UserID        int       `json:"user_id"`
	Action        string    `json:"action"`
	MembershipEnd string    `json:"membership_end,omitempty"`
	PaymentID     string    `json:"payment_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
