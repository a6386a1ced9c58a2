package models

// DailyRevenue is the confirmed income of one day.
type DailyRevenue struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Revenue Money  `json:"revenue"`
}

// FacilityRevenue groups confirmed reservations by facility.
type FacilityRevenue struct {
	FacilityID   int    `json:"facility_id"`
	FacilityName string `json:"facility_name"`
	Count        int    `json:"count"`
	Revenue      Money  `json:"revenue"`
}

// MonthlyRevenue is keyed by "YYYY-MM".
type MonthlyRevenue struct {
	Month   string `json:"month"`
	Count   int    `json:"count"`
	Revenue Money  `json:"revenue"`
}

type AdminStats struct {
	ConfirmedCount   int               `json:"confirmed_count"`
	ConfirmedRevenue Money             `json:"confirmed_revenue"`
	PerDay           []DailyRevenue    `json:"per_day"`
	PerFacility      []FacilityRevenue `json:"per_facility"`
	PerMonth         []MonthlyRevenue  `json:"per_month"`
	Reservations     []Reservation     `json:"reservations"`
}

// TournamentEnrollmentTotal is the live enrollment count of a tournament.
type TournamentEnrollmentTotal struct {
	TournamentID int    `json:"tournament_id"`
	Name         string `json:"name"`
	Enrolled     int    `json:"enrolled"`
	Capacity     int    `json:"capacity"`
}

type EnrollmentReport struct {
	Enrollments []Enrollment                `json:"enrollments"`
	Totals      []TournamentEnrollmentTotal `json:"totals"`
}
