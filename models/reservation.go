package models

import "time"

// Reservation is a single rental event: the planned reservation window plus
// the effective (actual) usage window. The effective window may differ from
// the planned window in either direction on both ends; all four early/late
// combinations are valid and billed differently.
type Reservation struct {
	ID                    string    `bson:"id" json:"id"`
	UserID                string    `bson:"user_id" json:"user_id"`
	ReservationStart      time.Time `bson:"reservation_start" json:"reservation_start"`
	ReservationEnd        time.Time `bson:"reservation_end" json:"reservation_end"`
	EffectiveStart        time.Time `bson:"effective_start" json:"effective_start"`
	EffectiveEnd          time.Time `bson:"effective_end" json:"effective_end"`
	KilometersDriven      float64   `bson:"kilometers_driven" json:"kilometers_driven"`
	PriceSchemeID         string    `bson:"price_scheme_id" json:"price_scheme_id"`
	TotalCosts            float64   `bson:"total_costs" json:"total_costs"`
	IsBusinessTransaction bool      `bson:"is_business_transaction" json:"is_business_transaction"`
	Remarks               string    `bson:"remarks" json:"remarks"`
	CreatedAt             time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time `bson:"updated_at" json:"updated_at"`
}

// ReservationImportRow is one row of an admin usage import. Kilometers may
// be given directly or derived from the odometer pair.
type ReservationImportRow struct {
	UserID           string    `json:"user_id"`
	ReservationStart time.Time `json:"reservation_start"`
	ReservationEnd   time.Time `json:"reservation_end"`
	EffectiveStart   time.Time `json:"effective_start"`
	EffectiveEnd     time.Time `json:"effective_end"`
	KilometersDriven *float64  `json:"kilometers_driven,omitempty"`
	OdometerStart    *float64  `json:"odometer_start,omitempty"`
	OdometerEnd      *float64  `json:"odometer_end,omitempty"`
	PriceSchemeID    string    `json:"price_scheme_id"`
	Remarks          string    `json:"remarks"`
}

// EnrichedReservation is a reservation joined with its price scheme and
// owning user for display.
type EnrichedReservation struct {
	Reservation Reservation  `json:"reservation"`
	PriceScheme *PriceScheme `json:"price_scheme,omitempty"`
	User        *User        `json:"user,omitempty"`
}

// CostBreakdown is the displayable calculation behind a reservation's
// total_costs.
type CostBreakdown struct {
	TimeCosts      string  `json:"time_costs"`
	KilometerCosts string  `json:"kilometer_costs"`
	TotalCosts     float64 `json:"total_costs"`
}

// ReservationGroup is a set of unpaid reservations belonging to one user,
// grouped by calendar month and business flag, ready to be paid in one go.
type ReservationGroup struct {
	Month          string        `json:"month"` // formatted as "2006-01"
	IsBusiness     bool          `json:"is_business"`
	Reservations   []Reservation `json:"reservations"`
	TotalDueEuros  float64       `json:"total_due_euros"`
	ReservationIDs []string      `json:"reservation_ids"`
}
