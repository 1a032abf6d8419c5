package models

import "time"

// PriceScheme is the rate card used to price a reservation. Schemes are
// referenced by id from reservations and are never deleted while referenced.
type PriceScheme struct {
	ID                              string    `bson:"id" json:"id"`
	Name                            string    `bson:"name" json:"name"`
	CostsPerKilometer               float64   `bson:"costs_per_kilometer" json:"costs_per_kilometer"`
	CostsPerEffectiveHour           float64   `bson:"costs_per_effective_hour" json:"costs_per_effective_hour"`
	CostsPerUnusedReservedHourStart float64   `bson:"costs_per_unused_reserved_hour_start_trip" json:"costs_per_unused_reserved_hour_start_trip"`
	CostsPerUnusedReservedHourEnd   float64   `bson:"costs_per_unused_reserved_hour_end_trip" json:"costs_per_unused_reserved_hour_end_trip"`
	CreatedAt                       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt                       time.Time `bson:"updated_at" json:"updated_at"`
}
