package reservation

import (
	"context"

	"autodeel/models"
)

// ReservationService covers the admin usage import and the member-facing
// reservation operations.
type ReservationService interface {
	// Import creates reservations from admin-provided usage rows, computing
	// total_costs once at save time. Per-row failures are collected and do
	// not abort the batch.
	Import(ctx context.Context, rows []models.ReservationImportRow) (*ImportReport, error)

	GetEnriched(id string) (*models.EnrichedReservation, error)
	GetUserReservations(userID string) ([]models.Reservation, error)
	GetAllReservations() ([]models.Reservation, error)

	// OutstandingGroups groups the user's unpaid reservations by calendar
	// month and business flag, each group with its total due.
	OutstandingGroups(userID string) ([]models.ReservationGroup, error)

	// SetBusinessFlag toggles is_business_transaction; only the owning user
	// may do this. Costs are not recomputed.
	SetBusinessFlag(userID, reservationID string, isBusiness bool) error

	// Breakdown renders the displayable cost calculation of a reservation.
	Breakdown(id string) (*models.CostBreakdown, error)
}

// ImportReport summarizes an admin usage import.
type ImportReport struct {
	CreatedCount int      `json:"created_count"`
	CreatedIDs   []string `json:"created_ids"`
	Errors       []string `json:"errors"`
}
