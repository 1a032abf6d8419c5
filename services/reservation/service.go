package reservation

import (
	"context"
	"fmt"
	"sort"

	paymentRepo "autodeel/database/repository/payment"
	priceSchemeRepo "autodeel/database/repository/pricescheme"
	reservationRepo "autodeel/database/repository/reservation"
	userRepo "autodeel/database/repository/user"
	"autodeel/models"
	"autodeel/services/billing"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// DefaultReservationService is the production implementation.
type DefaultReservationService struct {
	Repo        reservationRepo.ReservationRepository
	PaymentRepo paymentRepo.PaymentRepository
	SchemeRepo  priceSchemeRepo.PriceSchemeRepository
	UserRepo    userRepo.UserRepository
	Logger      *zap.Logger
}

// Import creates reservations from admin usage rows. total_costs is computed
// here, once, and never recomputed automatically afterwards.
func (s *DefaultReservationService) Import(ctx context.Context, rows []models.ReservationImportRow) (*ImportReport, error) {
	report := &ImportReport{Errors: []string{}}

	for i, row := range rows {
		res, err := s.buildReservation(row)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		if err := s.Repo.Create(res); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		report.CreatedCount++
		report.CreatedIDs = append(report.CreatedIDs, res.ID)
	}

	s.Logger.Info("reservation import finished",
		zap.Int("created", report.CreatedCount),
		zap.Int("failed", len(report.Errors)))
	return report, nil
}

func (s *DefaultReservationService) buildReservation(row models.ReservationImportRow) (*models.Reservation, error) {
	if !row.ReservationStart.Before(row.ReservationEnd) {
		return nil, fmt.Errorf("reservation window is not strictly ordered")
	}
	if !row.EffectiveStart.Before(row.EffectiveEnd) {
		return nil, fmt.Errorf("effective window is not strictly ordered")
	}

	km, err := kilometersFromRow(row)
	if err != nil {
		return nil, err
	}

	scheme, err := s.SchemeRepo.GetByID(row.PriceSchemeID)
	if err != nil {
		return nil, err
	}
	if scheme == nil {
		return nil, fmt.Errorf("price scheme %s does not exist", row.PriceSchemeID)
	}

	user, err := s.UserRepo.GetByID(row.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s does not exist", row.UserID)
	}

	return &models.Reservation{
		ID:               uuid.New().String(),
		UserID:           row.UserID,
		ReservationStart: row.ReservationStart,
		ReservationEnd:   row.ReservationEnd,
		EffectiveStart:   row.EffectiveStart,
		EffectiveEnd:     row.EffectiveEnd,
		KilometersDriven: km,
		PriceSchemeID:    scheme.ID,
		TotalCosts: billing.TotalCosts(
			row.ReservationStart, row.ReservationEnd,
			row.EffectiveStart, row.EffectiveEnd,
			km, *scheme),
		Remarks: row.Remarks,
	}, nil
}

func kilometersFromRow(row models.ReservationImportRow) (float64, error) {
	if row.KilometersDriven != nil {
		if *row.KilometersDriven < 0 {
			return 0, fmt.Errorf("kilometers driven must not be negative")
		}
		return *row.KilometersDriven, nil
	}
	if row.OdometerStart == nil || row.OdometerEnd == nil {
		return 0, fmt.Errorf("either kilometers driven or both odometer readings are required")
	}
	if *row.OdometerEnd < *row.OdometerStart {
		return 0, fmt.Errorf("odometer end is below odometer start")
	}
	return *row.OdometerEnd - *row.OdometerStart, nil
}

// GetEnriched joins a reservation with its price scheme and owning user.
func (s *DefaultReservationService) GetEnriched(id string) (*models.EnrichedReservation, error) {
	res, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("reservation %s not found", id)
	}

	enriched := &models.EnrichedReservation{Reservation: *res}

	scheme, err := s.SchemeRepo.GetByID(res.PriceSchemeID)
	if err != nil {
		return nil, err
	}
	enriched.PriceScheme = scheme

	user, err := s.UserRepo.GetByID(res.UserID)
	if err != nil {
		return nil, err
	}
	enriched.User = user

	return enriched, nil
}

// GetUserReservations lists a user's reservations, newest first.
func (s *DefaultReservationService) GetUserReservations(userID string) ([]models.Reservation, error) {
	return s.Repo.GetByUser(userID)
}

// GetAllReservations lists every reservation, newest first. Admin only.
func (s *DefaultReservationService) GetAllReservations() ([]models.Reservation, error) {
	return s.Repo.GetAll()
}

// OutstandingGroups groups the user's unpaid reservations by calendar month
// and business flag.
func (s *DefaultReservationService) OutstandingGroups(userID string) ([]models.ReservationGroup, error) {
	reservations, err := s.Repo.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	paid, err := s.paidReservationIDs(userID)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		month      string
		isBusiness bool
	}
	grouped := make(map[groupKey]*models.ReservationGroup)
	for _, res := range reservations {
		if paid[res.ID] {
			continue
		}
		key := groupKey{
			month:      res.ReservationStart.Format("2006-01"),
			isBusiness: res.IsBusinessTransaction,
		}
		group, ok := grouped[key]
		if !ok {
			group = &models.ReservationGroup{Month: key.month, IsBusiness: key.isBusiness}
			grouped[key] = group
		}
		group.Reservations = append(group.Reservations, res)
		group.ReservationIDs = append(group.ReservationIDs, res.ID)
		group.TotalDueEuros = billing.Round2(group.TotalDueEuros + res.TotalCosts)
	}

	groups := make([]models.ReservationGroup, 0, len(grouped))
	for _, group := range grouped {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Month != groups[j].Month {
			return groups[i].Month < groups[j].Month
		}
		return !groups[i].IsBusiness && groups[j].IsBusiness
	})
	return groups, nil
}

// paidReservationIDs collects ids of reservations covered by a payment that
// is accepted or explicitly marked paid.
func (s *DefaultReservationService) paidReservationIDs(userID string) (map[string]bool, error) {
	payments, err := s.PaymentRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	paid := make(map[string]bool)
	for _, p := range payments {
		if p.BunqStatus != models.PaymentStatusAccepted && p.PaidAt == nil {
			continue
		}
		for _, id := range p.ReservationsPaid {
			paid[id] = true
		}
	}
	return paid, nil
}

// SetBusinessFlag toggles the business marker on a reservation. Only the
// owner may change it; the cached total_costs stays untouched.
func (s *DefaultReservationService) SetBusinessFlag(userID, reservationID string, isBusiness bool) error {
	res, err := s.Repo.GetByID(reservationID)
	if err != nil {
		return err
	}
	if res == nil {
		return fmt.Errorf("reservation %s not found", reservationID)
	}
	if res.UserID != userID {
		return fmt.Errorf("reservation %s does not belong to user %s", reservationID, userID)
	}
	return s.Repo.UpdateSetDocument(reservationID, bson.M{"is_business_transaction": isBusiness})
}

// Breakdown renders the cost calculation behind a reservation's total.
func (s *DefaultReservationService) Breakdown(id string) (*models.CostBreakdown, error) {
	res, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("reservation %s not found", id)
	}

	scheme, err := s.SchemeRepo.GetByID(res.PriceSchemeID)
	if err != nil {
		return nil, err
	}
	if scheme == nil {
		return nil, fmt.Errorf("price scheme %s not found", res.PriceSchemeID)
	}

	return &models.CostBreakdown{
		TimeCosts: billing.TimeCostsBreakdown(
			res.ReservationStart, res.ReservationEnd,
			res.EffectiveStart, res.EffectiveEnd, *scheme),
		KilometerCosts: billing.KilometerCostsBreakdown(res.KilometersDriven, *scheme),
		TotalCosts:     res.TotalCosts,
	}, nil
}
