package reservation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"autodeel/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// --- hand-written fakes ---

type fakeReservationRepo struct {
	reservations map[string]*models.Reservation
	created      []string
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[string]*models.Reservation)}
}

func (r *fakeReservationRepo) Create(res *models.Reservation) error {
	cp := *res
	r.reservations[res.ID] = &cp
	r.created = append(r.created, res.ID)
	return nil
}

func (r *fakeReservationRepo) Update(res *models.Reservation) error { return nil }

func (r *fakeReservationRepo) UpdateSetDocument(id string, doc bson.M) error {
	res, ok := r.reservations[id]
	if !ok {
		return fmt.Errorf("reservation with id %s not found", id)
	}
	if flag, ok := doc["is_business_transaction"].(bool); ok {
		res.IsBusinessTransaction = flag
	}
	return nil
}

func (r *fakeReservationRepo) Delete(id string) error { return nil }

func (r *fakeReservationRepo) GetByID(id string) (*models.Reservation, error) {
	res, ok := r.reservations[id]
	if !ok {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

func (r *fakeReservationRepo) GetByUser(userID string) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, id := range r.created {
		if res := r.reservations[id]; res.UserID == userID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) GetByDateRange(start, end time.Time) ([]models.Reservation, error) {
	return nil, nil
}

func (r *fakeReservationRepo) GetAll() ([]models.Reservation, error) { return nil, nil }

type fakePaymentRepo struct {
	payments []models.Payment
}

func (r *fakePaymentRepo) Create(p *models.Payment) error { return nil }
func (r *fakePaymentRepo) UpdateSetDocument(id string, doc bson.M) error { return nil }
func (r *fakePaymentRepo) GetByID(id string) (*models.Payment, error) { return nil, nil }
func (r *fakePaymentRepo) GetOutstanding() ([]models.Payment, error) { return nil, nil }
func (r *fakePaymentRepo) GetByUser(userID string) ([]models.Payment, error) {
	return r.payments, nil
}

type fakeSchemeRepo struct {
	schemes map[string]*models.PriceScheme
}

func (r *fakeSchemeRepo) Create(s *models.PriceScheme) error { return nil }
func (r *fakeSchemeRepo) GetByID(id string) (*models.PriceScheme, error) {
	return r.schemes[id], nil
}
func (r *fakeSchemeRepo) GetAll() ([]models.PriceScheme, error) { return nil, nil }
func (r *fakeSchemeRepo) EnsureDefault() (*models.PriceScheme, error) { return nil, nil }

type fakeUserRepo struct {
	users map[string]*models.User
}

func (r *fakeUserRepo) Create(u *models.User) error { return nil }
func (r *fakeUserRepo) GetByID(id string) (*models.User, error) { return r.users[id], nil }
func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) { return nil, nil }
func (r *fakeUserRepo) GetAll() ([]models.User, error) { return nil, nil }

var testScheme = models.PriceScheme{
	ID:                              "scheme-1",
	Name:                            "standaard",
	CostsPerKilometer:               0.25,
	CostsPerEffectiveHour:           5.00,
	CostsPerUnusedReservedHourStart: 2.50,
	CostsPerUnusedReservedHourEnd:   2.50,
}

func newService(resRepo *fakeReservationRepo, payRepo *fakePaymentRepo) *DefaultReservationService {
	return &DefaultReservationService{
		Repo:        resRepo,
		PaymentRepo: payRepo,
		SchemeRepo:  &fakeSchemeRepo{schemes: map[string]*models.PriceScheme{"scheme-1": &testScheme}},
		UserRepo: &fakeUserRepo{users: map[string]*models.User{
			"user-1": {ID: "user-1", Email: "lid@example.org"},
		}},
		Logger: zap.NewNop(),
	}
}

func day(hour, minute int) time.Time {
	return time.Date(2025, 9, 3, hour, minute, 0, 0, time.Local)
}

func km(v float64) *float64 { return &v }

// --- tests ---

func TestImport_ComputesTotalCostsAtSaveTime(t *testing.T) {
	resRepo := newFakeReservationRepo()
	svc := newService(resRepo, &fakePaymentRepo{})

	report, err := svc.Import(context.Background(), []models.ReservationImportRow{{
		UserID:           "user-1",
		ReservationStart: day(8, 0),
		ReservationEnd:   day(18, 0),
		EffectiveStart:   day(9, 0),
		EffectiveEnd:     day(17, 0),
		KilometersDriven: km(40),
		PriceSchemeID:    "scheme-1",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.CreatedCount)
	assert.Empty(t, report.Errors)

	res, err := resRepo.GetByID(report.CreatedIDs[0])
	require.NoError(t, err)
	assert.Equal(t, 55.00, res.TotalCosts)
	assert.False(t, res.IsBusinessTransaction)
}

func TestImport_DerivesKilometersFromOdometer(t *testing.T) {
	resRepo := newFakeReservationRepo()
	svc := newService(resRepo, &fakePaymentRepo{})

	report, err := svc.Import(context.Background(), []models.ReservationImportRow{{
		UserID:           "user-1",
		ReservationStart: day(9, 0),
		ReservationEnd:   day(11, 0),
		EffectiveStart:   day(9, 0),
		EffectiveEnd:     day(11, 0),
		OdometerStart:    km(12000),
		OdometerEnd:      km(12040),
		PriceSchemeID:    "scheme-1",
	}})
	require.NoError(t, err)
	require.Equal(t, 1, report.CreatedCount)

	res, _ := resRepo.GetByID(report.CreatedIDs[0])
	assert.Equal(t, 40.0, res.KilometersDriven)
}

func TestImport_CollectsRowErrorsWithoutAborting(t *testing.T) {
	resRepo := newFakeReservationRepo()
	svc := newService(resRepo, &fakePaymentRepo{})

	rows := []models.ReservationImportRow{
		{
			// inverted reservation window
			UserID:           "user-1",
			ReservationStart: day(18, 0),
			ReservationEnd:   day(8, 0),
			EffectiveStart:   day(9, 0),
			EffectiveEnd:     day(17, 0),
			KilometersDriven: km(10),
			PriceSchemeID:    "scheme-1",
		},
		{
			// unknown price scheme
			UserID:           "user-1",
			ReservationStart: day(8, 0),
			ReservationEnd:   day(18, 0),
			EffectiveStart:   day(9, 0),
			EffectiveEnd:     day(17, 0),
			KilometersDriven: km(10),
			PriceSchemeID:    "missing",
		},
		{
			// valid
			UserID:           "user-1",
			ReservationStart: day(8, 0),
			ReservationEnd:   day(18, 0),
			EffectiveStart:   day(9, 0),
			EffectiveEnd:     day(17, 0),
			KilometersDriven: km(10),
			PriceSchemeID:    "scheme-1",
		},
	}

	report, err := svc.Import(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, report.CreatedCount)
	assert.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "row 1")
	assert.Contains(t, report.Errors[1], "row 2")
}

func addReservation(repo *fakeReservationRepo, id, month string, business bool, costs float64) {
	start, _ := time.Parse("2006-01", month)
	repo.Create(&models.Reservation{
		ID:                    id,
		UserID:                "user-1",
		ReservationStart:      start.AddDate(0, 0, 2),
		ReservationEnd:        start.AddDate(0, 0, 2).Add(4 * time.Hour),
		EffectiveStart:        start.AddDate(0, 0, 2),
		EffectiveEnd:          start.AddDate(0, 0, 2).Add(4 * time.Hour),
		PriceSchemeID:         "scheme-1",
		TotalCosts:            costs,
		IsBusinessTransaction: business,
	})
}

func TestOutstandingGroups_GroupsByMonthAndBusinessFlag(t *testing.T) {
	resRepo := newFakeReservationRepo()
	addReservation(resRepo, "res-1", "2025-08", false, 20.00)
	addReservation(resRepo, "res-2", "2025-09", false, 55.00)
	addReservation(resRepo, "res-3", "2025-09", false, 12.50)
	addReservation(resRepo, "res-4", "2025-09", true, 30.00)

	svc := newService(resRepo, &fakePaymentRepo{})
	groups, err := svc.OutstandingGroups("user-1")
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, "2025-08", groups[0].Month)
	assert.Equal(t, 20.00, groups[0].TotalDueEuros)

	assert.Equal(t, "2025-09", groups[1].Month)
	assert.False(t, groups[1].IsBusiness)
	assert.Equal(t, 67.50, groups[1].TotalDueEuros)
	assert.ElementsMatch(t, []string{"res-2", "res-3"}, groups[1].ReservationIDs)

	assert.Equal(t, "2025-09", groups[2].Month)
	assert.True(t, groups[2].IsBusiness)
}

func TestOutstandingGroups_ExcludesPaidReservations(t *testing.T) {
	resRepo := newFakeReservationRepo()
	addReservation(resRepo, "res-1", "2025-09", false, 55.00)
	addReservation(resRepo, "res-2", "2025-09", false, 12.50)

	now := time.Now()
	payRepo := &fakePaymentRepo{payments: []models.Payment{
		{ID: "pay-1", UserID: "user-1", ReservationsPaid: []string{"res-1"}, BunqStatus: models.PaymentStatusAccepted, PaidAt: &now},
		// Pending payments do not count as paid.
		{ID: "pay-2", UserID: "user-1", ReservationsPaid: []string{"res-2"}, BunqStatus: models.PaymentStatusPending},
	}}

	svc := newService(resRepo, payRepo)
	groups, err := svc.OutstandingGroups("user-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"res-2"}, groups[0].ReservationIDs)
}

func TestSetBusinessFlag_OwnerOnly(t *testing.T) {
	resRepo := newFakeReservationRepo()
	addReservation(resRepo, "res-1", "2025-09", false, 55.00)
	svc := newService(resRepo, &fakePaymentRepo{})

	require.NoError(t, svc.SetBusinessFlag("user-1", "res-1", true))
	res, _ := resRepo.GetByID("res-1")
	assert.True(t, res.IsBusinessTransaction)

	err := svc.SetBusinessFlag("user-2", "res-1", false)
	assert.Error(t, err)
}

func TestBreakdown_RendersCalculation(t *testing.T) {
	resRepo := newFakeReservationRepo()
	resRepo.Create(&models.Reservation{
		ID:               "res-1",
		UserID:           "user-1",
		ReservationStart: day(8, 0),
		ReservationEnd:   day(18, 0),
		EffectiveStart:   day(9, 0),
		EffectiveEnd:     day(17, 0),
		KilometersDriven: 40,
		PriceSchemeID:    "scheme-1",
		TotalCosts:       55.00,
	})
	svc := newService(resRepo, &fakePaymentRepo{})

	breakdown, err := svc.Breakdown("res-1")
	require.NoError(t, err)
	assert.Contains(t, breakdown.TimeCosts, "effective usage")
	assert.Contains(t, breakdown.KilometerCosts, "40.0 km")
	assert.Equal(t, 55.00, breakdown.TotalCosts)
}
