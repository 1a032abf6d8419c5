package payment

import (
	"context"
	"fmt"
	"time"

	paymentRepo "autodeel/database/repository/payment"
	userRepo "autodeel/database/repository/user"
	"autodeel/models"
	"autodeel/services/reservation"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// idempotencyTTL bounds how long a "pay now" click blocks a duplicate for
// the same group.
const idempotencyTTL = 15 * time.Minute

// DefaultPaymentService is the production implementation.
type DefaultPaymentService struct {
	Repo           paymentRepo.PaymentRepository
	UserRepo       userRepo.UserRepository
	ReservationSvc reservation.ReservationService
	Gateway        Gateway
	Cache          *redis.Client
	Logger         *zap.Logger

	// RedirectURL is surfaced to the gateway so the payer lands back on the
	// application after paying.
	RedirectURL string

	// SyncDelay overrides the pause between remote calls in bulk
	// reconciliation. Zero means the default.
	SyncDelay time.Duration
}

// PayGroup creates a payment for one outstanding month/business group and
// obtains a shareable payment URL from the gateway.
func (s *DefaultPaymentService) PayGroup(ctx context.Context, userID, month string, isBusiness bool) (*models.Payment, error) {
	if existing, err := s.claimIdempotency(ctx, userID, month, isBusiness); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	// The claim is dropped again on every failure path, so a failed attempt
	// never blocks the retry for the rest of the TTL. The release uses a
	// fresh context because the request's own context may already be dead.
	claimed := true
	defer func() {
		if claimed {
			s.releaseIdempotency(context.Background(), userID, month, isBusiness)
		}
	}()

	groups, err := s.ReservationSvc.OutstandingGroups(userID)
	if err != nil {
		return nil, err
	}
	var group *models.ReservationGroup
	for i := range groups {
		if groups[i].Month == month && groups[i].IsBusiness == isBusiness {
			group = &groups[i]
			break
		}
	}
	if group == nil || len(group.Reservations) == 0 {
		return nil, fmt.Errorf("no outstanding reservations for %s (business=%t)", month, isBusiness)
	}

	user, err := s.UserRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	payment := &models.Payment{
		ID:               uuid.New().String(),
		UserID:           userID,
		AmountInEuros:    group.TotalDueEuros,
		ReservationsPaid: group.ReservationIDs,
		BunqStatus:       models.PaymentStatusPending,
	}
	if err := s.Repo.Create(payment); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("autodeel %s", month)
	if isBusiness {
		description += " zakelijk"
	}

	result, err := s.Gateway.CreatePaymentRequest(ctx, payment.AmountInEuros, description, user.Email, s.RedirectURL)
	if err != nil {
		// The local payment stays without a request id so a retry can pick
		// the group up again.
		return nil, fmt.Errorf("failed to create payment request: %w", err)
	}

	payment.BunqRequestID = fmt.Sprintf("%d", result.RequestID)
	payment.BunqPaymentURL = result.PaymentURL
	if err := s.Repo.UpdateSetDocument(payment.ID, bson.M{
		"bunq_request_id":  payment.BunqRequestID,
		"bunq_payment_url": payment.BunqPaymentURL,
	}); err != nil {
		return nil, err
	}

	s.rememberIdempotency(ctx, userID, month, isBusiness, payment.ID)
	claimed = false
	s.Logger.Info("payment request created",
		zap.String("paymentID", payment.ID),
		zap.String("requestID", payment.BunqRequestID),
		zap.Float64("amount", payment.AmountInEuros))
	return payment, nil
}

// GetPayment retrieves a payment by id.
func (s *DefaultPaymentService) GetPayment(id string) (*models.Payment, error) {
	payment, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, fmt.Errorf("payment %s not found", id)
	}
	return payment, nil
}

// GetUserPayments lists a user's payments, newest first.
func (s *DefaultPaymentService) GetUserPayments(userID string) ([]models.Payment, error) {
	return s.Repo.GetByUser(userID)
}

// MarkPaid is the explicit admin action: sets paid_at if not already set.
func (s *DefaultPaymentService) MarkPaid(id string) error {
	payment, err := s.GetPayment(id)
	if err != nil {
		return err
	}
	if payment.PaidAt != nil {
		return nil
	}
	return s.Repo.UpdateSetDocument(id, bson.M{"paid_at": time.Now()})
}

// --- idempotency guard ---

func idempotencyKey(userID, month string, isBusiness bool) string {
	return fmt.Sprintf("payidem:%s:%s:%t", userID, month, isBusiness)
}

// claimIdempotency reserves the group for this call. When a previous call
// already created a payment for the same group recently, that payment is
// returned instead of creating a duplicate.
func (s *DefaultPaymentService) claimIdempotency(ctx context.Context, userID, month string, isBusiness bool) (*models.Payment, error) {
	if s.Cache == nil {
		return nil, nil
	}
	key := idempotencyKey(userID, month, isBusiness)

	set, err := s.Cache.SetNX(ctx, key, "pending", idempotencyTTL).Result()
	if err != nil {
		// Cache trouble must not block paying; log and continue.
		s.Logger.Warn("idempotency cache unavailable", zap.Error(err))
		return nil, nil
	}
	if set {
		return nil, nil
	}

	paymentID, err := s.Cache.Get(ctx, key).Result()
	if err != nil || paymentID == "" || paymentID == "pending" {
		return nil, fmt.Errorf("a payment for %s is already being created, try again shortly", month)
	}
	return s.GetPayment(paymentID)
}

func (s *DefaultPaymentService) rememberIdempotency(ctx context.Context, userID, month string, isBusiness bool, paymentID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, idempotencyKey(userID, month, isBusiness), paymentID, idempotencyTTL).Err(); err != nil {
		s.Logger.Warn("failed to store idempotency key", zap.Error(err))
	}
}

func (s *DefaultPaymentService) releaseIdempotency(ctx context.Context, userID, month string, isBusiness bool) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, idempotencyKey(userID, month, isBusiness)).Err(); err != nil {
		s.Logger.Warn("failed to release idempotency key", zap.Error(err))
	}
}
