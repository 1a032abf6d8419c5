package payment

import (
	"context"

	"autodeel/models"
	"autodeel/services/bunq"
)

// Gateway is the slice of the bunq client the payment service needs.
type Gateway interface {
	CreatePaymentRequest(ctx context.Context, amount float64, description, counterpartyEmail, redirectURL string) (*bunq.PaymentRequestResult, error)
	PaymentRequestStatus(ctx context.Context, requestID int64) (string, error)
}

// PaymentService creates payments for groups of outstanding reservations and
// reconciles their remote status.
type PaymentService interface {
	// PayGroup creates a payment covering the user's unpaid reservations of
	// the given month/business group and requests the money through the
	// gateway. Returns the payment including its shareable payment URL.
	PayGroup(ctx context.Context, userID, month string, isBusiness bool) (*models.Payment, error)

	GetPayment(id string) (*models.Payment, error)
	GetUserPayments(userID string) ([]models.Payment, error)

	// MarkPaid is the explicit admin action setting paid_at.
	MarkPaid(id string) error

	// SyncPayment reconciles one payment against the gateway. Returns true
	// when local state changed. Finalized payments are skipped.
	SyncPayment(ctx context.Context, p *models.Payment) (bool, error)

	// SyncOutstanding reconciles every non-finalized payment with a remote
	// request id. Per-payment failures are collected, never aborting the
	// batch.
	SyncOutstanding(ctx context.Context) (*SyncReport, error)
}

// SyncReport is the outcome of a bulk reconciliation run.
type SyncReport struct {
	UpdatedCount int      `json:"updated_count"`
	Errors       []string `json:"errors"`
}
