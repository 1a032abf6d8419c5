package models

import "time"

// Payment statuses as normalized from the remote payment-request API.
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusAccepted = "ACCEPTED"
	PaymentStatusRejected = "REJECTED"
)

// Payment is one billing transaction covering one or more reservations.
// A reservation counts as paid once it appears in ReservationsPaid of a
// payment whose status is ACCEPTED or whose PaidAt is set.
type Payment struct {
	ID               string     `bson:"id" json:"id"`
	UserID           string     `bson:"user_id" json:"user_id"`
	AmountInEuros    float64    `bson:"amount_in_euros" json:"amount_in_euros"`
	ReservationsPaid []string   `bson:"reservations_paid" json:"reservations_paid"`
	BunqRequestID    string     `bson:"bunq_request_id" json:"bunq_request_id"`
	BunqStatus       string     `bson:"bunq_status" json:"bunq_status"`
	BunqPaymentURL   string     `bson:"bunq_payment_url" json:"bunq_payment_url"`
	PaidAt           *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at" json:"updated_at"`
}

// Finalized reports whether reconciliation can skip this payment.
func (p *Payment) Finalized() bool {
	return p.PaidAt != nil && p.BunqStatus != PaymentStatusPending
}
