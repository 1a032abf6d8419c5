package paymentRepo

import (
	"autodeel/models"

	"go.mongodb.org/mongo-driver/bson"
)

// PaymentRepository defines data access for payment documents.
type PaymentRepository interface {
	Create(payment *models.Payment) error
	UpdateSetDocument(id string, updateDoc bson.M) error
	GetByID(id string) (*models.Payment, error)
	GetByUser(userID string) ([]models.Payment, error)
	// GetOutstanding returns payments with a remote request id that are not
	// yet finalized: paid_at unset or status still PENDING.
	GetOutstanding() ([]models.Payment, error)
}
