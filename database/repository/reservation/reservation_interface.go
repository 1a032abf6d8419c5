package reservationRepo

import (
	"time"

	"autodeel/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ReservationRepository defines data access for reservation documents.
type ReservationRepository interface {
	Create(res *models.Reservation) error
	Update(res *models.Reservation) error
	UpdateSetDocument(id string, updateDoc bson.M) error
	Delete(id string) error
	GetByID(id string) (*models.Reservation, error)
	GetByUser(userID string) ([]models.Reservation, error)
	GetByDateRange(start, end time.Time) ([]models.Reservation, error)
	GetAll() ([]models.Reservation, error)
}
