package priceSchemeRepo

import "autodeel/models"

// PriceSchemeRepository defines data access for price scheme documents.
type PriceSchemeRepository interface {
	Create(scheme *models.PriceScheme) error
	GetByID(id string) (*models.PriceScheme, error)
	GetAll() ([]models.PriceScheme, error)
	// EnsureDefault seeds a default rate card if the collection is empty and
	// returns it (or the already existing first scheme).
	EnsureDefault() (*models.PriceScheme, error)
}
