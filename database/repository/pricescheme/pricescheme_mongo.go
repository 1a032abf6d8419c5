package priceSchemeRepo

import (
	"context"
	"fmt"
	"time"

	"autodeel/database"
	"autodeel/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPriceSchemeRepo implements PriceSchemeRepository using MongoDB.
type MongoPriceSchemeRepo struct {
	coll *mongo.Collection
}

// NewMongoPriceSchemeRepo creates a new instance of PriceSchemeRepository using MongoDB.
func NewMongoPriceSchemeRepo() PriceSchemeRepository {
	coll := database.MongoClient.Database("autodeel").Collection("price_schemes")
	repo := &MongoPriceSchemeRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoPriceSchemeRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new price scheme document.
func (r *MongoPriceSchemeRepo) Create(scheme *models.PriceScheme) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	scheme.CreatedAt = now
	scheme.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, scheme)
	if err != nil {
		return fmt.Errorf("failed to create price scheme: %w", err)
	}
	return nil
}

// GetByID retrieves a price scheme by its unique ID.
func (r *MongoPriceSchemeRepo) GetByID(id string) (*models.PriceScheme, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var scheme models.PriceScheme
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&scheme); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch price scheme with id %s: %w", id, err)
	}
	return &scheme, nil
}

// GetAll retrieves all price scheme documents.
func (r *MongoPriceSchemeRepo) GetAll() ([]models.PriceScheme, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price schemes: %w", err)
	}
	defer cursor.Close(ctx)

	var schemes []models.PriceScheme
	if err := cursor.All(ctx, &schemes); err != nil {
		return nil, fmt.Errorf("failed to decode price schemes: %w", err)
	}
	return schemes, nil
}

// EnsureDefault seeds a default rate card if none exists yet.
func (r *MongoPriceSchemeRepo) EnsureDefault() (*models.PriceScheme, error) {
	schemes, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	if len(schemes) > 0 {
		return &schemes[0], nil
	}

	scheme := &models.PriceScheme{
		ID:                              uuid.New().String(),
		Name:                            "standaard",
		CostsPerKilometer:               0.25,
		CostsPerEffectiveHour:           5.00,
		CostsPerUnusedReservedHourStart: 2.50,
		CostsPerUnusedReservedHourEnd:   2.50,
	}
	if err := r.Create(scheme); err != nil {
		return nil, fmt.Errorf("failed to seed default price scheme: %w", err)
	}
	return scheme, nil
}
