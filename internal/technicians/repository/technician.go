package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workbay/pkg/config"
	"workbay/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Technicians"

var (
	ErrNotFound  = errors.New("technician not found")
	ErrInvalidID = errors.New("invalid technician ID format")
)

type TechnicianRepository interface {
	Create(ctx context.Context, technician *model.Technician) error
	FindByID(ctx context.Context, tenantID string, id string) (*model.Technician, error)
	FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Technician, error)
	Count(ctx context.Context, tenantID string) (int64, error)
	SetActive(ctx context.Context, tenantID string, id string, active bool) error
}

type mongoTechnicianRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTechnicianRepository(cfg *config.Config) TechnicianRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTechnicianRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoTechnicianRepository) Create(ctx context.Context, technician *model.Technician) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	technician.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, technician)
	if err != nil {
		return fmt.Errorf("failed to create technician: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		technician.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTechnicianRepository) FindByID(ctx context.Context, tenantID string, id string) (*model.Technician, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	var technician model.Technician
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "tenant_id": tenantID}).Decode(&technician)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find technician: %w", err)
	}

	return &technician, nil
}

func (r *mongoTechnicianRepository) FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Technician, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find technicians: %w", err)
	}
	defer cursor.Close(ctx)

	var technicians []*model.Technician
	if err = cursor.All(ctx, &technicians); err != nil {
		return nil, fmt.Errorf("failed to decode technicians: %w", err)
	}

	return technicians, nil
}

func (r *mongoTechnicianRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count technicians: %w", err)
	}
	return count, nil
}

func (r *mongoTechnicianRepository) SetActive(ctx context.Context, tenantID string, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "tenant_id": tenantID},
		bson.M{"$set": bson.M{"active": active}},
	)
	if err != nil {
		return fmt.Errorf("failed to update technician: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
