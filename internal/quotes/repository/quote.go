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

const CollectionName = "Quotes"

var (
	ErrNotFound  = errors.New("quote not found")
	ErrInvalidID = errors.New("invalid quote ID format")
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	FindByID(ctx context.Context, tenantID string, id string) (*model.Quote, error)
	FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Quote, error)
	Count(ctx context.Context, tenantID string) (int64, error)
	UpdateStatus(ctx context.Context, tenantID string, id string, status model.QuoteStatus) error
	SetBackReferences(ctx context.Context, tenantID string, id string, workOrderID string, appointmentID string) error
}

type mongoQuoteRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoQuoteRepository(cfg *config.Config) QuoteRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoQuoteRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoQuoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	quote.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, quote)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		quote.ID = oid.Hex()
	}
	return nil
}

func (r *mongoQuoteRepository) FindByID(ctx context.Context, tenantID string, id string) (*model.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	var quote model.Quote
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "tenant_id": tenantID}).Decode(&quote)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find quote: %w", err)
	}

	return &quote, nil
}

func (r *mongoQuoteRepository) FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find quotes: %w", err)
	}
	defer cursor.Close(ctx)

	var quotes []*model.Quote
	if err = cursor.All(ctx, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode quotes: %w", err)
	}

	return quotes, nil
}

func (r *mongoQuoteRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return count, nil
}

func (r *mongoQuoteRepository) UpdateStatus(ctx context.Context, tenantID string, id string, status model.QuoteStatus) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "tenant_id": tenantID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update quote status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoQuoteRepository) SetBackReferences(ctx context.Context, tenantID string, id string, workOrderID string, appointmentID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	set := bson.M{}
	if workOrderID != "" {
		set["work_order_id"] = workOrderID
	}
	if appointmentID != "" {
		set["appointment_id"] = appointmentID
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "tenant_id": tenantID},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update quote references: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
