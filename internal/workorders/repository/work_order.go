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

const CollectionName = "Work_orders"

var (
	ErrNotFound  = errors.New("work order not found")
	ErrInvalidID = errors.New("invalid work order ID format")
)

type WorkOrderRepository interface {
	Create(ctx context.Context, order *model.WorkOrder) error
	FindByID(ctx context.Context, tenantID string, id string) (*model.WorkOrder, error)
	FindByQuote(ctx context.Context, tenantID string, quoteID string) (*model.WorkOrder, error)
	FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.WorkOrder, error)
	Count(ctx context.Context, tenantID string) (int64, error)
	UpdateStatus(ctx context.Context, tenantID string, id string, status model.WorkOrderStatus) error
	FindBlockingInRange(ctx context.Context, tenantID string, start time.Time, end time.Time) ([]*model.WorkOrder, error)
}

type mongoWorkOrderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoWorkOrderRepository(cfg *config.Config) WorkOrderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWorkOrderRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoWorkOrderRepository) Create(ctx context.Context, order *model.WorkOrder) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	order.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to create work order: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid.Hex()
	}
	return nil
}

func (r *mongoWorkOrderRepository) FindByID(ctx context.Context, tenantID string, id string) (*model.WorkOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	var order model.WorkOrder
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "tenant_id": tenantID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find work order: %w", err)
	}

	return &order, nil
}

func (r *mongoWorkOrderRepository) FindByQuote(ctx context.Context, tenantID string, quoteID string) (*model.WorkOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var order model.WorkOrder
	err := r.collection.FindOne(ctx, bson.M{"tenant_id": tenantID, "quote_id": quoteID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find work order by quote: %w", err)
	}

	return &order, nil
}

func (r *mongoWorkOrderRepository) FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.WorkOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find work orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*model.WorkOrder
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode work orders: %w", err)
	}

	return orders, nil
}

func (r *mongoWorkOrderRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count work orders: %w", err)
	}
	return count, nil
}

func (r *mongoWorkOrderRepository) UpdateStatus(ctx context.Context, tenantID string, id string, status model.WorkOrderStatus) error {
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
		return fmt.Errorf("failed to update work order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindBlockingInRange returns in-progress orders with a scheduled window that
// may touch [start, end).
func (r *mongoWorkOrderRepository) FindBlockingInRange(ctx context.Context, tenantID string, start time.Time, end time.Time) ([]*model.WorkOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	maxDuration := 24 * time.Hour
	filter := bson.M{
		"tenant_id": tenantID,
		"status":    model.WorkOrderInProgress,
		"scheduled_start": bson.M{
			"$gt": start.Add(-maxDuration),
			"$lt": end,
		},
		"estimated_hours": bson.M{"$gt": 0},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "scheduled_start", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find blocking work orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*model.WorkOrder
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode blocking work orders: %w", err)
	}

	return orders, nil
}
