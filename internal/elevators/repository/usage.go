package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	elevatorserrors "workbay/internal/elevators/errors"
	"workbay/pkg/config"
	"workbay/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const UsageCollectionName = "Elevator_usages"

// UsageRepository is the lift occupancy ledger. A partial unique index on
// elevator_id over open records (end == null) guarantees at most one open
// usage per lift; Insert surfaces the violation as ErrAlreadyInUse.
type UsageRepository interface {
	Insert(ctx context.Context, usage *model.ElevatorUsage) error
	FindOpenByElevator(ctx context.Context, tenantID string, elevatorID string) (*model.ElevatorUsage, error)
	FindOpenByTenant(ctx context.Context, tenantID string) ([]*model.ElevatorUsage, error)
	Activate(ctx context.Context, tenantID string, usageID string, start time.Time) error
	Close(ctx context.Context, tenantID string, usageID string, end time.Time, note string) error
	FindTouchingWindow(ctx context.Context, tenantID string, elevatorID string, start time.Time, end time.Time) ([]*model.ElevatorUsage, error)
	FindByElevator(ctx context.Context, tenantID string, elevatorID string, limit int, offset int64) ([]*model.ElevatorUsage, error)
}

type mongoUsageRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUsageRepository(cfg *config.Config) UsageRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUsageRepository{
		cfg:        cfg,
		collection: db.Collection(UsageCollectionName),
	}
}

func (r *mongoUsageRepository) Insert(ctx context.Context, usage *model.ElevatorUsage) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	usage.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, usage)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return elevatorserrors.ErrAlreadyInUse
		}
		return fmt.Errorf("failed to insert usage record: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		usage.ID = oid.Hex()
	}
	return nil
}

func (r *mongoUsageRepository) FindOpenByElevator(ctx context.Context, tenantID string, elevatorID string) (*model.ElevatorUsage, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"tenant_id":   tenantID,
		"elevator_id": elevatorID,
		"end":         nil,
	}

	var usage model.ElevatorUsage
	err := r.collection.FindOne(ctx, filter).Decode(&usage)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, elevatorserrors.ErrNoOpenUsage
		}
		return nil, fmt.Errorf("failed to find open usage: %w", err)
	}

	return &usage, nil
}

func (r *mongoUsageRepository) FindOpenByTenant(ctx context.Context, tenantID string) ([]*model.ElevatorUsage, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID, "end": nil})
	if err != nil {
		return nil, fmt.Errorf("failed to find open usages: %w", err)
	}
	defer cursor.Close(ctx)

	var usages []*model.ElevatorUsage
	if err = cursor.All(ctx, &usages); err != nil {
		return nil, fmt.Errorf("failed to decode open usages: %w", err)
	}

	return usages, nil
}

func (r *mongoUsageRepository) Activate(ctx context.Context, tenantID string, usageID string, start time.Time) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(usageID)
	if err != nil {
		return fmt.Errorf("%w: %s", elevatorserrors.ErrInvalidID, usageID)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "tenant_id": tenantID, "end": nil},
		bson.M{"$set": bson.M{"running": true, "start": start}},
	)
	if err != nil {
		return fmt.Errorf("failed to activate usage: %w", err)
	}
	if result.MatchedCount == 0 {
		return elevatorserrors.ErrNoOpenUsage
	}
	return nil
}

// Close stamps the end time on an open record. A non-empty note replaces the
// stored one; the service merges notes before calling.
func (r *mongoUsageRepository) Close(ctx context.Context, tenantID string, usageID string, end time.Time, note string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(usageID)
	if err != nil {
		return fmt.Errorf("%w: %s", elevatorserrors.ErrInvalidID, usageID)
	}

	update := bson.M{"end": end, "running": false}
	if note != "" {
		update["note"] = note
	}
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "tenant_id": tenantID, "end": nil},
		bson.M{"$set": update},
	)
	if err != nil {
		return fmt.Errorf("failed to close usage: %w", err)
	}
	if result.MatchedCount == 0 {
		return elevatorserrors.ErrNoOpenUsage
	}
	return nil
}

// FindTouchingWindow returns every ledger record, open or closed, that can
// overlap [start, end): closed records by their stored interval, open records
// by construction (an open record blocks any future window).
func (r *mongoUsageRepository) FindTouchingWindow(ctx context.Context, tenantID string, elevatorID string, start time.Time, end time.Time) ([]*model.ElevatorUsage, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"tenant_id":   tenantID,
		"elevator_id": elevatorID,
		"$or": []bson.M{
			{"end": nil},
			{"start": bson.M{"$lt": end}, "end": bson.M{"$gt": start}},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find usages in window: %w", err)
	}
	defer cursor.Close(ctx)

	var usages []*model.ElevatorUsage
	if err = cursor.All(ctx, &usages); err != nil {
		return nil, fmt.Errorf("failed to decode usages in window: %w", err)
	}

	return usages, nil
}

func (r *mongoUsageRepository) FindByElevator(ctx context.Context, tenantID string, elevatorID string, limit int, offset int64) ([]*model.ElevatorUsage, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID, "elevator_id": elevatorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find usage history: %w", err)
	}
	defer cursor.Close(ctx)

	var usages []*model.ElevatorUsage
	if err = cursor.All(ctx, &usages); err != nil {
		return nil, fmt.Errorf("failed to decode usage history: %w", err)
	}

	return usages, nil
}
