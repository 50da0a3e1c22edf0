package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	elevatorserrors "workbay/internal/elevators/errors"
	"workbay/pkg/config"
	mongotx "workbay/pkg/db/mongo"
	"workbay/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Elevators"

type ElevatorRepository interface {
	Create(ctx context.Context, elevator *model.Elevator) error
	FindByID(ctx context.Context, tenantID string, id string) (*model.Elevator, error)
	FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Elevator, error)
	Count(ctx context.Context, tenantID string) (int64, error)
	SetMaintenance(ctx context.Context, tenantID string, id string, maintenance bool) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoElevatorRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoElevatorRepository(cfg *config.Config) ElevatorRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoElevatorRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction, where wrapping the SessionContext would break session
// semantics.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoElevatorRepository) Create(ctx context.Context, elevator *model.Elevator) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	elevator.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, elevator)
	if err != nil {
		return fmt.Errorf("failed to create lift: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		elevator.ID = oid.Hex()
	}
	return nil
}

func (r *mongoElevatorRepository) FindByID(ctx context.Context, tenantID string, id string) (*model.Elevator, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", elevatorserrors.ErrInvalidID, id)
	}

	var elevator model.Elevator
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "tenant_id": tenantID}).Decode(&elevator)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, elevatorserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find lift: %w", err)
	}

	return &elevator, nil
}

func (r *mongoElevatorRepository) FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Elevator, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find lifts: %w", err)
	}
	defer cursor.Close(ctx)

	var elevators []*model.Elevator
	if err = cursor.All(ctx, &elevators); err != nil {
		return nil, fmt.Errorf("failed to decode lifts: %w", err)
	}

	return elevators, nil
}

func (r *mongoElevatorRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count lifts: %w", err)
	}
	return count, nil
}

func (r *mongoElevatorRepository) SetMaintenance(ctx context.Context, tenantID string, id string, maintenance bool) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", elevatorserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "tenant_id": tenantID},
		bson.M{"$set": bson.M{"maintenance": maintenance}},
	)
	if err != nil {
		return fmt.Errorf("failed to update lift maintenance flag: %w", err)
	}
	if result.MatchedCount == 0 {
		return elevatorserrors.ErrNotFound
	}
	return nil
}

func (r *mongoElevatorRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
