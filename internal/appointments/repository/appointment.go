package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentserrors "workbay/internal/appointments/errors"
	"workbay/pkg/config"
	mongotx "workbay/pkg/db/mongo"
	"workbay/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Appointments"

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, tenantID string, id string) (*model.Appointment, error)
	FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Appointment, error)
	Count(ctx context.Context, tenantID string) (int64, error)
	Update(ctx context.Context, tenantID string, id string, appointment *model.Appointment) error
	UpdateStatus(ctx context.Context, tenantID string, id string, status model.AppointmentStatus) error
	FindActiveInRange(ctx context.Context, tenantID string, start time.Time, end time.Time) ([]*model.Appointment, error)
	FindActiveByTechnician(ctx context.Context, tenantID string, technicianID string, start time.Time, end time.Time) ([]*model.Appointment, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
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

func (r *mongoAppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	appointment.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, appointment)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appointment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, tenantID string, id string) (*model.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	var appointment model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "tenant_id": tenantID}).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appointmentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appointment, nil
}

func (r *mongoAppointmentRepository) FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	return appointments, nil
}

func (r *mongoAppointmentRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) Update(ctx context.Context, tenantID string, id string, appointment *model.Appointment) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"customer_name":  appointment.CustomerName,
			"customer_phone": appointment.CustomerPhone,
			"technician_id":  appointment.TechnicianID,
			"scheduled_at":   appointment.ScheduledAt,
			"duration_min":   appointment.DurationMin,
			"status":         appointment.Status,
			"notes":          appointment.Notes,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "tenant_id": tenantID}, update)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return appointmentserrors.ErrNotFound
	}
	return nil
}

func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, tenantID string, id string, status model.AppointmentStatus) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "tenant_id": tenantID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return appointmentserrors.ErrNotFound
	}
	return nil
}

// FindActiveInRange returns non-terminal appointments whose window may touch
// [start, end). The scheduled_at bound over-fetches by the longest allowed
// duration so long appointments straddling the range start are included.
func (r *mongoAppointmentRepository) FindActiveInRange(ctx context.Context, tenantID string, start time.Time, end time.Time) ([]*model.Appointment, error) {
	return r.findActive(ctx, bson.M{
		"tenant_id":    tenantID,
		"status":       bson.M{"$in": model.ActiveAppointmentStatuses()},
		"scheduled_at": rangeBound(start, end),
	})
}

func (r *mongoAppointmentRepository) FindActiveByTechnician(ctx context.Context, tenantID string, technicianID string, start time.Time, end time.Time) ([]*model.Appointment, error) {
	return r.findActive(ctx, bson.M{
		"tenant_id":     tenantID,
		"technician_id": technicianID,
		"status":        bson.M{"$in": model.ActiveAppointmentStatuses()},
		"scheduled_at":  rangeBound(start, end),
	})
}

func rangeBound(start, end time.Time) bson.M {
	maxDuration := 24 * time.Hour
	return bson.M{
		"$gt": start.Add(-maxDuration),
		"$lt": end,
	}
}

func (r *mongoAppointmentRepository) findActive(ctx context.Context, filter bson.M) ([]*model.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode active appointments: %w", err)
	}

	return appointments, nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
