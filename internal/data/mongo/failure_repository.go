package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carteira-sync/internal/domain/failure"
)

const (
	// FailureCollectionName is the name of the persistence failure collection in MongoDB
	FailureCollectionName = "persistence_failures"
)

// FailureRepository implements the failure.Repository interface for MongoDB
type FailureRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewFailureRepository creates a new MongoDB failure event repository
func NewFailureRepository(logger *slog.Logger, db *mongo.Database) *FailureRepository {
	return &FailureRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique event id index Create relies on to reject
// redeliveries, plus the lookup indexes.
func (r *FailureRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(FailureCollectionName)
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "entity", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "occurred_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create failure event indexes: %w", err)
	}
	return nil
}

// Create stores a failure event. Returns ErrDuplicateEvent if the event id was
// already recorded.
func (r *FailureRepository) Create(ctx context.Context, event *failure.Event) error {
	collection := r.db.Collection(FailureCollectionName)

	if _, err := collection.InsertOne(ctx, event); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return failure.ErrDuplicateEvent{EventID: event.EventID}
		}
		r.logger.Error("Failed to store failure event",
			"event_id", event.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to store failure event: %w", err)
	}

	return nil
}

// GetByEventID returns ErrEventNotFound if no event has the given id.
func (r *FailureRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*failure.Event, error) {
	collection := r.db.Collection(FailureCollectionName)

	var event failure.Event
	err := collection.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, failure.ErrEventNotFound{EventID: eventID}
		}
		return nil, fmt.Errorf("failed to get failure event: %w", err)
	}

	return &event, nil
}

// GetByEntity returns the newest events of one entity first.
func (r *FailureRepository) GetByEntity(ctx context.Context, entity string, limit, offset int) ([]*failure.Event, error) {
	return r.find(ctx, bson.M{"entity": entity}, limit, offset)
}

func (r *FailureRepository) CountByEntity(ctx context.Context, entity string) (int64, error) {
	collection := r.db.Collection(FailureCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"entity": entity})
	if err != nil {
		r.logger.Error("Failed to count failure events", "entity", entity, "error", err)
		return 0, fmt.Errorf("failed to count failure events: %w", err)
	}

	return count, nil
}

func (r *FailureRepository) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*failure.Event, error) {
	filter := bson.M{
		"occurred_at": bson.M{
			"$gte": startTime,
			"$lte": endTime,
		},
	}
	return r.find(ctx, filter, limit, offset)
}

func (r *FailureRepository) find(ctx context.Context, filter bson.M, limit, offset int) ([]*failure.Event, error) {
	collection := r.db.Collection(FailureCollectionName)

	opts := options.Find().
		SetSort(bson.M{"occurred_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to query failure events", "error", err)
		return nil, fmt.Errorf("failed to query failure events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*failure.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode failure events: %w", err)
	}

	return events, nil
}
