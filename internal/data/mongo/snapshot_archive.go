package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const SnapshotCollectionName = "snapshots"

type snapshotDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id,omitempty"`
	ExportedAt time.Time          `bson:"exported_at"`
	Size       int                `bson:"size"`
	Document   string             `bson:"document"`
}

// SnapshotArchive keeps every exported snapshot as its JSON text.
type SnapshotArchive struct {
	db     *mongo.Database
	logger *slog.Logger
}

func NewSnapshotArchive(logger *slog.Logger, db *mongo.Database) *SnapshotArchive {
	return &SnapshotArchive{db: db, logger: logger}
}

// Store inserts one snapshot and returns its archive id.
func (a *SnapshotArchive) Store(ctx context.Context, userID string, exportedAt time.Time, document []byte) (string, error) {
	doc := snapshotDocument{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		ExportedAt: exportedAt,
		Size:       len(document),
		Document:   string(document),
	}

	if _, err := a.db.Collection(SnapshotCollectionName).InsertOne(ctx, doc); err != nil {
		a.logger.Error("Failed to archive snapshot", "user_id", userID, "error", err)
		return "", fmt.Errorf("failed to archive snapshot: %w", err)
	}

	return doc.ID.Hex(), nil
}
