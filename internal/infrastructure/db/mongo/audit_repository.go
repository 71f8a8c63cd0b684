package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

const collectionAuditEvents = "audit_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{db: db}
}

// InsertEvent persists an audit event to the audit_events collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"eventId":     event.ID,
		"entity":      event.Entity,
		"action":      string(event.Action),
		"at":          event.At.UTC(),
		"processedAt": time.Now().UTC(),
	}
	if event.EntityID != "" {
		doc["entityId"] = event.EntityID
	}
	if len(event.Fields) > 0 {
		doc["fields"] = event.Fields
	}
	if event.Action == domain.AuditBulkUpdated && event.EntityID == "" {
		doc["matched"] = event.Matched
		doc["modified"] = event.Modified
	}

	_, err := r.db.Collection(collectionAuditEvents).InsertOne(ctx, doc)
	return err
}
