package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/allerview/portal-gateway/internal/core/domain"
	"github.com/allerview/portal-gateway/internal/core/ports"
)

const auditCollection = "auth_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	EventID    string `bson:"event_id"`
	Kind       string `bson:"kind"`
	SessionID  string `bson:"session_id"`
	SubjectID  string `bson:"subject_id,omitempty"`
	Method     string `bson:"method"`
	Reason     string `bson:"reason,omitempty"`
	Timestamp  int64  `bson:"timestamp"`
	RecordedAt int64  `bson:"recorded_at"`
}

// Insert persists a single auth event to the auth_events collection.
func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuthEvent) error {
	doc := auditDoc{
		EventID:    event.ID,
		Kind:       string(event.Kind),
		SessionID:  event.SessionID,
		SubjectID:  event.SubjectID,
		Method:     event.Method,
		Reason:     event.Reason,
		Timestamp:  event.Timestamp.Unix(),
		RecordedAt: time.Now().UTC().Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
