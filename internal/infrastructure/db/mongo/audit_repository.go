package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/safestreet/account-service/internal/core/domain"
)

const auditCollection = "auth_events"

// AuditRepository appends account audit events. Writes are best-effort and
// only ever invoked from the async recorder.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuthEvent struct {
	UserID     string    `bson:"user_id,omitempty"`
	Action     string    `bson:"action"`
	Identifier string    `bson:"identifier,omitempty"`
	Timestamp  time.Time `bson:"timestamp"`
}

func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	doc := mongoAuthEvent{
		UserID:     event.UserID,
		Action:     string(event.Action),
		Identifier: event.Identifier,
		Timestamp:  event.Timestamp,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.WrapStore("insert auth event", err)
	}
	return nil
}
