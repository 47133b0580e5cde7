package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/launchkit/boilerplate/internal/core/ports"
)

const auditCollection = "role_changes"

// AuditRepository persists the promotion audit trail. The user store itself
// lives in the Identity Service; this collection only records who changed
// whose role, to what, and whether the bootstrap window was open.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type roleChangeDoc struct {
	RequesterID    string `bson:"requester_id"`
	RequesterEmail string `bson:"requester_email"`
	TargetID       string `bson:"target_id"`
	Role           string `bson:"role"`
	Bootstrap      bool   `bson:"bootstrap"`
	At             int64  `bson:"at"`
}

func (r *AuditRepository) InsertRoleChange(ctx context.Context, change *ports.RoleChange) error {
	doc := roleChangeDoc{
		RequesterID:    change.RequesterID,
		RequesterEmail: change.RequesterEmail,
		TargetID:       change.TargetID,
		Role:           string(change.Role),
		Bootstrap:      change.Bootstrap,
		At:             change.At.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert role change: %w", err)
	}
	return nil
}
