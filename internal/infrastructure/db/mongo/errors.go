package mongo

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/accesshub/identity-service/internal/api/metrics"
	"github.com/accesshub/identity-service/internal/core/domain"
)

// Unique index names. A duplicate-key failure is mapped back to the field
// through the index named in the server's error message.
const (
	indexUserEmail    = "users_email_ci"
	indexUserUsername = "users_username_ci"
	indexRoleName     = "roles_name_ci"
)

var uniqueIndexFields = []struct {
	index string
	field string
}{
	{indexUserEmail, domain.FieldEmail},
	{indexUserUsername, domain.FieldUsername},
	{indexRoleName, domain.FieldRoleName},
}

// translate maps driver errors onto domain errors. notFound is returned for
// mongo.ErrNoDocuments.
func translate(op string, err error, notFound *domain.Error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	if mongo.IsDuplicateKeyError(err) {
		field := duplicateField(err)
		metrics.DuplicateKeyRejectionsTotal.WithLabelValues(field).Inc()
		return domain.Duplicate(field)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// duplicateField returns the field whose unique index rejected the write, or
// "" when the index is not one of ours.
func duplicateField(err error) string {
	msg := err.Error()
	for _, u := range uniqueIndexFields {
		if strings.Contains(msg, u.index) {
			return u.field
		}
	}
	return ""
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.BadID(domain.FieldID, "invalid ID format")
	}
	return oid, nil
}

// objectIDs converts ids, skipping any that are not valid identifiers.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}
