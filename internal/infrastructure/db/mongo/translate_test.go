package mongo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

func dupKeyErr(index string) error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{
		Code:    11000,
		Message: fmt.Sprintf("E11000 duplicate key error collection: identity.users index: %s dup key: { : \"x\" }", index),
	}}}
}

func TestTranslate_DuplicateKeyByIndex(t *testing.T) {
	cases := []struct {
		index   string
		field   string
		message string
	}{
		{indexUserEmail, domain.FieldEmail, "email already exists"},
		{indexUserUsername, domain.FieldUsername, "username already exists"},
		{indexRoleName, domain.FieldRoleName, "role name already exists"},
		{"other_index", "", "email or username already exists"},
	}
	for _, tc := range cases {
		t.Run(tc.index, func(t *testing.T) {
			err := translate("insert", dupKeyErr(tc.index), domain.ErrUserNotFound)

			var de *domain.Error
			require.True(t, errors.As(err, &de))
			assert.Equal(t, domain.KindDuplicate, de.Kind)
			assert.Equal(t, tc.field, de.Field)
			assert.Equal(t, tc.message, de.Error())
		})
	}
}

func TestTranslate_BulkWriteDuplicate(t *testing.T) {
	err := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{{
		WriteError: mongo.WriteError{Code: 11000, Message: "E11000 index: users_username_ci dup key"},
	}}}

	got := translate("bulk", err, domain.ErrUserNotFound)
	assert.ErrorIs(t, got, &domain.Error{Kind: domain.KindDuplicate, Field: domain.FieldUsername})
}

func TestTranslate_NoDocuments(t *testing.T) {
	err := translate("find", fmt.Errorf("decode: %w", mongo.ErrNoDocuments), domain.ErrRoleNotFound)
	assert.Same(t, domain.ErrRoleNotFound, err)
}

func TestTranslate_OtherErrorsWrapped(t *testing.T) {
	cause := errors.New("connection refused")
	err := translate("update user", cause, domain.ErrUserNotFound)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Contains(t, err.Error(), "update user")
	assert.NoError(t, translate("noop", nil, domain.ErrUserNotFound))
}

func TestObjectID(t *testing.T) {
	_, err := objectID("not-an-id")
	assert.ErrorIs(t, err, domain.ErrBadID)

	oid := primitive.NewObjectID()
	got, err := objectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	assert.Len(t, objectIDs([]string{oid.Hex(), "bad", ""}), 1)
}

func TestSelectorFilter(t *testing.T) {
	active := false
	roleID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	f := selectorFilter(ports.UserSelector{
		Search: "a.b",
		Active: &active,
		RoleID: roleID.Hex(),
		IDs:    []string{userID.Hex()},
	})

	assert.Equal(t, false, f["active"])
	assert.Equal(t, roleID, f["role"])
	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{userID}}, f["_id"])

	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 4)
	assert.Equal(t, bson.M{"firstName": primitive.Regex{Pattern: `a\.b`, Options: "i"}}, or[0])

	assert.Empty(t, selectorFilter(ports.UserSelector{}))
}

func TestSetDoc(t *testing.T) {
	name := "Ada"
	phone := ""
	active := true
	roleID := primitive.NewObjectID().Hex()

	set, err := setDoc(domain.UserChanges{FirstName: &name, PhoneNumber: &phone, Active: &active, RoleID: &roleID})
	require.NoError(t, err)
	assert.Equal(t, "Ada", set["firstName"])
	assert.Equal(t, "", set["phoneNumber"])
	assert.Equal(t, true, set["active"])
	assert.Contains(t, set, "updatedAt")
	assert.NotContains(t, set, "email")

	bad := "nope"
	_, err = setDoc(domain.UserChanges{RoleID: &bad})
	assert.ErrorIs(t, err, domain.ErrBadRole)
}

func TestPageOptions(t *testing.T) {
	opts := pageOptions(3, 10)
	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.EqualValues(t, 20, *opts.Skip)
	assert.EqualValues(t, 10, *opts.Limit)
}
