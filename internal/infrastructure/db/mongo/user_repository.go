package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/accesshub/identity-service/internal/core/domain"
	"github.com/accesshub/identity-service/internal/core/ports"
)

const collectionUsers = "users"

type userDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	FirstName      string             `bson:"firstName"`
	LastName       string             `bson:"lastName"`
	Email          string             `bson:"email"`
	Username       string             `bson:"username"`
	PasswordDigest string             `bson:"password"`
	PhoneNumber    string             `bson:"phoneNumber,omitempty"`
	Role           primitive.ObjectID `bson:"role"`
	Active         bool               `bson:"active"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:             d.ID.Hex(),
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Email:          d.Email,
		Username:       d.Username,
		PasswordDigest: d.PasswordDigest,
		PhoneNumber:    d.PhoneNumber,
		RoleID:         d.Role.Hex(),
		Active:         d.Active,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	roleID, err := objectID(u.RoleID)
	if err != nil {
		return nil, domain.ErrRoleMissing
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Username:       u.Username,
		PasswordDigest: u.PasswordDigest,
		PhoneNumber:    u.PhoneNumber,
		Role:           roleID,
		Active:         u.Active,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, translate("insert user", err, domain.ErrUserNotFound)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, nil)
}

// FindByLogin matches login against email or username, ignoring case.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	filter := bson.M{"$or": bson.A{bson.M{"email": login}, bson.M{"username": login}}}
	return r.findOne(ctx, filter, options.FindOne().SetCollation(caseInsensitive))
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var findOpts []*options.FindOneOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}

	var doc userDoc
	if err := r.col.FindOne(ctx, filter, findOpts...).Decode(&doc); err != nil {
		return nil, translate("find user", err, domain.ErrUserNotFound)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := selectorFilter(ports.UserSelector{Search: f.Search, Active: f.Active})

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, pageOptions(f.Page, f.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, total, nil
}

// Update applies changes in one $set and returns the stored user.
func (r *UserRepository) Update(ctx context.Context, id string, ch domain.UserChanges) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	set, err := setDoc(ch)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, translate("update user", err, domain.ErrUserNotFound)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) CountByRole(ctx context.Context, roleID string) (int64, error) {
	oid, err := objectID(roleID)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"role": oid})
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}

// FieldTaken matches the whole value under the case-insensitive collation.
func (r *UserRepository) FieldTaken(ctx context.Context, field, value, excludeID string) (bool, error) {
	if field != domain.FieldEmail && field != domain.FieldUsername {
		return false, fmt.Errorf("field taken: unsupported field %q", field)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{field: value}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetCollation(caseInsensitive).SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check %s: %w", field, err)
	}
	return n > 0, nil
}

// UpdateMany applies the same changes to every user the selector matches.
func (r *UserRepository) UpdateMany(ctx context.Context, sel ports.UserSelector, ch domain.UserChanges) (ports.BatchResult, error) {
	set, err := setDoc(ch)
	if err != nil {
		return ports.BatchResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx, selectorFilter(sel), bson.M{"$set": set})
	if err != nil {
		return ports.BatchResult{}, translate("update users", err, domain.ErrUserNotFound)
	}
	return ports.BatchResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// BulkUpdate sends one ordered bulk write. Without a transaction, a failure
// part-way leaves the earlier updates applied.
func (r *UserRepository) BulkUpdate(ctx context.Context, updates []ports.UserUpdate) (ports.BatchResult, error) {
	if len(updates) == 0 {
		return ports.BatchResult{}, nil
	}

	models := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		oid, err := objectID(u.ID)
		if err != nil {
			return ports.BatchResult{}, err
		}
		set, err := setDoc(u.Changes)
		if err != nil {
			return ports.BatchResult{}, err
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": oid}).
			SetUpdate(bson.M{"$set": set}))
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return ports.BatchResult{}, translate("bulk update users", err, domain.ErrUserNotFound)
	}
	return ports.BatchResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// selectorFilter turns a typed selector into a query. Invalid ids in the
// selector match nothing.
func selectorFilter(sel ports.UserSelector) bson.M {
	filter := bson.M{}
	if sel.Search != "" {
		p := containsPattern(sel.Search)
		filter["$or"] = bson.A{
			bson.M{"firstName": p},
			bson.M{"lastName": p},
			bson.M{"email": p},
			bson.M{"username": p},
		}
	}
	if sel.Active != nil {
		filter["active"] = *sel.Active
	}
	if sel.RoleID != "" {
		oid, err := primitive.ObjectIDFromHex(sel.RoleID)
		if err != nil {
			oid = primitive.NilObjectID
		}
		filter["role"] = oid
	}
	if len(sel.IDs) > 0 {
		filter["_id"] = bson.M{"$in": objectIDs(sel.IDs)}
	}
	return filter
}

// setDoc builds the $set document for a change set. updatedAt is always set.
func setDoc(ch domain.UserChanges) (bson.M, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	str := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	str("firstName", ch.FirstName)
	str("lastName", ch.LastName)
	str("email", ch.Email)
	str("username", ch.Username)
	str("password", ch.PasswordDigest)
	str("phoneNumber", ch.PhoneNumber)
	if ch.RoleID != nil {
		oid, err := objectID(*ch.RoleID)
		if err != nil {
			return nil, domain.ErrRoleMissing
		}
		set["role"] = oid
	}
	if ch.Active != nil {
		set["active"] = *ch.Active
	}
	return set, nil
}
