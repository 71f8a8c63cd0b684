package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// caseInsensitive compares strings ignoring case; diacritics still count at
// strength 2. Unique indexes and uniqueness lookups must use the same
// collation.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// pageOptions returns find options for a 1-based page sorted by newest first.
func pageOptions(page, limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64(page-1) * int64(limit)).SetLimit(int64(limit))
	}
	return opts
}

// containsPattern builds a case-insensitive substring match with the search
// term escaped.
func containsPattern(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

// EnsureIndexes creates the indexes every repository relies on, including the
// case-insensitive unique indexes that back the uniqueness checks.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := func(name string) *options.IndexOptions {
		return options.Index().SetName(name).SetUnique(true).SetCollation(caseInsensitive)
	}

	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique(indexUserEmail)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique(indexUserUsername)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := db.Collection(collectionUsers).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}

	roles := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique(indexRoleName)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := db.Collection(collectionRoles).Indexes().CreateMany(ctx, roles); err != nil {
		return fmt.Errorf("ensure role indexes: %w", err)
	}

	audit := []mongo.IndexModel{
		{Keys: bson.D{{Key: "entity", Value: 1}, {Key: "entityId", Value: 1}, {Key: "at", Value: -1}}},
	}
	if _, err := db.Collection(collectionAuditEvents).Indexes().CreateMany(ctx, audit); err != nil {
		return fmt.Errorf("ensure audit indexes: %w", err)
	}
	return nil
}
