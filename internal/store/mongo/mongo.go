// Package mongo implements the data gateway's DataStore on MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chirino/data-gateway/internal/config"
	"github.com/chirino/data-gateway/internal/model"
	"github.com/chirino/data-gateway/internal/store"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store implements store.DataStore over a pooled MongoDB client. It holds no
// other mutable state, so it is safe for concurrent use by many callers.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    *config.Config
}

var _ store.DataStore = (*Store)(nil)

// Connect dials the store configured on the context (see config.WithContext),
// verifies connectivity, and optionally runs the schema migration. A context
// without a Config falls back to the defaults.
func Connect(ctx context.Context) (*Store, error) {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	opts := options.Client().ApplyURI(cfg.DBURL)
	if cfg.DBMaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.DBMaxOpenConns))
	}
	if cfg.DBMaxIdleConns > 0 {
		opts.SetMinPoolSize(uint64(cfg.DBMaxIdleConns))
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(cfg.ResolvedDBName()),
		cfg:    cfg,
	}
	if cfg.MigrateAtStart {
		if err := EnsureSchema(ctx, s.db); err != nil {
			return nil, err
		}
	}
	log.Info("Connected to MongoDB", "database", cfg.ResolvedDBName())
	return s, nil
}

// EnsureSchema creates the collections and indexes. The unique indexes on
// users and on the agent registration identity are part of the data-integrity
// contract, not an optimization.
func EnsureSchema(ctx context.Context, db *mongo.Database) error {
	collections := map[model.Collection][]mongo.IndexModel{
		model.CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		model.CollectionTeams: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
			{Keys: bson.D{{Key: "users", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		model.CollectionChats: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "session_id", Value: 1}}},
			{Keys: bson.D{{Key: "team_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		model.CollectionSessions: {
			{Keys: bson.D{{Key: "chat_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
		model.CollectionMessages: {
			{Keys: bson.D{{Key: "chat_id", Value: 1}}},
			{Keys: bson.D{{Key: "session_id", Value: 1}}},
			{Keys: bson.D{{Key: "sender_id", Value: 1}}},
			{Keys: bson.D{{Key: "type", Value: 1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		model.CollectionWorkflows: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "chat_id", Value: 1}}},
			{Keys: bson.D{{Key: "team_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "version", Value: 1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
		model.CollectionAgents: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "team_id", Value: 1}}},
			{Keys: bson.D{{Key: "type", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "version", Value: 1}}},
			{Keys: bson.D{{Key: "last_active", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "version", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "type", Value: 1}}},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}, {Key: "type", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("unique_agent_identity"),
			},
		},
	}

	for name, indexes := range collections {
		db.CreateCollection(ctx, name.String())
		if len(indexes) > 0 {
			if _, err := db.Collection(name.String()).Indexes().CreateMany(ctx, indexes); err != nil {
				return fmt.Errorf("failed to create indexes for %s: %w", name, err)
			}
		}
	}

	log.Info("MongoDB schema migration complete")
	return nil
}

func (s *Store) collection(c model.Collection) *mongo.Collection {
	return s.db.Collection(c.String())
}

func (s *Store) isAdmin(actorID string) bool {
	return s.cfg.IsAdmin(actorID)
}

// effectiveLimit resolves a caller-requested page size against the default
// and the hard cap.
func effectiveLimit(limit int64) int64 {
	switch {
	case limit <= 0:
		return store.DefaultFindLimit
	case limit > store.MaxFindLimit:
		return store.MaxFindLimit
	default:
		return limit
	}
}

// idString normalizes an _id value to its canonical string form.
func idString(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case bson.ObjectID:
		return v.Hex()
	default:
		return fmt.Sprint(v)
	}
}

func normalizeID(doc bson.M) model.Document {
	if id, ok := doc["_id"]; ok {
		doc["_id"] = idString(id)
	}
	return model.Document(doc)
}

// InsertDocument stores a document, stamping bookkeeping timestamps when the
// caller did not supply them, and returns the new id.
func (s *Store) InsertDocument(ctx context.Context, c model.Collection, doc model.Document) (string, error) {
	if err := model.ValidateDocument(c, doc); err != nil {
		return "", &store.ValidationError{Field: c.String(), Message: err.Error()}
	}

	now := time.Now().UTC()
	insert := make(bson.M, len(doc)+4)
	for k, v := range doc {
		insert[k] = v
	}
	if _, ok := insert["_id"]; !ok {
		insert["_id"] = uuid.New().String()
	}
	if _, ok := insert["created_at"]; !ok {
		insert["created_at"] = now
	}
	if _, ok := insert["updated_at"]; !ok {
		insert["updated_at"] = now
	}
	switch c {
	case model.CollectionWorkflows:
		if _, ok := insert["timestamp"]; !ok {
			insert["timestamp"] = now
		}
	case model.CollectionAgents:
		if _, ok := insert["last_active"]; !ok {
			insert["last_active"] = now
		}
	}

	result, err := s.collection(c).InsertOne(ctx, insert)
	if err != nil {
		return "", &store.StoreError{Op: "insert " + c.String(), Err: err}
	}
	return idString(result.InsertedID), nil
}

// FindDocuments runs a scoped query. An empty result set is returned as an
// empty slice, not an error.
func (s *Store) FindDocuments(ctx context.Context, c model.Collection, query model.Document, opts store.FindOptions) ([]model.Document, error) {
	q := make(bson.M, len(query))
	for k, v := range query {
		q[k] = v
	}
	if opts.ActorID != nil {
		q = s.scopeQuery(ctx, c, *opts.ActorID, q)
	}

	limit := effectiveLimit(opts.Limit)
	skip := opts.Skip
	if skip < 0 {
		skip = 0
	}
	findOpts := options.Find().SetSkip(skip).SetLimit(limit)
	if len(opts.Sort) > 0 {
		sort := make(bson.D, 0, len(opts.Sort))
		for _, key := range opts.Sort {
			order := 1
			if key.Desc {
				order = -1
			}
			sort = append(sort, bson.E{Key: key.Key, Value: order})
		}
		findOpts.SetSort(sort)
	}

	cursor, err := s.collection(c).Find(ctx, q, findOpts)
	if err != nil {
		return nil, &store.StoreError{Op: "find " + c.String(), Err: err}
	}
	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, &store.StoreError{Op: "find " + c.String(), Err: err}
	}
	docs := make([]model.Document, 0, len(raw))
	for _, d := range raw {
		docs = append(docs, normalizeID(d))
	}
	return docs, nil
}

// UpdateDocument applies patch as a $set to at most one matching document.
// updated_at is always forced to the current time; the per-collection
// bookkeeping fields (workflows.timestamp, agents.last_active) are not
// client-settable and are overwritten with the current time when present in
// the patch.
func (s *Store) UpdateDocument(ctx context.Context, c model.Collection, query, patch model.Document) (bool, error) {
	now := time.Now().UTC()
	set := make(bson.M, len(patch)+1)
	for k, v := range patch {
		if k == "_id" {
			continue
		}
		set[k] = v
	}
	set["updated_at"] = now
	switch c {
	case model.CollectionWorkflows:
		if _, ok := set["timestamp"]; ok {
			set["timestamp"] = now
		}
	case model.CollectionAgents:
		if _, ok := set["last_active"]; ok {
			set["last_active"] = now
		}
	}

	result, err := s.collection(c).UpdateOne(ctx, bson.M(query), bson.M{"$set": set})
	if err != nil {
		return false, &store.StoreError{Op: "update " + c.String(), Err: err}
	}
	return result.ModifiedCount == 1, nil
}

// DeleteDocument removes at most one matching document.
func (s *Store) DeleteDocument(ctx context.Context, c model.Collection, query model.Document) (bool, error) {
	result, err := s.collection(c).DeleteOne(ctx, bson.M(query))
	if err != nil {
		return false, &store.StoreError{Op: "delete " + c.String(), Err: err}
	}
	return result.DeletedCount == 1, nil
}

// Ping verifies store connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return &store.StoreError{Op: "ping", Err: err}
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
