package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sngm3741/coffee-map/internal/coffee/application"
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
)

// SessionStore implements application.SessionStore using MongoDB.
type SessionStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	ttl        time.Duration
	now        func() time.Time
}

var _ application.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a Mongo-backed session store.
func NewSessionStore(client *mongo.Client, dbName, collectionName string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:     client,
		collection: client.Database(dbName).Collection(collectionName),
		ttl:        ttl,
		now:        time.Now,
	}
}

// EnsureIndexes は expiresAt の TTL インデックスを作成する。
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("session_expiry"),
	}
	if _, err := s.collection.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("create session index: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*application.State, error) {
	var doc SessionDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(doc, s.now())
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, state *application.State) error {
	doc, err := encodeSession(sessionID, state, s.now().UTC(), s.ttl)
	if err != nil {
		return err
	}

	set := bson.M{
		"payload":   doc.Payload,
		"updatedAt": doc.UpdatedAt,
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": doc.UpdatedAt},
	}
	if doc.ExpiresAt != nil {
		set["expiresAt"] = *doc.ExpiresAt
	}

	opts := options.Update().SetUpsert(true)
	_, err = s.collection.UpdateOne(ctx, bson.M{"_id": sessionID}, update, opts)
	return err
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func encodeSession(sessionID string, state *application.State, now time.Time, ttl time.Duration) (SessionDocument, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return SessionDocument{}, fmt.Errorf("encode session: %w", err)
	}
	doc := SessionDocument{
		ID:        sessionID,
		Payload:   string(payload),
		UpdatedAt: now,
	}
	if ttl > 0 {
		expires := now.Add(ttl)
		doc.ExpiresAt = &expires
	}
	return doc, nil
}

// decodeSession treats an expired document as missing; the TTL monitor only
// runs once a minute.
func decodeSession(doc SessionDocument, now time.Time) (*application.State, error) {
	if doc.ExpiresAt != nil && !now.Before(*doc.ExpiresAt) {
		return nil, domain.ErrSessionNotFound
	}
	var state application.State
	if err := json.Unmarshal([]byte(doc.Payload), &state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &state, nil
}
