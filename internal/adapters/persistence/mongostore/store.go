// Package mongostore implements the entity store on MongoDB. Each entity kind
// lives in its own collection keyed by its external id.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campus-rms/internal/adapters/persistence/repositories"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection         = "users"
	equipmentCollection     = "equipment"
	requestsCollection      = "requests"
	eventsCollection        = "events"
	eventRequestsCollection = "eventrequests"
)

var _ repositories.Store = (*Store)(nil)

// Store implements repositories.Store
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to MongoDB and makes sure the unique indexes exist
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	log.Printf("✅ MongoDB connected successfully [%s]", database)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := map[string][]string{
		usersCollection:         {"userId", "email"},
		equipmentCollection:     {"equipmentId"},
		requestsCollection:      {"requestId"},
		eventsCollection:        {"eventId"},
		eventRequestsCollection: {"requestId"},
	}
	for coll, keys := range unique {
		for _, key := range keys {
			_, err := s.db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
				Keys:    bson.D{{Key: key, Value: 1}},
				Options: options.Index().SetUnique(true),
			})
			if err != nil {
				return fmt.Errorf("failed to create index %s.%s: %w", coll, key, err)
			}
		}
	}
	return nil
}

func (s *Store) Users() repositories.UserRepository {
	return &userRepository{coll: s.db.Collection(usersCollection)}
}

func (s *Store) Equipment() repositories.EquipmentRepository {
	return &equipmentRepository{coll: s.db.Collection(equipmentCollection)}
}

func (s *Store) Requests() repositories.RequestRepository {
	return &requestRepository{coll: s.db.Collection(requestsCollection)}
}

func (s *Store) Events() repositories.EventRepository {
	return &eventRepository{coll: s.db.Collection(eventsCollection)}
}

func (s *Store) EventRequests() repositories.EventRequestRepository {
	return &eventRequestRepository{coll: s.db.Collection(eventRequestsCollection)}
}

// WithSession runs fn inside one client session. Multi-document transactions
// need a replica set, so the session gives causal consistency only.
func (s *Store) WithSession(ctx context.Context, fn func(ctx context.Context, store repositories.Store) error) error {
	return s.client.UseSession(ctx, func(sessCtx context.Context) error {
		return fn(sessCtx, s)
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// translate maps driver errors to repository errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repositories.ErrRecordNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(repositories.ErrDuplicateKey, err)
	}
	return err
}

// findAll runs a query and decodes every document into out
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sortKey string) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: sortKey, Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
