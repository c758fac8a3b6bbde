package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HamedShams/pulse-reports/internal/config"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotConfigured is returned when the store is built without a
	// connection URI or database name.
	ErrNotConfigured = errors.New("store: connection not configured")
	// ErrNotConnected is returned when a collection handle is requested
	// before Connect succeeded.
	ErrNotConnected = errors.New("store: not connected")
	// ErrValidation marks operations aborted because a required identity
	// field was missing. No document is written in that case.
	ErrValidation = errors.New("store: validation")
)

// Store owns the single process-wide Mongo connection. It is constructed
// explicitly and passed to each component; Connect is guarded so that
// concurrent first calls share one connection, losers block on the same
// initialization.
type Store struct {
	uri    string
	dbName string
	log    zerolog.Logger

	once   sync.Once
	err    error
	client *mongo.Client
	db     *mongo.Database

	// dial is swapped in tests; nil means real Mongo.
	dial func(ctx context.Context) (*mongo.Client, error)
}

func New(cfg config.Config, log zerolog.Logger) *Store {
	return &Store{uri: cfg.MongoURI, dbName: cfg.MongoDatabase, log: log}
}

func (s *Store) Connect(ctx context.Context) error {
	if s.uri == "" || s.dbName == "" {
		return ErrNotConfigured
	}
	s.once.Do(func() {
		dial := s.dial
		if dial == nil {
			dial = s.dialMongo
		}
		client, err := dial(ctx)
		if err != nil {
			s.err = fmt.Errorf("store connect: %w", err)
			return
		}
		s.client = client
		if client != nil {
			s.db = client.Database(s.dbName)
		}
		s.log.Info().Str("db", s.dbName).Msg("store connected")
	})
	return s.err
}

func (s *Store) dialMongo(ctx context.Context) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(s.uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx2, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Collection returns a typed handle for the named collection. It fails with
// ErrNotConnected until Connect has succeeded.
func (s *Store) Collection(name string) (Collection, error) {
	if s.db == nil {
		return nil, ErrNotConnected
	}
	return mongoCollection{col: s.db.Collection(name)}, nil
}

// Collection is the narrow surface the stores need from a Mongo collection.
// Reads decode into out so callers never touch cursors.
type Collection interface {
	UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	InsertOne(ctx context.Context, doc any) error
	DeleteOne(ctx context.Context, filter any) (int64, error)
	DeleteMany(ctx context.Context, filter any) (int64, error)
	FindOne(ctx context.Context, filter any, out any) error
	Find(ctx context.Context, filter any, opts *options.FindOptions, out any) error
	Aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error
}

type mongoCollection struct {
	col *mongo.Collection
}

func (c mongoCollection) UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.col.UpdateOne(ctx, filter, update, opts...)
}

func (c mongoCollection) InsertOne(ctx context.Context, doc any) error {
	_, err := c.col.InsertOne(ctx, doc)
	return err
}

func (c mongoCollection) DeleteOne(ctx context.Context, filter any) (int64, error) {
	res, err := c.col.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c mongoCollection) DeleteMany(ctx context.Context, filter any) (int64, error) {
	res, err := c.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c mongoCollection) FindOne(ctx context.Context, filter any, out any) error {
	return c.col.FindOne(ctx, filter).Decode(out)
}

func (c mongoCollection) Find(ctx context.Context, filter any, opts *options.FindOptions, out any) error {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = c.col.Find(ctx, filter, opts)
	} else {
		cur, err = c.col.Find(ctx, filter)
	}
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (c mongoCollection) Aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cur, err := c.col.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}
