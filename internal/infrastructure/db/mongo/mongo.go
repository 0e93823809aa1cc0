package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

const (
	collectionOwners     = "owners"
	collectionRequesters = "requesters"
	collectionDrones     = "drones"
	collectionBookings   = "bookings"
	collectionCounters   = "counters"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Store owns the client and the selected database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect establishes a MongoDB client and verifies connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// Ping satisfies ports.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ProfileStores wires both role collections for the core.
func (s *Store) ProfileStores() ports.ProfileStores {
	return ports.ProfileStores{
		Owners:     newProfileRepository(s.db, collectionOwners),
		Requesters: newProfileRepository(s.db, collectionRequesters),
	}
}

func (s *Store) Drones() *DroneRepository {
	return &DroneRepository{col: s.db.Collection(collectionDrones), counters: s.counters()}
}

func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{
		client:   s.client,
		col:      s.db.Collection(collectionBookings),
		drones:   s.db.Collection(collectionDrones),
		counters: s.counters(),
	}
}

func (s *Store) counters() *counters {
	return &counters{col: s.db.Collection(collectionCounters)}
}

// EnsureIndexes creates the lookup and uniqueness indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	for _, name := range []string{collectionOwners, collectionRequesters} {
		if _, err := s.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "mobile", Value: 1}}, Options: unique,
		}); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}

	if _, err := s.db.Collection(collectionDrones).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("ensure drone indexes: %w", err)
	}

	_, err := s.db.Collection(collectionBookings).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "drone_id", Value: 1}}},
		{Keys: bson.D{{Key: "requester_mobile", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("ensure booking indexes: %w", err)
	}
	return nil
}

// counters hands out sequential int64 ids per collection.
type counters struct {
	col *mongo.Collection
}

func (c *counters) next(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := c.col.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Seq, nil
}
