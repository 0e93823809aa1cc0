package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

type profileDoc struct {
	ID     int64    `bson:"_id"`
	Name   string   `bson:"name"`
	Mobile string   `bson:"mobile"`
	Lat    *float64 `bson:"lat,omitempty"`
	Lon    *float64 `bson:"lon,omitempty"`
}

func (d profileDoc) toDomain() *domain.Profile {
	return &domain.Profile{ID: d.ID, Name: d.Name, Mobile: d.Mobile, Lat: d.Lat, Lon: d.Lon}
}

// ProfileRepository stores the profiles of one role in its own collection.
type ProfileRepository struct {
	col      *mongo.Collection
	counters *counters
}

var _ ports.ProfileStore = (*ProfileRepository)(nil)

func newProfileRepository(db *mongo.Database, collection string) *ProfileRepository {
	return &ProfileRepository{
		col:      db.Collection(collection),
		counters: &counters{col: db.Collection(collectionCounters)},
	}
}

func (r *ProfileRepository) FindByMobile(ctx context.Context, mobile string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc profileDoc
	if err := r.col.FindOne(ctx, bson.M{"mobile": mobile}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.counters.next(ctx, r.col.Name())
	if err != nil {
		return nil, err
	}
	doc := profileDoc{ID: id, Name: p.Name, Mobile: p.Mobile, Lat: p.Lat, Lon: p.Lon}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProfileRepository) UpdateLocation(ctx context.Context, mobile string, lat, lon float64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"mobile": mobile}, bson.M{"$set": bson.M{"lat": lat, "lon": lon}})
	if err != nil {
		return fmt.Errorf("update profile location: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	var docs []profileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	out := make([]*domain.Profile, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
