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

type droneDoc struct {
	ID             int64    `bson:"_id"`
	Name           string   `bson:"name"`
	Type           string   `bson:"type"`
	Lat            float64  `bson:"lat"`
	Lon            float64  `bson:"lon"`
	Status         string   `bson:"status"`
	PricePerHr     float64  `bson:"price_per_hr"`
	ImageURL       string   `bson:"image_url,omitempty"`
	BatteryMah     *float64 `bson:"battery_mah,omitempty"`
	CapacityLiters *float64 `bson:"capacity_liters,omitempty"`
	OwnerID        int64    `bson:"owner_id"`
}

func newDroneDoc(d *domain.Drone) droneDoc {
	return droneDoc{
		ID:             d.ID,
		Name:           d.Name,
		Type:           d.Type,
		Lat:            d.Lat,
		Lon:            d.Lon,
		Status:         string(d.Status),
		PricePerHr:     d.PricePerHr,
		ImageURL:       d.ImageURL,
		BatteryMah:     d.BatteryMah,
		CapacityLiters: d.CapacityLiters,
		OwnerID:        d.OwnerID,
	}
}

func (d droneDoc) toDomain() *domain.Drone {
	return &domain.Drone{
		ID:             d.ID,
		Name:           d.Name,
		Type:           d.Type,
		Lat:            d.Lat,
		Lon:            d.Lon,
		Status:         domain.DroneStatus(d.Status),
		PricePerHr:     d.PricePerHr,
		ImageURL:       d.ImageURL,
		BatteryMah:     d.BatteryMah,
		CapacityLiters: d.CapacityLiters,
		OwnerID:        d.OwnerID,
	}
}

type DroneRepository struct {
	col      *mongo.Collection
	counters *counters
}

var _ ports.DroneRepository = (*DroneRepository)(nil)

func (r *DroneRepository) Create(ctx context.Context, d *domain.Drone) (*domain.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.counters.next(ctx, collectionDrones)
	if err != nil {
		return nil, err
	}
	doc := newDroneDoc(d)
	doc.ID = id
	if doc.Status == "" {
		doc.Status = string(domain.DroneAvailable)
	}
	if doc.PricePerHr == 0 {
		doc.PricePerHr = domain.DefaultPricePerHr
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert drone: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *DroneRepository) FindByID(ctx context.Context, id int64) (*domain.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc droneDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDroneNotFound
		}
		return nil, fmt.Errorf("find drone: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *DroneRepository) List(ctx context.Context) ([]*domain.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list drones: %w", err)
	}
	var docs []droneDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode drones: %w", err)
	}

	out := make([]*domain.Drone, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *DroneRepository) UpdateStatus(ctx context.Context, id int64, status domain.DroneStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return fmt.Errorf("update drone status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDroneNotFound
	}
	return nil
}
