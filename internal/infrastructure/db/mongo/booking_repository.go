package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

type bookingDoc struct {
	ID              int64     `bson:"_id"`
	DroneID         int64     `bson:"drone_id"`
	RequesterName   string    `bson:"requester_name"`
	RequesterMobile string    `bson:"requester_mobile"`
	CreatedAt       time.Time `bson:"created_at"`
	DurationHrs     int       `bson:"duration_hrs"`
	Status          string    `bson:"status"`
}

func (d bookingDoc) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:              d.ID,
		DroneID:         d.DroneID,
		RequesterName:   d.RequesterName,
		RequesterMobile: d.RequesterMobile,
		CreatedAt:       d.CreatedAt.UTC(),
		DurationHrs:     d.DurationHrs,
		Status:          domain.BookingStatus(d.Status),
	}
}

// BookingRepository needs the client to run transitions in a session.
// Transactions require a replica set or sharded cluster.
type BookingRepository struct {
	client   *mongo.Client
	col      *mongo.Collection
	drones   *mongo.Collection
	counters *counters
}

var _ ports.BookingRepository = (*BookingRepository)(nil)

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.counters.next(ctx, collectionBookings)
	if err != nil {
		return nil, err
	}
	doc := bookingDoc{
		ID:              id,
		DroneID:         b.DroneID,
		RequesterName:   b.RequesterName,
		RequesterMobile: b.RequesterMobile,
		CreatedAt:       b.CreatedAt.UTC(),
		DurationHrs:     b.DurationHrs,
		Status:          string(b.Status),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc bookingDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID int64, status domain.BookingStatus) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	droneIDs, err := r.drones.Distinct(ctx, "_id", bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("list owner drones: %w", err)
	}
	if len(droneIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, bookingFilter(bson.M{"drone_id": bson.M{"$in": droneIDs}}, status))
}

func (r *BookingRepository) ListByRequester(ctx context.Context, mobile string, status domain.BookingStatus) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, bookingFilter(bson.M{"requester_mobile": mobile}, status))
}

func bookingFilter(scope bson.M, status domain.BookingStatus) bson.M {
	if status != "" {
		scope["status"] = string(status)
	}
	return scope
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domain.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	var docs []bookingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}

	out := make([]*domain.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// ApplyTransition updates both documents inside one session transaction.
func (r *BookingRepository) ApplyTransition(
	ctx context.Context,
	bookingID int64,
	status domain.BookingStatus,
	droneID int64,
	availability domain.DroneStatus,
) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.col.UpdateOne(sc, bson.M{"_id": bookingID}, bson.M{"$set": bson.M{"status": string(status)}})
		if err != nil {
			return nil, fmt.Errorf("update booking status: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrBookingNotFound
		}

		res, err = r.drones.UpdateOne(sc, bson.M{"_id": droneID}, bson.M{"$set": bson.M{"status": string(availability)}})
		if err != nil {
			return nil, fmt.Errorf("update drone status: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrDroneNotFound
		}
		return nil, nil
	})
	return err
}
