package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

const bookingColumns = `b.id, b.drone_id, b.requester_name, b.requester_mobile, b.created_at, b.duration_hrs, b.status`

type BookingRepository struct {
	db *DB
}

var _ ports.BookingRepository = (*BookingRepository)(nil)

func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out := *b
	out.CreatedAt = out.CreatedAt.UTC()
	err := r.db.sql.QueryRowContext(ctx, r.db.rebind(
		`INSERT INTO bookings (drone_id, requester_name, requester_mobile, created_at, duration_hrs, status)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		out.DroneID, out.RequesterName, out.RequesterMobile, out.CreatedAt, out.DurationHrs, string(out.Status),
	).Scan(&out.ID)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return &out, nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	b, err := scanBooking(r.db.sql.QueryRowContext(ctx,
		r.db.rebind(`SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID int64, status domain.BookingStatus) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b JOIN drones d ON d.id = b.drone_id WHERE d.owner_id = ?`
	return r.list(ctx, query, status, ownerID)
}

func (r *BookingRepository) ListByRequester(ctx context.Context, mobile string, status domain.BookingStatus) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.requester_mobile = ?`
	return r.list(ctx, query, status, mobile)
}

func (r *BookingRepository) list(ctx context.Context, query string, status domain.BookingStatus, scope any) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	args := []any{scope}
	if status != "" {
		query += ` AND b.status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY b.created_at DESC, b.id DESC`

	rows, err := r.db.sql.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ApplyTransition writes the booking status and the drone availability in
// one transaction.
func (r *BookingRepository) ApplyTransition(
	ctx context.Context,
	bookingID int64,
	status domain.BookingStatus,
	droneID int64,
	availability domain.DroneStatus,
) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := execOne(ctx, tx, r.db.rebind(`UPDATE bookings SET status = ? WHERE id = ?`),
		domain.ErrBookingNotFound, string(status), bookingID); err != nil {
		return err
	}
	if err := execOne(ctx, tx, r.db.rebind(`UPDATE drones SET status = ? WHERE id = ?`),
		domain.ErrDroneNotFound, string(availability), droneID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

// execOne runs an update that must touch a row, returning missing otherwise.
func execOne(ctx context.Context, tx *sql.Tx, query string, missing error, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("apply transition: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply transition: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}

func scanBooking(s scanner) (*domain.Booking, error) {
	var (
		b      domain.Booking
		status string
	)
	if err := s.Scan(&b.ID, &b.DroneID, &b.RequesterName, &b.RequesterMobile, &b.CreatedAt, &b.DurationHrs, &status); err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}
