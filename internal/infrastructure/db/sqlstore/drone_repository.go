package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

const droneColumns = `id, name, type, lat, lon, status, price_per_hr, image_url, battery_mah, capacity_liters, owner_id`

type DroneRepository struct {
	db *DB
}

var _ ports.DroneRepository = (*DroneRepository)(nil)

func NewDroneRepository(db *DB) *DroneRepository {
	return &DroneRepository{db: db}
}

// Create inserts a drone. Empty status and zero price take the column defaults.
func (r *DroneRepository) Create(ctx context.Context, d *domain.Drone) (*domain.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out := *d
	if out.Status == "" {
		out.Status = domain.DroneAvailable
	}
	if out.PricePerHr == 0 {
		out.PricePerHr = domain.DefaultPricePerHr
	}

	err := r.db.sql.QueryRowContext(ctx, r.db.rebind(
		`INSERT INTO drones (name, type, lat, lon, status, price_per_hr, image_url, battery_mah, capacity_liters, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		out.Name, out.Type, out.Lat, out.Lon, string(out.Status), out.PricePerHr, out.ImageURL,
		nullFloat(out.BatteryMah), nullFloat(out.CapacityLiters), out.OwnerID,
	).Scan(&out.ID)
	if err != nil {
		return nil, fmt.Errorf("insert drone: %w", err)
	}
	return &out, nil
}

func (r *DroneRepository) FindByID(ctx context.Context, id int64) (*domain.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	d, err := scanDrone(r.db.sql.QueryRowContext(ctx,
		r.db.rebind(`SELECT `+droneColumns+` FROM drones WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDroneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find drone: %w", err)
	}
	return d, nil
}

func (r *DroneRepository) List(ctx context.Context) ([]*domain.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.sql.QueryContext(ctx, `SELECT `+droneColumns+` FROM drones ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list drones: %w", err)
	}
	defer rows.Close()

	var out []*domain.Drone
	for rows.Next() {
		d, err := scanDrone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan drone: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DroneRepository) UpdateStatus(ctx context.Context, id int64, status domain.DroneStatus) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.sql.ExecContext(ctx, r.db.rebind(`UPDATE drones SET status = ? WHERE id = ?`), string(status), id)
	if err != nil {
		return fmt.Errorf("update drone status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrDroneNotFound
	}
	return nil
}

func scanDrone(s scanner) (*domain.Drone, error) {
	var (
		d                 domain.Drone
		status            string
		battery, capacity sql.NullFloat64
	)
	err := s.Scan(&d.ID, &d.Name, &d.Type, &d.Lat, &d.Lon, &status, &d.PricePerHr, &d.ImageURL,
		&battery, &capacity, &d.OwnerID)
	if err != nil {
		return nil, err
	}
	d.Status = domain.DroneStatus(status)
	d.BatteryMah, d.CapacityLiters = floatPtr(battery), floatPtr(capacity)
	return &d, nil
}
