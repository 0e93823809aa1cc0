package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

// profileQueries is the fixed statement set for one profile table.
type profileQueries struct {
	findByMobile   string
	insert         string
	updateLocation string
	list           string
}

var ownerQueries = profileQueries{
	findByMobile:   `SELECT id, name, mobile, lat, lon FROM owners WHERE mobile = ?`,
	insert:         `INSERT INTO owners (name, mobile, lat, lon) VALUES (?, ?, ?, ?) RETURNING id`,
	updateLocation: `UPDATE owners SET lat = ?, lon = ? WHERE mobile = ?`,
	list:           `SELECT id, name, mobile, lat, lon FROM owners ORDER BY id`,
}

var requesterQueries = profileQueries{
	findByMobile:   `SELECT id, name, mobile, lat, lon FROM requesters WHERE mobile = ?`,
	insert:         `INSERT INTO requesters (name, mobile, lat, lon) VALUES (?, ?, ?, ?) RETURNING id`,
	updateLocation: `UPDATE requesters SET lat = ?, lon = ? WHERE mobile = ?`,
	list:           `SELECT id, name, mobile, lat, lon FROM requesters ORDER BY id`,
}

type ProfileRepository struct {
	db *DB
	q  profileQueries
}

var _ ports.ProfileStore = (*ProfileRepository)(nil)

func NewOwnerRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db, q: ownerQueries}
}

func NewRequesterRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db, q: requesterQueries}
}

// ProfileStores wires both role tables for the core.
func ProfileStores(db *DB) ports.ProfileStores {
	return ports.ProfileStores{
		Owners:     NewOwnerRepository(db),
		Requesters: NewRequesterRepository(db),
	}
}

func (r *ProfileRepository) FindByMobile(ctx context.Context, mobile string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	p, err := scanProfile(r.db.sql.QueryRowContext(ctx, r.db.rebind(r.q.findByMobile), mobile))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out := *p
	err := r.db.sql.QueryRowContext(ctx, r.db.rebind(r.q.insert),
		p.Name, p.Mobile, nullFloat(p.Lat), nullFloat(p.Lon),
	).Scan(&out.ID)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return &out, nil
}

func (r *ProfileRepository) UpdateLocation(ctx context.Context, mobile string, lat, lon float64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.sql.ExecContext(ctx, r.db.rebind(r.q.updateLocation), lat, lon, mobile)
	if err != nil {
		return fmt.Errorf("update profile location: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.sql.QueryContext(ctx, r.q.list)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*domain.Profile, error) {
	var (
		p        domain.Profile
		lat, lon sql.NullFloat64
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Mobile, &lat, &lon); err != nil {
		return nil, err
	}
	p.Lat, p.Lon = floatPtr(lat), floatPtr(lon)
	return &p, nil
}
