package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Profile store
// ---------------------------------------------------------------------------

type stubProfileStore struct {
	mu        sync.Mutex
	nextID    int64
	byMobile  map[string]*domain.Profile
	findErr   error
	createErr error
	created   int
	relocated int
}

func newStubProfileStore() *stubProfileStore {
	return &stubProfileStore{byMobile: make(map[string]*domain.Profile)}
}

func (s *stubProfileStore) FindByMobile(_ context.Context, mobile string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	p, ok := s.byMobile[mobile]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (s *stubProfileStore) Create(_ context.Context, p *domain.Profile) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	c := cloneProfile(p)
	c.ID = s.nextID
	s.byMobile[c.Mobile] = c
	s.created++
	return cloneProfile(c), nil
}

func (s *stubProfileStore) UpdateLocation(_ context.Context, mobile string, lat, lon float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byMobile[mobile]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Lat, p.Lon = &lat, &lon
	s.relocated++
	return nil
}

func (s *stubProfileStore) List(_ context.Context) ([]*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Profile, 0, len(s.byMobile))
	for _, p := range s.byMobile {
		out = append(out, cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubProfileStore) seed(id int64, name, mobile string) *domain.Profile {
	p := &domain.Profile{ID: id, Name: name, Mobile: mobile}
	s.byMobile[mobile] = p
	if id > s.nextID {
		s.nextID = id
	}
	return p
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	c := *p
	return &c
}

func newStores() (ports.ProfileStores, *stubProfileStore, *stubProfileStore) {
	owners, requesters := newStubProfileStore(), newStubProfileStore()
	return ports.ProfileStores{Owners: owners, Requesters: requesters}, owners, requesters
}

// ---------------------------------------------------------------------------
// Drone repository
// ---------------------------------------------------------------------------

type stubDroneRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Drone
	order  []int64
}

func newStubDroneRepo() *stubDroneRepo {
	return &stubDroneRepo{byID: make(map[int64]*domain.Drone)}
}

func (r *stubDroneRepo) Create(_ context.Context, d *domain.Drone) (*domain.Drone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := *d
	c.ID = r.nextID
	r.byID[c.ID] = &c
	r.order = append(r.order, c.ID)
	out := c
	return &out, nil
}

func (r *stubDroneRepo) FindByID(_ context.Context, id int64) (*domain.Drone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrDroneNotFound
	}
	c := *d
	return &c, nil
}

func (r *stubDroneRepo) List(_ context.Context) ([]*domain.Drone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Drone, 0, len(r.order))
	for _, id := range r.order {
		c := *r.byID[id]
		out = append(out, &c)
	}
	return out, nil
}

func (r *stubDroneRepo) UpdateStatus(_ context.Context, id int64, status domain.DroneStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return domain.ErrDroneNotFound
	}
	d.Status = status
	return nil
}

func (r *stubDroneRepo) status(id int64) domain.DroneStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id].Status
}

// ---------------------------------------------------------------------------
// Booking repository
// ---------------------------------------------------------------------------

var errStoreDown = errors.New("store unavailable")

// stubBookingRepo applies transitions to itself and to drones together, or
// not at all when applyErr is set.
type stubBookingRepo struct {
	mu       sync.Mutex
	nextID   int64
	byID     map[int64]*domain.Booking
	drones   *stubDroneRepo
	applyErr error
	applied  int
}

func newStubBookingRepo(drones *stubDroneRepo) *stubBookingRepo {
	return &stubBookingRepo{byID: make(map[int64]*domain.Booking), drones: drones}
}

func (r *stubBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := *b
	c.ID = r.nextID
	r.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (r *stubBookingRepo) FindByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	c := *b
	return &c, nil
}

func (r *stubBookingRepo) ListByOwner(ctx context.Context, ownerID int64, status domain.BookingStatus) ([]*domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool {
		d, err := r.drones.FindByID(ctx, b.DroneID)
		return err == nil && d.OwnerID == ownerID && (status == "" || b.Status == status)
	}), nil
}

func (r *stubBookingRepo) ListByRequester(_ context.Context, mobile string, status domain.BookingStatus) ([]*domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool {
		return b.RequesterMobile == mobile && (status == "" || b.Status == status)
	}), nil
}

func (r *stubBookingRepo) filter(keep func(*domain.Booking) bool) []*domain.Booking {
	r.mu.Lock()
	all := make([]*domain.Booking, 0, len(r.byID))
	for _, b := range r.byID {
		c := *b
		all = append(all, &c)
	}
	r.mu.Unlock()

	out := all[:0]
	for _, b := range all {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubBookingRepo) ApplyTransition(_ context.Context, bookingID int64, status domain.BookingStatus, droneID int64, availability domain.DroneStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applyErr != nil {
		return r.applyErr
	}
	b, ok := r.byID[bookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	r.drones.mu.Lock()
	d, ok := r.drones.byID[droneID]
	if !ok {
		r.drones.mu.Unlock()
		return domain.ErrDroneNotFound
	}
	b.Status = status
	d.Status = availability
	r.drones.mu.Unlock()
	r.applied++
	return nil
}

func (r *stubBookingRepo) status(id int64) domain.BookingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id].Status
}

// ---------------------------------------------------------------------------
// Attempt limiter
// ---------------------------------------------------------------------------

type stubLimiter struct {
	blocked  bool
	checkErr error
	failures map[string]int
	resets   int
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{failures: make(map[string]int)}
}

func (l *stubLimiter) Blocked(_ context.Context, _ string) (bool, error) {
	return l.blocked, l.checkErr
}

func (l *stubLimiter) Fail(_ context.Context, key string) error {
	l.failures[key]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, key string) error {
	delete(l.failures, key)
	l.resets++
	return nil
}

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 10, 20, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
