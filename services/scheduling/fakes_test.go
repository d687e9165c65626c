package scheduling

import (
	"context"
	"sync"
	"time"

	propertyRepo "renthaven/database/repository/property"
	viewingRepo "renthaven/database/repository/viewing"
	"renthaven/models"
)

// fixedClock returns a clock pinned to a Monday at 09:00 UTC so weekday
// rules are deterministic.
func fixedClock() func() time.Time {
	// 2025-06-02 is a Monday.
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

// fakeViewingRepo is an in-memory ViewingRepository. It counts conflict
// queries so cache behaviour can be asserted.
type fakeViewingRepo struct {
	mu            sync.Mutex
	nextID        int
	requests      map[int]models.ViewingRequest
	createErr     error
	updateErr     error
	conflictErr   error
	conflictCalls int
}

func newFakeViewingRepo() *fakeViewingRepo {
	return &fakeViewingRepo{nextID: 1, requests: make(map[int]models.ViewingRequest)}
}

func (r *fakeViewingRepo) Create(ctx context.Context, req *models.ViewingRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	req.ID = r.nextID
	r.nextID++
	r.requests[req.ID] = *req
	return nil
}

func (r *fakeViewingRepo) GetByID(ctx context.Context, id int) (*models.ViewingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, viewingRepo.ErrNotFound
	}
	return &req, nil
}

func (r *fakeViewingRepo) Update(ctx context.Context, req *models.ViewingRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.requests[req.ID]; !ok {
		return viewingRepo.ErrNotFound
	}
	r.requests[req.ID] = *req
	return nil
}

func (r *fakeViewingRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, id)
	return nil
}

func (r *fakeViewingRepo) FindActive(ctx context.Context, tenantID, landlordID string, propertyID int) (*models.ViewingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *models.ViewingRequest
	for id := range r.requests {
		req := r.requests[id]
		if req.TenantID != tenantID || req.LandlordID != landlordID || req.PropertyID != propertyID {
			continue
		}
		if !req.Status.IsActive() {
			continue
		}
		if newest == nil || req.CreatedAt.After(newest.CreatedAt) {
			copied := req
			newest = &copied
		}
	}
	return newest, nil
}

func (r *fakeViewingRepo) FindConflicting(ctx context.Context, landlordID string, from, to time.Time) ([]models.ViewingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflictCalls++
	if r.conflictErr != nil {
		return nil, r.conflictErr
	}
	var out []models.ViewingRequest
	for _, req := range r.requests {
		if req.LandlordID != landlordID || !req.Status.IsActive() {
			continue
		}
		if !req.RequestedDateTime.Before(from) && !req.RequestedDateTime.After(to) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeViewingRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.ViewingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ViewingRequest
	for _, req := range r.requests {
		if req.TenantID == tenantID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeViewingRepo) ListByLandlord(ctx context.Context, landlordID string) ([]models.ViewingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ViewingRequest
	for _, req := range r.requests {
		if req.LandlordID == landlordID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeViewingRepo) FindStale(ctx context.Context, cutoff time.Time) ([]models.ViewingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ViewingRequest
	for _, req := range r.requests {
		if req.Status != models.ViewingStatusPending && req.Status != models.ViewingStatusProposed {
			continue
		}
		if req.RequestedDateTime.Before(cutoff) {
			out = append(out, req)
		}
	}
	return out, nil
}

// fakePropertyRepo serves a fixed set of properties.
type fakePropertyRepo struct {
	properties map[int]models.Property
}

func newFakePropertyRepo(ids ...int) *fakePropertyRepo {
	props := make(map[int]models.Property)
	for _, id := range ids {
		props[id] = models.Property{ID: id, LandlordID: "landlord-1", Title: "Flat 4b", Published: true}
	}
	return &fakePropertyRepo{properties: props}
}

func (r *fakePropertyRepo) Create(ctx context.Context, property *models.Property) error {
	r.properties[property.ID] = *property
	return nil
}

func (r *fakePropertyRepo) GetByID(ctx context.Context, id int) (*models.Property, error) {
	property, ok := r.properties[id]
	if !ok {
		return nil, propertyRepo.ErrNotFound
	}
	return &property, nil
}

func (r *fakePropertyRepo) ListByLandlord(ctx context.Context, landlordID string) ([]models.Property, error) {
	var out []models.Property
	for _, property := range r.properties {
		if property.LandlordID == landlordID {
			out = append(out, property)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) ListPublished(ctx context.Context) ([]models.Property, error) {
	var out []models.Property
	for _, property := range r.properties {
		if property.Published {
			out = append(out, property)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) Update(ctx context.Context, property *models.Property) error {
	r.properties[property.ID] = *property
	return nil
}

func (r *fakePropertyRepo) Delete(ctx context.Context, id int) error {
	delete(r.properties, id)
	return nil
}

// memoryCache is an in-memory AvailabilityCache with hit accounting.
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string]models.AvailabilityResult
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]models.AvailabilityResult)}
}

func (c *memoryCache) Get(ctx context.Context, landlordID string, requested time.Time) (*models.AvailabilityResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.entries[availabilityKey(landlordID, requested)]
	if !ok {
		return nil, false
	}
	return &result, true
}

func (c *memoryCache) Set(ctx context.Context, landlordID string, requested time.Time, result models.AvailabilityResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[availabilityKey(landlordID, requested)] = result
}

func (c *memoryCache) Invalidate(ctx context.Context, landlordID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.entries = make(map[string]models.AvailabilityResult)
}

// nopCache never stores anything.
type nopCache struct{}

func (nopCache) Get(ctx context.Context, landlordID string, requested time.Time) (*models.AvailabilityResult, bool) {
	return nil, false
}
func (nopCache) Set(ctx context.Context, landlordID string, requested time.Time, result models.AvailabilityResult) {
}
func (nopCache) Invalidate(ctx context.Context, landlordID string) {}

// serialLocker is an in-process LandlordLocker backed by a mutex per key.
type serialLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSerialLocker() *serialLocker {
	return &serialLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *serialLocker) Acquire(ctx context.Context, landlordID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[landlordID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[landlordID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

// failingLocker always refuses the lock.
type failingLocker struct{}

func (failingLocker) Acquire(ctx context.Context, landlordID string) (func(), error) {
	return nil, context.DeadlineExceeded
}

// fakeExtractor returns a canned intent or error.
type fakeExtractor struct {
	intent models.SchedulingIntent
	err    error
}

func (e *fakeExtractor) Classify(ctx context.Context, message string, now time.Time) (models.SchedulingIntent, error) {
	if e.err != nil {
		return models.SchedulingIntent{}, e.err
	}
	return e.intent, nil
}
