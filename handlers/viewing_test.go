package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	propertyRepo "renthaven/database/repository/property"
	viewingRepo "renthaven/database/repository/viewing"
	"renthaven/models"
	"renthaven/services/scheduling"
)

// memViewingRepo is an in-memory ViewingRepository shared by concurrent
// requests in these tests.
type memViewingRepo struct {
	mu       sync.Mutex
	nextID   int
	requests map[int]models.ViewingRequest
}

func newMemViewingRepo() *memViewingRepo {
	return &memViewingRepo{nextID: 1, requests: make(map[int]models.ViewingRequest)}
}

func (r *memViewingRepo) Create(ctx context.Context, req *models.ViewingRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = r.nextID
	r.nextID++
	r.requests[req.ID] = *req
	return nil
}

func (r *memViewingRepo) GetByID(ctx context.Context, id int) (*models.ViewingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, viewingRepo.ErrNotFound
	}
	return &req, nil
}

func (r *memViewingRepo) Update(ctx context.Context, req *models.ViewingRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; !ok {
		return viewingRepo.ErrNotFound
	}
	r.requests[req.ID] = *req
	return nil
}

func (r *memViewingRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, id)
	return nil
}

func (r *memViewingRepo) FindActive(ctx context.Context, tenantID, landlordID string, propertyID int) (*models.ViewingRequest, error) {
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

func (r *memViewingRepo) FindConflicting(ctx context.Context, landlordID string, from, to time.Time) ([]models.ViewingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *memViewingRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.ViewingRequest, error) {
	return nil, nil
}

func (r *memViewingRepo) ListByLandlord(ctx context.Context, landlordID string) ([]models.ViewingRequest, error) {
	return nil, nil
}

func (r *memViewingRepo) FindStale(ctx context.Context, cutoff time.Time) ([]models.ViewingRequest, error) {
	return nil, nil
}

func (r *memViewingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// memPropertyRepo validates every property reference against a single
// landlord-1 listing.
type memPropertyRepo struct{}

func (memPropertyRepo) Create(ctx context.Context, property *models.Property) error { return nil }
func (memPropertyRepo) GetByID(ctx context.Context, id int) (*models.Property, error) {
	return &models.Property{ID: id, LandlordID: "landlord-1", Title: "Flat 4b", Published: true}, nil
}
func (memPropertyRepo) ListByLandlord(ctx context.Context, landlordID string) ([]models.Property, error) {
	return nil, nil
}
func (memPropertyRepo) ListPublished(ctx context.Context) ([]models.Property, error) {
	return nil, nil
}
func (memPropertyRepo) Update(ctx context.Context, property *models.Property) error { return nil }
func (memPropertyRepo) Delete(ctx context.Context, id int) error                    { return nil }

var _ propertyRepo.PropertyRepository = memPropertyRepo{}

type noStoreCache struct{}

func (noStoreCache) Get(ctx context.Context, landlordID string, requested time.Time) (*models.AvailabilityResult, bool) {
	return nil, false
}
func (noStoreCache) Set(ctx context.Context, landlordID string, requested time.Time, result models.AvailabilityResult) {
}
func (noStoreCache) Invalidate(ctx context.Context, landlordID string) {}

// mutexLocker is an in-process LandlordLocker backed by a mutex per key.
type mutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMutexLocker() *mutexLocker {
	return &mutexLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *mutexLocker) Acquire(ctx context.Context, landlordID string) (func(), error) {
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

type refusingLocker struct{}

func (refusingLocker) Acquire(ctx context.Context, landlordID string) (func(), error) {
	return nil, context.DeadlineExceeded
}

// newViewingTestRouter wires the viewing handlers against in-memory storage
// and a deterministic clock pinned to Monday 2025-06-02 09:00 UTC.
func newViewingTestRouter(t *testing.T, repo *memViewingRepo, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ViewingService = &scheduling.DefaultViewingRequestService{
		Repo:       repo,
		Properties: memPropertyRepo{},
	}
	AvailabilityService = &scheduling.DefaultAvailabilityChecker{
		Bookings: repo,
		Cache:    noStoreCache{},
		Schedule: scheduling.DefaultWeeklySchedule(),
		LeadTime: 2 * time.Hour,
		Buffer:   time.Hour,
		Clock:    func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) },
	}
	ViewingLocker = newMutexLocker()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("role", "tenant")
	})
	r.POST("/viewings", CreateViewingRequest)
	r.PUT("/viewings/:id/reschedule", RescheduleViewingRequest)
	return r
}

func TestCreateViewingRequestConcurrentSameSlot(t *testing.T) {
	repo := newMemViewingRepo()
	router := newViewingTestRouter(t, repo, "tenant-1")

	body := `{"propertyId":7,"landlordId":"landlord-1","requestedDateTime":"2025-06-03T11:00:00Z"}`
	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/viewings", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	created, rejected := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			rejected++
		}
	}
	require.Equal(t, 1, created, "codes: %v", codes)
	require.Equal(t, 1, rejected, "codes: %v", codes)
	require.Equal(t, 1, repo.count(), "only one booking may be admitted for the slot")
}

func TestCreateViewingRequestLockUnavailable(t *testing.T) {
	repo := newMemViewingRepo()
	router := newViewingTestRouter(t, repo, "tenant-1")
	ViewingLocker = refusingLocker{}

	body := `{"propertyId":7,"landlordId":"landlord-1","requestedDateTime":"2025-06-03T11:00:00Z"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/viewings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Zero(t, repo.count())
}

func TestRescheduleViewingRequestRevalidatesConflicts(t *testing.T) {
	repo := newMemViewingRepo()
	router := newViewingTestRouter(t, repo, "tenant-1")

	other := models.ViewingRequest{
		PropertyID: 7, TenantID: "tenant-2", LandlordID: "landlord-1",
		RequestedDateTime: time.Date(2025, 6, 3, 11, 0, 0, 0, time.UTC),
		Status:            models.ViewingStatusApproved,
	}
	require.NoError(t, repo.Create(context.Background(), &other))
	mine := models.ViewingRequest{
		PropertyID: 7, TenantID: "tenant-1", LandlordID: "landlord-1",
		RequestedDateTime: time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC),
		Status:            models.ViewingStatusApproved,
	}
	require.NoError(t, repo.Create(context.Background(), &mine))

	reschedule := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		body := fmt.Sprintf(`{"requestedDateTime":%q}`, target)
		req := httptest.NewRequest(http.MethodPut,
			fmt.Sprintf("/viewings/%d/reschedule", mine.ID), strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)
		return rec
	}

	// 11:30 falls inside the buffer around the other tenant's 11:00 booking.
	rec := reschedule("2025-06-03T11:30:00Z")
	require.Equal(t, http.StatusConflict, rec.Code)
	stored, err := repo.GetByID(context.Background(), mine.ID)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC), stored.RequestedDateTime)

	rec = reschedule("2025-06-03T16:00:00Z")
	require.Equal(t, http.StatusOK, rec.Code)
	var moved models.ViewingRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &moved))
	require.Equal(t, time.Date(2025, 6, 3, 16, 0, 0, 0, time.UTC), moved.RequestedDateTime)
	require.Equal(t, models.ViewingStatusPending, moved.Status)
}
