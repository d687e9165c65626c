package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	propertyRepo "renthaven/database/repository/property"
	viewingRepo "renthaven/database/repository/viewing"
	"renthaven/models"
	"renthaven/utils"

	"go.uber.org/zap"
)

// ViewingRequestService owns the viewing request lifecycle. All mutations of
// viewing request records go through it.
type ViewingRequestService interface {
	Create(ctx context.Context, propertyID int, tenantID, landlordID string, requested time.Time) (*models.ViewingRequest, error)
	GetByID(ctx context.Context, id int) (*models.ViewingRequest, error)
	// FindActive returns the most recently created pending/approved request
	// for the triple, or (nil, nil) when there is none.
	FindActive(ctx context.Context, tenantID, landlordID string, propertyID int) (*models.ViewingRequest, error)
	SetStatus(ctx context.Context, id int, status models.ViewingRequestStatus, proposed *time.Time) (*models.ViewingRequest, error)
	// Reschedule moves a request to the new time and resets it to pending
	// regardless of prior status. It does not re-check availability; callers
	// must consult the availability checker first.
	Reschedule(ctx context.Context, id int, newTime time.Time) (*models.ViewingRequest, error)
	// Cancel deletes the request. Cancelling an absent ID is a no-op.
	Cancel(ctx context.Context, id int) error
	// CloseStale closes pending/proposed requests whose viewing time passed
	// more than olderThan ago, returning the number closed.
	CloseStale(ctx context.Context, olderThan time.Duration) (int, error)
	ListByTenant(ctx context.Context, tenantID string) ([]models.ViewingRequest, error)
	ListByLandlord(ctx context.Context, landlordID string) ([]models.ViewingRequest, error)
}

// DefaultViewingRequestService is the production implementation.
type DefaultViewingRequestService struct {
	Repo       viewingRepo.ViewingRepository
	Properties propertyRepo.PropertyRepository
	Cache      AvailabilityCache

	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time
}

func (s *DefaultViewingRequestService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *DefaultViewingRequestService) invalidate(ctx context.Context, landlordID string) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, landlordID)
	}
}

// Create inserts a new pending viewing request after validating the property
// reference.
func (s *DefaultViewingRequestService) Create(ctx context.Context, propertyID int, tenantID, landlordID string, requested time.Time) (*models.ViewingRequest, error) {
	if _, err := s.Properties.GetByID(ctx, propertyID); err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to validate property %d: %w", propertyID, err)
	}

	now := s.now()
	req := &models.ViewingRequest{
		PropertyID:        propertyID,
		TenantID:          tenantID,
		LandlordID:        landlordID,
		RequestedDateTime: requested,
		Status:            models.ViewingStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create viewing request: %w", err)
	}

	s.invalidate(ctx, landlordID)
	return req, nil
}

func (s *DefaultViewingRequestService) GetByID(ctx context.Context, id int) (*models.ViewingRequest, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DefaultViewingRequestService) FindActive(ctx context.Context, tenantID, landlordID string, propertyID int) (*models.ViewingRequest, error) {
	return s.Repo.FindActive(ctx, tenantID, landlordID, propertyID)
}

// SetStatus applies one transition of the viewing request state machine.
func (s *DefaultViewingRequestService) SetStatus(ctx context.Context, id int, status models.ViewingRequestStatus, proposed *time.Time) (*models.ViewingRequest, error) {
	req, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateTransition(req.Status, status, proposed); err != nil {
		utils.GetLogger().Error("rejected viewing request transition",
			zap.Int("id", id),
			zap.String("from", string(req.Status)),
			zap.String("to", string(status)),
			zap.Error(err))
		return nil, err
	}

	switch status {
	case models.ViewingStatusProposed:
		req.ProposedDateTime = proposed
	case models.ViewingStatusApproved:
		if req.Status == models.ViewingStatusProposed {
			req.RequestedDateTime = *req.ProposedDateTime
			req.ProposedDateTime = nil
		}
	case models.ViewingStatusDeclined, models.ViewingStatusClosed:
		req.ProposedDateTime = nil
	}
	req.Status = status
	req.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to update viewing request %d: %w", id, err)
	}

	s.invalidate(ctx, req.LandlordID)
	return req, nil
}

// validateTransition enforces the transition table. Pending is only entered
// at creation or through Reschedule.
func validateTransition(from, to models.ViewingRequestStatus, proposed *time.Time) error {
	if from == models.ViewingStatusDeclined || from == models.ViewingStatusClosed {
		return &InvalidTransitionError{From: from, To: to}
	}
	switch to {
	case models.ViewingStatusProposed:
		if proposed == nil {
			return &InvalidTransitionError{From: from, To: to}
		}
		return nil
	case models.ViewingStatusApproved:
		if from == models.ViewingStatusPending || from == models.ViewingStatusProposed {
			return nil
		}
	case models.ViewingStatusDeclined, models.ViewingStatusClosed:
		return nil
	}
	return &InvalidTransitionError{From: from, To: to}
}

// Reschedule resets the request to pending with the new time.
func (s *DefaultViewingRequestService) Reschedule(ctx context.Context, id int, newTime time.Time) (*models.ViewingRequest, error) {
	req, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.RequestedDateTime = newTime
	req.ProposedDateTime = nil
	req.Status = models.ViewingStatusPending
	req.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to reschedule viewing request %d: %w", id, err)
	}

	s.invalidate(ctx, req.LandlordID)
	return req, nil
}

// Cancel deletes the request. A missing ID is treated as success.
func (s *DefaultViewingRequestService) Cancel(ctx context.Context, id int) error {
	req, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, viewingRepo.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to cancel viewing request %d: %w", id, err)
	}

	s.invalidate(ctx, req.LandlordID)
	return nil
}

// CloseStale closes pending/proposed requests whose viewing time passed more
// than olderThan ago.
func (s *DefaultViewingRequestService) CloseStale(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.Repo.FindStale(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to find stale viewing requests: %w", err)
	}

	closed := 0
	for _, req := range stale {
		if _, err := s.SetStatus(ctx, req.ID, models.ViewingStatusClosed, nil); err != nil {
			utils.GetLogger().Warn("failed to close stale viewing request",
				zap.Int("id", req.ID), zap.Error(err))
			continue
		}
		closed++
	}
	return closed, nil
}

func (s *DefaultViewingRequestService) ListByTenant(ctx context.Context, tenantID string) ([]models.ViewingRequest, error) {
	return s.Repo.ListByTenant(ctx, tenantID)
}

func (s *DefaultViewingRequestService) ListByLandlord(ctx context.Context, landlordID string) ([]models.ViewingRequest, error) {
	return s.Repo.ListByLandlord(ctx, landlordID)
}
