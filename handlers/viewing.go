package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	viewingRepo "renthaven/database/repository/viewing"
	"renthaven/models"
	"renthaven/services/scheduling"
)

// ViewingService is wired in main before the router starts serving.
var ViewingService scheduling.ViewingRequestService

// AvailabilityService answers availability probes for the landlord calendar.
var AvailabilityService scheduling.AvailabilityChecker

// ViewingLocker serializes availability-check-then-write sequences per
// landlord, shared with the assistant's scheduling flow.
var ViewingLocker viewingRepo.LandlordLocker

const landlordLockTimeout = 5 * time.Second

// withLandlordLock runs fn while holding the per-landlord advisory lock so a
// booking write cannot race another writer past the same availability check.
// It replies 503 when the lock cannot be acquired.
func withLandlordLock(c *gin.Context, landlordID string, fn func()) {
	lockCtx, cancel := context.WithTimeout(c.Request.Context(), landlordLockTimeout)
	defer cancel()

	release, err := ViewingLocker.Acquire(lockCtx, landlordID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "the landlord's calendar is busy, please try again"})
		return
	}
	defer release()

	fn()
}

// CreateViewingRequest lets a tenant ask for a viewing slot directly.
func CreateViewingRequest(c *gin.Context) {
	var input struct {
		PropertyID        int       `json:"propertyId" binding:"required"`
		LandlordID        string    `json:"landlordId" binding:"required"`
		RequestedDateTime time.Time `json:"requestedDateTime" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	tenantID := c.GetString("userID")

	withLandlordLock(c, input.LandlordID, func() {
		result := AvailabilityService.CheckAvailabilityFresh(c.Request.Context(), input.LandlordID, input.RequestedDateTime)
		if !result.Available {
			c.JSON(http.StatusConflict, gin.H{
				"error":        result.Reason,
				"alternatives": result.Alternatives,
			})
			return
		}

		req, err := ViewingService.Create(c.Request.Context(), input.PropertyID, tenantID, input.LandlordID, input.RequestedDateTime)
		if err != nil {
			if errors.Is(err, scheduling.ErrPropertyNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create viewing request", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, req)
	})
}

// GetViewingRequest returns one request by its numeric id.
func GetViewingRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid viewing request id"})
		return
	}

	req, err := ViewingService.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "viewing request not found"})
		return
	}

	caller := c.GetString("userID")
	if req.TenantID != caller && req.LandlordID != caller {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	c.JSON(http.StatusOK, req)
}

// UpdateViewingStatus lets a landlord approve, decline, propose a new
// time, or close a request.
func UpdateViewingStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid viewing request id"})
		return
	}

	var input struct {
		Status           models.ViewingRequestStatus `json:"status" binding:"required"`
		ProposedDateTime *time.Time                  `json:"proposedDateTime"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	current, err := ViewingService.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "viewing request not found"})
		return
	}
	if current.LandlordID != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	req, err := ViewingService.SetStatus(c.Request.Context(), id, input.Status, input.ProposedDateTime)
	if err != nil {
		var invalid *scheduling.InvalidTransitionError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusConflict, gin.H{"error": invalid.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update viewing request", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, req)
}

// RescheduleViewingRequest moves an existing request to a new time.
func RescheduleViewingRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid viewing request id"})
		return
	}

	var input struct {
		RequestedDateTime time.Time `json:"requestedDateTime" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	current, err := ViewingService.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "viewing request not found"})
		return
	}
	caller := c.GetString("userID")
	if current.TenantID != caller && current.LandlordID != caller {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	withLandlordLock(c, current.LandlordID, func() {
		result := AvailabilityService.CheckAvailabilityFresh(c.Request.Context(), current.LandlordID, input.RequestedDateTime)
		if !result.Available {
			c.JSON(http.StatusConflict, gin.H{
				"error":        result.Reason,
				"alternatives": result.Alternatives,
			})
			return
		}

		req, err := ViewingService.Reschedule(c.Request.Context(), id, input.RequestedDateTime)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reschedule viewing request", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, req)
	})
}

// CancelViewingRequest removes a request. Cancelling an already-gone
// request still returns success.
func CancelViewingRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid viewing request id"})
		return
	}

	current, err := ViewingService.GetByID(c.Request.Context(), id)
	if err == nil {
		caller := c.GetString("userID")
		if current.TenantID != caller && current.LandlordID != caller {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
	}

	if err := ViewingService.Cancel(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel viewing request", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// ListMyViewingRequests returns the caller's requests, tenant or
// landlord side depending on their role claim.
func ListMyViewingRequests(c *gin.Context) {
	caller := c.GetString("userID")

	var (
		reqs []models.ViewingRequest
		err  error
	)
	if c.GetString("role") == "landlord" {
		reqs, err = ViewingService.ListByLandlord(c.Request.Context(), caller)
	} else {
		reqs, err = ViewingService.ListByTenant(c.Request.Context(), caller)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list viewing requests", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"viewingRequests": reqs})
}

// CheckAvailability probes a landlord's calendar for one slot.
func CheckAvailability(c *gin.Context) {
	landlordID := c.Query("landlordId")
	if landlordID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "landlordId is required"})
		return
	}
	requested, err := time.Parse(time.RFC3339, c.Query("dateTime"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dateTime must be RFC3339"})
		return
	}

	result := AvailabilityService.CheckAvailability(c.Request.Context(), landlordID, requested)
	c.JSON(http.StatusOK, result)
}
