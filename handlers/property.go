package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	propertyRepo "renthaven/database/repository/property"
	"renthaven/models"
)

// PropertyRepo is wired in main before the router starts serving.
var PropertyRepo propertyRepo.PropertyRepository

// CreateProperty registers a new listing for the calling landlord.
func CreateProperty(c *gin.Context) {
	var input struct {
		Title      string  `json:"title" binding:"required"`
		Address    string  `json:"address" binding:"required"`
		RentAmount float64 `json:"rentAmount"`
		Published  bool    `json:"published"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	now := time.Now().UTC()
	property := models.Property{
		LandlordID: c.GetString("userID"),
		Title:      input.Title,
		Address:    input.Address,
		RentAmount: input.RentAmount,
		Published:  input.Published,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := PropertyRepo.Create(c.Request.Context(), &property); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create property", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, property)
}

// GetProperty returns one listing by id.
func GetProperty(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	property, err := PropertyRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch property", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, property)
}

// ListProperties returns published listings, or the caller's own
// listings when mine=true.
func ListProperties(c *gin.Context) {
	var (
		properties []models.Property
		err        error
	)
	if c.Query("mine") == "true" {
		properties, err = PropertyRepo.ListByLandlord(c.Request.Context(), c.GetString("userID"))
	} else {
		properties, err = PropertyRepo.ListPublished(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list properties", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

// UpdateProperty edits a listing owned by the caller.
func UpdateProperty(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	property, err := PropertyRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	if property.LandlordID != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	var input struct {
		Title      *string  `json:"title"`
		Address    *string  `json:"address"`
		RentAmount *float64 `json:"rentAmount"`
		Published  *bool    `json:"published"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if input.Title != nil {
		property.Title = *input.Title
	}
	if input.Address != nil {
		property.Address = *input.Address
	}
	if input.RentAmount != nil {
		property.RentAmount = *input.RentAmount
	}
	if input.Published != nil {
		property.Published = *input.Published
	}
	property.UpdatedAt = time.Now().UTC()

	if err := PropertyRepo.Update(c.Request.Context(), property); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update property", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, property)
}

// DeleteProperty removes a listing owned by the caller.
func DeleteProperty(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	property, err := PropertyRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	if property.LandlordID != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	if err := PropertyRepo.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete property", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
