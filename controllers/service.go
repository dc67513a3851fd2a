// controllers/service.go
package controllers

import (
	"errors"
	"net/http"
	"servicehub-backend/config"
	"servicehub-backend/models"
	"servicehub-backend/utils"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Images      []string `json:"images"`
}

// UpdateServiceInput defines the expected JSON structure for updating a service
type UpdateServiceInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Category    *string   `json:"category"`
	Images      *[]string `json:"images"`
	Available   *bool     `json:"available"`
}

// AddReviewInput defines the expected JSON structure for reviewing a service
type AddReviewInput struct {
	Comment string  `json:"comment"`
	Rating  float64 `json:"rating" binding:"required"`
}

func userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}

// CreateService creates a new listing owned by the authenticated provider
func CreateService(c *gin.Context) {
	providerUUID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if *input.Price < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Price cannot be negative")
		return
	}

	service := models.Service{
		ProviderID:  providerUUID,
		Title:       input.Title,
		Description: input.Description,
		Price:       *input.Price,
		Category:    input.Category,
		Images:      models.StringArray(input.Images),
		Available:   true,
	}

	if err := config.DB.Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}

	c.JSON(http.StatusCreated, service)
}

// GetProviderServices retrieves the authenticated provider's own listings
func GetProviderServices(c *gin.Context) {
	providerUUID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var services []models.Service
	if err := config.DB.Where("provider_id = ?", providerUUID).Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetAllServices retrieves every listing, best rated first
func GetAllServices(c *gin.Context) {
	var services []models.Service
	if err := config.DB.Order("rating DESC").Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetService retrieves a specific listing with its reviews and provider info
func GetService(c *gin.Context) {
	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var service models.Service
	if err := config.DB.Preload("Reviews").First(&service, "id = ?", serviceUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Provider may have been deleted; listings stay readable regardless
	provider := gin.H{"name": "Provider unavailable"}
	var owner models.User
	if err := config.DB.First(&owner, "id = ?", service.ProviderID).Error; err == nil {
		provider = gin.H{
			"id":           owner.ID,
			"name":         owner.Name,
			"description":  owner.Description,
			"profileImage": owner.ProfileImage,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"service":  service,
		"provider": provider,
	})
}

// UpdateService updates one of the authenticated provider's listings
func UpdateService(c *gin.Context) {
	providerUUID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var service models.Service
	if err := config.DB.Where("provider_id = ? AND id = ?", providerUUID, serviceUUID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Title != nil {
		service.Title = *input.Title
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Price cannot be negative")
			return
		}
		service.Price = *input.Price
	}
	if input.Category != nil {
		service.Category = *input.Category
	}
	if input.Images != nil {
		service.Images = models.StringArray(*input.Images)
	}
	if input.Available != nil {
		service.Available = *input.Available
	}

	if err := config.DB.Save(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		return
	}

	c.JSON(http.StatusOK, service)
}

// DeleteService removes one of the authenticated provider's listings
func DeleteService(c *gin.Context) {
	providerUUID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	result := config.DB.Where("provider_id = ? AND id = ?", providerUUID, serviceUUID).
		Delete(&models.Service{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}

// GetServicesByCategory filters listings by category, best rated first
func GetServicesByCategory(c *gin.Context) {
	var services []models.Service
	if err := config.DB.Where("category = ?", c.Param("category")).
		Order("rating DESC").Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetServicesByPriceRange filters listings by optional minPrice and maxPrice
func GetServicesByPriceRange(c *gin.Context) {
	query := config.DB.Model(&models.Service{})

	if minPrice := c.Query("minPrice"); minPrice != "" {
		min, err := strconv.ParseFloat(minPrice, 64)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid minPrice")
			return
		}
		query = query.Where("price >= ?", min)
	}
	if maxPrice := c.Query("maxPrice"); maxPrice != "" {
		max, err := strconv.ParseFloat(maxPrice, 64)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid maxPrice")
			return
		}
		query = query.Where("price <= ?", max)
	}

	var services []models.Service
	if err := query.Order("rating DESC").Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetServicesByRating filters listings by minimum rating, best rated first
func GetServicesByRating(c *gin.Context) {
	minRating, err := strconv.ParseFloat(c.Param("rating"), 64)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid rating")
		return
	}

	var services []models.Service
	if err := config.DB.Where("rating >= ?", minRating).
		Order("rating DESC").Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetServicesByKeyword searches title and description case-insensitively
func GetServicesByKeyword(c *gin.Context) {
	keyword := "%" + c.Param("keyword") + "%"

	var services []models.Service
	if err := config.DB.Where("title ILIKE ? OR description ILIKE ?", keyword, keyword).
		Order("rating DESC").Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetServicesByAvailability filters listings by the available flag
func GetServicesByAvailability(c *gin.Context) {
	available := c.Param("available") == "true"

	var services []models.Service
	if err := config.DB.Where("available = ?", available).
		Order("rating DESC").Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// AddReview appends a client review to a service and recomputes the service
// average. Repeat reviews from the same client are allowed.
func AddReview(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	clientUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var input AddReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !utils.ValidateRatingValue(input.Rating) {
		utils.RespondWithError(c, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	var service models.Service
	if err := config.DB.First(&service, "id = ?", serviceUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Append the review and rewrite the average in the same transaction
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		review := models.Review{
			ServiceID: serviceUUID,
			ClientID:  clientUUID,
			Comment:   input.Comment,
			Rating:    input.Rating,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		var reviews []models.Review
		if err := tx.Where("service_id = ?", serviceUUID).Find(&reviews).Error; err != nil {
			return err
		}
		service.Rating = models.AverageReviewRating(reviews)
		service.Reviews = reviews

		return tx.Model(&models.Service{}).Where("id = ?", serviceUUID).
			Update("rating", service.Rating).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save review")
		return
	}

	c.JSON(http.StatusOK, service)
}
