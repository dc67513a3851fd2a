package controllers

import (
	"errors"
	"math/rand"
	"net/http"
	"servicehub-backend/config"
	"servicehub-backend/models"
	"servicehub-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UpdateProfileInput struct {
	Name         *string             `json:"name"`
	Description  *string             `json:"description"`
	Phone        *string             `json:"phone"`
	Tags         *models.StringArray `json:"tags"`
	Logo         *string             `json:"logo"`
	ProfileImage *string             `json:"profileImage"`
}

type RateProviderInput struct {
	Value float64 `json:"value" binding:"required"`
}

// GetProfile returns the authenticated user's own profile
func GetProfile(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "User not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile updates description, tags, logo or name of the caller.
// Role and password are not updatable here.
func UpdateProfile(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "User not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Description != nil {
		user.Description = *input.Description
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Tags != nil {
		user.Tags = *input.Tags
	}
	if input.Logo != nil {
		user.Logo = *input.Logo
	}
	if input.ProfileImage != nil {
		user.ProfileImage = *input.ProfileImage
	}

	if err := config.DB.Save(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetPublicProfile returns any user's profile by id
func GetPublicProfile(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var user models.User
	if err := config.DB.Preload("Ratings").First(&user, "id = ?", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "User not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetAllProviders lists every provider account
func GetAllProviders(c *gin.Context) {
	var providers []models.User
	if err := config.DB.Where("role = ?", models.RoleProvider).Find(&providers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve providers")
		return
	}

	c.JSON(http.StatusOK, providers)
}

// FilterProvidersByTags returns providers whose tags contain any of the
// comma-separated search terms. Terms shorter than 3 characters are rejected.
func FilterProvidersByTags(c *gin.Context) {
	terms, ok := utils.ParseTagQuery(c.Query("tags"))
	if !ok {
		utils.RespondWithError(c, http.StatusBadRequest, "Each search term must be at least 3 characters")
		return
	}

	var providers []models.User
	if err := config.DB.Where("role = ?", models.RoleProvider).Find(&providers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve providers")
		return
	}

	matched := []models.User{}
	for _, p := range providers {
		if utils.MatchesAnyTag(p.Tags, terms) {
			matched = append(matched, p)
		}
	}

	c.JSON(http.StatusOK, matched)
}

// GetRandomTags returns 6 random tags across all providers. With ?tag= it
// instead returns the providers carrying that exact tag.
func GetRandomTags(c *gin.Context) {
	var providers []models.User
	if err := config.DB.Where("role = ?", models.RoleProvider).Find(&providers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve providers")
		return
	}

	if tag := c.Query("tag"); tag != "" {
		matched := []models.User{}
		for _, p := range providers {
			for _, t := range p.Tags {
				if t == tag {
					matched = append(matched, p)
					break
				}
			}
		}
		c.JSON(http.StatusOK, gin.H{"providers": matched})
		return
	}

	seen := make(map[string]bool)
	var tags []string
	for _, p := range providers {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}

	rand.Shuffle(len(tags), func(i, j int) {
		tags[i], tags[j] = tags[j], tags[i]
	})
	if len(tags) > 6 {
		tags = tags[:6]
	}
	if tags == nil {
		tags = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// RateProvider records or replaces the caller's rating of a provider and
// recomputes the provider average. One rating per client, last write wins.
func RateProvider(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	raterUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	providerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid provider ID format")
		return
	}

	var input RateProviderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !utils.ValidateRatingValue(input.Value) {
		utils.RespondWithError(c, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	var provider models.User
	if err := config.DB.First(&provider, "id = ?", providerUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Provider not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if provider.Role != models.RoleProvider {
		utils.RespondWithError(c, http.StatusBadRequest, "User is not a provider")
		return
	}

	// Upsert the rating row and rewrite the average in one transaction, so
	// the stored average never drifts from its source rows.
	var average float64
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var rating models.Rating
		err := tx.Where("provider_id = ? AND rater_id = ?", providerUUID, raterUUID).
			First(&rating).Error
		switch {
		case err == nil:
			rating.Value = input.Value
			if err := tx.Model(&rating).Updates(map[string]interface{}{
				"value":      input.Value,
				"created_at": gorm.Expr("NOW()"),
			}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			rating = models.Rating{
				ProviderID: providerUUID,
				RaterID:    raterUUID,
				Value:      input.Value,
			}
			if err := tx.Create(&rating).Error; err != nil {
				return err
			}
		default:
			return err
		}

		var ratings []models.Rating
		if err := tx.Where("provider_id = ?", providerUUID).Find(&ratings).Error; err != nil {
			return err
		}
		average = models.AverageRating(ratings)

		return tx.Model(&models.User{}).Where("id = ?", providerUUID).
			Update("rating", average).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save rating")
		return
	}

	c.JSON(http.StatusOK, gin.H{"rating": average})
}
