// controllers/appointment.go
package controllers

import (
	"errors"
	"net/http"
	"servicehub-backend/config"
	"servicehub-backend/models"
	"servicehub-backend/utils"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateAppointmentInput defines the expected JSON structure for booking
type CreateAppointmentInput struct {
	ServiceID uuid.UUID  `json:"serviceId" binding:"required"`
	Date      *time.Time `json:"date" binding:"required"`
	Notes     string     `json:"notes"`
}

// UpdateAppointmentInput defines the expected JSON structure for editing a booking
type UpdateAppointmentInput struct {
	Date   *time.Time `json:"date"`
	Notes  *string    `json:"notes"`
	Status *string    `json:"status"`
}

// canActOnAppointment is the single capability check for appointment
// mutations: the booking client may act, and so may the provider owning the
// appointment's service (resolved through the service, since the provider is
// not stored on the appointment itself).
func canActOnAppointment(requester uuid.UUID, appointment *models.Appointment) (bool, error) {
	if appointment.ClientID == requester {
		return true, nil
	}

	var service models.Service
	err := config.DB.First(&service, "id = ?", appointment.ServiceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return service.ProviderID == requester, nil
}

// appointmentResponse denormalizes one appointment for listings. Dangling
// service, provider or client references resolve to placeholder records so a
// single broken reference never fails the whole listing.
func appointmentResponse(a models.Appointment) gin.H {
	service := gin.H{"title": "Service unavailable"}
	provider := gin.H{"name": "Provider unavailable"}
	client := gin.H{"name": "Client unavailable"}

	var svc models.Service
	if err := config.DB.First(&svc, "id = ?", a.ServiceID).Error; err == nil {
		service = gin.H{
			"id":    svc.ID,
			"title": svc.Title,
			"price": svc.Price,
		}
		var owner models.User
		if err := config.DB.First(&owner, "id = ?", svc.ProviderID).Error; err == nil {
			provider = gin.H{"id": owner.ID, "name": owner.Name}
		}
	}

	var cl models.User
	if err := config.DB.First(&cl, "id = ?", a.ClientID).Error; err == nil {
		client = gin.H{"id": cl.ID, "name": cl.Name, "email": cl.Email}
	}

	return gin.H{
		"id":        a.ID,
		"date":      a.Date,
		"status":    a.Status,
		"notes":     a.Notes,
		"createdAt": a.CreatedAt,
		"service":   service,
		"provider":  provider,
		"client":    client,
	}
}

// listAppointmentsByStatus returns the requester's appointments with the
// given status, as client or as provider of the booked service.
func listAppointmentsByStatus(c *gin.Context, status string) {
	requesterUUID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	// Resolve the set of service ids owned by the requester first, then pull
	// appointments visible from either side of the relation.
	var serviceIDs []uuid.UUID
	if err := config.DB.Model(&models.Service{}).Where("provider_id = ?", requesterUUID).
		Pluck("id", &serviceIDs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	query := config.DB.Where("status = ?", status)
	if len(serviceIDs) > 0 {
		query = query.Where(
			config.DB.Where("client_id = ?", requesterUUID).Or("service_id IN ?", serviceIDs),
		)
	} else {
		query = query.Where("client_id = ?", requesterUUID)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	response := make([]gin.H, 0, len(appointments))
	for _, a := range appointments {
		response = append(response, appointmentResponse(a))
	}

	c.JSON(http.StatusOK, response)
}

// CreateAppointment books a service for the authenticated client. The
// appointment starts out pending until the provider confirms it.
func CreateAppointment(c *gin.Context) {
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

	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// The service must exist at booking time; there is deliberately no
	// capacity or double-booking check, and past dates are accepted.
	var service models.Service
	if err := config.DB.First(&service, "id = ?", input.ServiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	appointment := models.Appointment{
		ServiceID: input.ServiceID,
		ClientID:  clientUUID,
		Date:      *input.Date,
		Status:    models.StatusPending,
		Notes:     input.Notes,
	}

	if err := config.DB.Create(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

// GetPendingAppointments lists pending appointments visible to the caller
func GetPendingAppointments(c *gin.Context) {
	listAppointmentsByStatus(c, models.StatusPending)
}

// GetConfirmedAppointments lists confirmed appointments visible to the caller
func GetConfirmedAppointments(c *gin.Context) {
	listAppointmentsByStatus(c, models.StatusConfirmed)
}

// GetClientAppointments lists every appointment booked by the caller,
// earliest first
func GetClientAppointments(c *gin.Context) {
	clientUUID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var appointments []models.Appointment
	if err := config.DB.Where("client_id = ?", clientUUID).
		Order("date ASC").Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	if len(appointments) == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "No appointments found")
		return
	}

	response := make([]gin.H, 0, len(appointments))
	for _, a := range appointments {
		response = append(response, appointmentResponse(a))
	}

	c.JSON(http.StatusOK, response)
}

// ConfirmAppointment moves a pending appointment to confirmed. Only the
// provider owning the booked service may confirm; re-confirming is a no-op
// rewrite of the same status.
func ConfirmAppointment(c *gin.Context) {
	requesterUUID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	appointmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var appointment models.Appointment
	if err := config.DB.First(&appointment, "id = ?", appointmentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var service models.Service
	if err := config.DB.First(&service, "id = ?", appointment.ServiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if service.ProviderID != requesterUUID {
		utils.RespondWithError(c, http.StatusForbidden, "Only the service provider can confirm this appointment")
		return
	}

	appointment.Status = models.StatusConfirmed
	if err := config.DB.Save(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to confirm appointment")
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// UpdateAppointment edits a booking's date, notes or status. Allowed only for
// the booking client or the provider owning the service.
func UpdateAppointment(c *gin.Context) {
	requesterUUID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	appointmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var input UpdateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Status != nil && !models.ValidStatus(*input.Status) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid status")
		return
	}

	var appointment models.Appointment
	if err := config.DB.First(&appointment, "id = ?", appointmentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	allowed, err := canActOnAppointment(requesterUUID, &appointment)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if !allowed {
		utils.RespondWithError(c, http.StatusForbidden, "Not allowed to modify this appointment")
		return
	}

	if input.Date != nil {
		appointment.Date = *input.Date
	}
	if input.Notes != nil {
		appointment.Notes = *input.Notes
	}
	if input.Status != nil {
		appointment.Status = *input.Status
	}

	if err := config.DB.Save(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// DeleteAppointment removes a booking. Allowed only for the booking client or
// the provider owning the service.
func DeleteAppointment(c *gin.Context) {
	requesterUUID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	appointmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var appointment models.Appointment
	if err := config.DB.First(&appointment, "id = ?", appointmentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	allowed, err := canActOnAppointment(requesterUUID, &appointment)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if !allowed {
		utils.RespondWithError(c, http.StatusForbidden, "Not allowed to delete this appointment")
		return
	}

	if err := config.DB.Delete(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete appointment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}
