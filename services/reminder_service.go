// services/reminder_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"servicehub-backend/models"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// ReminderService sends clients a message the day before each of their
// confirmed appointments.
type ReminderService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewReminderService(db *gorm.DB) *ReminderService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &ReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", s.SendUpcomingReminders)

	c.Start()
	log.Println("Appointment reminder scheduler started")
}

// SendUpcomingReminders notifies clients of confirmed appointments starting
// within the next 24 hours. One attempt per appointment per day; failures are
// logged, never retried.
func (s *ReminderService) SendUpcomingReminders() {
	log.Println("Starting appointment reminder processing...")

	now := time.Now()
	until := now.Add(24 * time.Hour)

	var appointments []models.Appointment
	if err := s.db.Where("status = ? AND date BETWEEN ? AND ?",
		models.StatusConfirmed, now, until).Find(&appointments).Error; err != nil {
		log.Printf("Failed to fetch upcoming appointments: %v", err)
		return
	}

	for _, appointment := range appointments {
		s.sendReminder(appointment)
	}

	log.Println("Appointment reminder processing completed")
}

func (s *ReminderService) sendReminder(appointment models.Appointment) {
	var client models.User
	if err := s.db.First(&client, "id = ?", appointment.ClientID).Error; err != nil {
		log.Printf("Appointment %s: client not found: %v", appointment.ID, err)
		return
	}

	serviceTitle := "your booked service"
	var service models.Service
	if err := s.db.First(&service, "id = ?", appointment.ServiceID).Error; err == nil {
		serviceTitle = service.Title
	}

	if client.Phone == "" {
		log.Printf("Appointment %s: client has no phone number, skipping", appointment.ID)
		return
	}

	message := fmt.Sprintf("Hi %s, reminder: your appointment for %s is on %s.",
		client.Name, serviceTitle, appointment.Date.Format("Mon Jan 2 at 15:04"))

	channel := "sms"
	to := client.Phone
	if strings.HasPrefix(client.Phone, "+") && os.Getenv("TWILIO_WHATSAPP_NUMBER") != "" {
		to = "whatsapp:" + client.Phone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := s.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if err != nil {
		log.Printf("Failed to send reminder for appointment %s: %v", appointment.ID, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		log.Printf("Reminder sent for appointment %s, SID: %s", appointment.ID, *resp.Sid)
	} else {
		log.Printf("Reminder sent for appointment %s, but no SID returned", appointment.ID)
	}

	reminderLog := models.ReminderLog{
		AppointmentID: appointment.ID,
		ClientID:      client.ID,
		Message:       message,
		Status:        status,
		ErrorMessage:  errorMsg,
		Channel:       channel,
		SentAt:        time.Now(),
	}

	if err := s.db.Create(&reminderLog).Error; err != nil {
		log.Printf("Failed to log reminder for appointment %s: %v", appointment.ID, err)
	}
}
