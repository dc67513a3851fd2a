package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	ProviderID  uuid.UUID   `gorm:"type:uuid;index;not null" json:"providerId"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"not null" json:"description"`
	Price       float64     `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string      `gorm:"not null" json:"category"`
	Images      StringArray `gorm:"type:jsonb" json:"images"`
	Available   bool        `gorm:"default:true" json:"available"`

	// Average of all Review rows, rewritten whenever a review is added.
	Rating  float64  `gorm:"default:0" json:"rating"`
	Reviews []Review `gorm:"foreignKey:ServiceID" json:"reviews,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	s.ID = uuid.New()
	return
}

// Review is a client's comment and rating on a service. Unlike provider
// ratings, the same client may review a service any number of times.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ServiceID uuid.UUID `gorm:"type:uuid;index;not null" json:"serviceId"`
	ClientID  uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`
	Comment   string    `gorm:"type:text" json:"comment"`
	Rating    float64   `gorm:"not null" json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// AverageReviewRating recomputes a service average from all of its reviews.
func AverageReviewRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var total float64
	for _, r := range reviews {
		total += r.Rating
	}
	return total / float64(len(reviews))
}
