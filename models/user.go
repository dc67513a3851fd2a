package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"servicehub-backend/utils"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. A user's role is fixed at registration and never changes.
const (
	RoleProvider = "provider"
	RoleClient   = "client"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"type:varchar(20);not null" json:"role"` // 'provider' or 'client'

	Description  string      `json:"description"`
	Phone        string      `json:"phone"` // optional, used for appointment reminders
	Tags         StringArray `gorm:"type:jsonb" json:"tags"`
	Logo         string      `json:"logo"`
	ProfileImage string      `json:"profileImage"`

	// Average of all Rating rows for this provider, rewritten on every rating.
	Rating  float64  `gorm:"default:0" json:"rating"`
	Ratings []Rating `gorm:"foreignKey:ProviderID" json:"ratings,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// Initialize UUID and hash password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	u.ID = uuid.New()
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}

// Rating is one client's rating of a provider. A client has at most one row
// per provider; re-rating overwrites it.
type Rating struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProviderID uuid.UUID `gorm:"type:uuid;index;not null" json:"providerId"`
	RaterID    uuid.UUID `gorm:"type:uuid;index;not null" json:"raterId"`
	Value      float64   `gorm:"not null" json:"value"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r *Rating) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// AverageRating recomputes a provider average from the full rating history.
// Returns 0 when there are no ratings.
func AverageRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var total float64
	for _, r := range ratings {
		total += r.Value
	}
	return total / float64(len(ratings))
}

// StringArray stores a list of strings as a JSON column
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *StringArray) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, a)
}
