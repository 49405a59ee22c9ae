package provider

import (
	"time"

	"github.com/suPer8Hu/talent-market/internal/geo"
	"gorm.io/datatypes"
)

// Cities a provider can list under.
var Cities = []string{"Lahore", "Islamabad", "Karachi", "Hyderabad", "Sialkot"}

type Location struct {
	City      string   `gorm:"type:varchar(64);index" json:"city"`
	Area      string   `gorm:"type:varchar(128)" json:"area"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Coordinate returns nil unless both halves of the pair are set.
func (l Location) Coordinate() *geo.Coordinate {
	if l.Latitude == nil || l.Longitude == nil {
		return nil
	}
	return &geo.Coordinate{Latitude: *l.Latitude, Longitude: *l.Longitude}
}

type ContactInfo struct {
	Phone    string `gorm:"type:varchar(32)" json:"phone"`
	Email    string `gorm:"type:varchar(255)" json:"email"`
	WhatsApp string `gorm:"type:varchar(32)" json:"whatsapp"`
}

// Provider is keyed by the owning user's id.
type Provider struct {
	UserID       uint64                      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name         string                      `gorm:"type:varchar(128);not null" json:"name"`
	Bio          string                      `gorm:"type:text" json:"bio"`
	Skills       datatypes.JSONSlice[string] `json:"skills"`
	Location     Location                    `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Pricing      string                      `gorm:"type:varchar(128)" json:"pricing"`
	Availability string                      `gorm:"type:varchar(255)" json:"availability"`
	Contact      ContactInfo                 `gorm:"embedded;embeddedPrefix:contact_" json:"contact_info"`
	ImageURL     *string                     `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	Rating       *float64                    `gorm:"index" json:"rating,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func (Provider) TableName() string { return "providers" }

// HasSkill reports exact membership in the skill set.
func (p *Provider) HasSkill(skill string) bool {
	for _, s := range p.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// Redacted returns a copy with the contact channels cleared.
func (p Provider) Redacted() Provider {
	p.Contact = ContactInfo{}
	return p
}

type ServiceCard struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ProviderID  uint64    `gorm:"index;not null" json:"provider_id"`
	Title       string    `gorm:"type:varchar(128);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    *string   `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ServiceCard) TableName() string { return "provider_cards" }

type Review struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ProviderID uint64    `gorm:"index;not null" json:"provider_id"`
	AuthorID   uint64    `gorm:"not null" json:"author_id"`
	AuthorName string    `gorm:"type:varchar(128)" json:"author_name"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Review) TableName() string { return "provider_reviews" }

// ProfileView is a write-only audit row.
type ProfileView struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ProviderID uint64    `gorm:"index;not null" json:"provider_id"`
	ViewerID   uint64    `gorm:"not null" json:"viewer_id"`
	ViewedAt   time.Time `gorm:"not null" json:"viewed_at"`
}

func (ProfileView) TableName() string { return "profile_views" }
