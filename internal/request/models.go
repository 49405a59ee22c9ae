package request

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Active reports whether the status still blocks a new request for the same pair.
func (s Status) Active() bool { return s == StatusPending || s == StatusAccepted }

func (s Status) Valid() bool { return s == StatusPending || s == StatusAccepted || s == StatusRejected }

type ContactRequest struct {
	ID           string `gorm:"primaryKey;size:26" json:"id"` // ULID
	UserID       uint64 `gorm:"index;not null" json:"user_id"`
	UserName     string `gorm:"type:varchar(128)" json:"user_name"`
	ProviderID   uint64 `gorm:"index;not null" json:"provider_id"`
	ProviderName string `gorm:"type:varchar(128)" json:"provider_name"`
	Message      string `gorm:"type:text" json:"message"`
	Status       Status `gorm:"type:varchar(16);index;not null" json:"status"`

	// Set while the request is active, NULL once rejected. The unique index keeps a
	// pair down to one active request even when two creators race past the pre-check.
	ActiveKey *string `gorm:"type:varchar(64);uniqueIndex" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ContactRequest) TableName() string { return "contact_requests" }

func activeKey(userID, providerID uint64) *string {
	k := fmt.Sprintf("%d:%d", userID, providerID)
	return &k
}
