package chat

import "time"

type Sender string

const (
	SenderCustomer Sender = "customer"
	SenderProvider Sender = "provider"
)

// Message is one line of a request conversation. Messages are never edited.
type Message struct {
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
}

// Record is the row layout used by DBStore.
type Record struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID string    `gorm:"type:varchar(26);index;not null" json:"request_id"`
	Sender    Sender    `gorm:"type:varchar(16);not null" json:"sender"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	SentAt    time.Time `gorm:"not null" json:"sent_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (Record) TableName() string { return "chat_messages" }

func (r Record) Message() Message {
	return Message{Sender: r.Sender, Text: r.Text, Time: r.SentAt}
}
