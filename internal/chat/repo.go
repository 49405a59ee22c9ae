package chat

import (
	"context"

	"gorm.io/gorm"
)

// DBStore keeps one row per message. Row ids give the server-side order.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Append(ctx context.Context, t Thread, m Message) error {
	return s.db.WithContext(ctx).Create(&Record{
		RequestID: t.RequestID,
		Sender:    m.Sender,
		Text:      m.Text,
		SentAt:    m.Time,
	}).Error
}

func (s *DBStore) Read(ctx context.Context, t Thread) ([]Message, error) {
	var rows []Record
	if err := s.db.WithContext(ctx).
		Where("request_id = ?", t.RequestID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Message())
	}
	return out, nil
}
