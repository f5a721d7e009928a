package journey

import (
	"time"

	"github.com/storesight/console/internal/db"
)

type Event struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID  *string   `gorm:"type:uuid;index" json:"account_id,omitempty"`
	UserID     *string   `gorm:"type:uuid" json:"user_id,omitempty"`
	SessionID  string    `gorm:"not null;index" json:"session_id"`
	Name       string    `gorm:"not null;index" json:"name"`
	Properties db.JSONB  `gorm:"type:jsonb" json:"properties"`
	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
	ReceivedAt time.Time `gorm:"not null" json:"received_at"`
}

func (Event) TableName() string { return "console.journey_events" }

type incoming struct {
	Name       string         `json:"name"`
	SessionID  string         `json:"session_id"`
	Properties map[string]any `json:"properties"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type trackRequest struct {
	Events []incoming `json:"events"`
}
