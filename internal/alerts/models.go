package alerts

import (
	"time"

	"github.com/lib/pq"
)

const (
	StatusOpen         = "open"
	StatusAcknowledged = "acknowledged"
	StatusResolved     = "resolved"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// TypeCameraOffline is raised when an edge agent reports a camera down.
const TypeCameraOffline = "camera_offline"

type Alert struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID      string         `gorm:"type:uuid;not null;index:idx_alert_account_status" json:"-"`
	StoreID        string         `gorm:"type:uuid;not null;index" json:"store_id"`
	CameraID       *string        `gorm:"type:uuid;index" json:"camera_id,omitempty"`
	Type           string         `gorm:"not null" json:"type"`
	Severity       string         `gorm:"not null;default:'warning'" json:"severity"`
	Status         string         `gorm:"not null;default:'open';index:idx_alert_account_status" json:"status"`
	Message        string         `json:"message"`
	Channels       pq.StringArray `gorm:"type:text[]" json:"channels"`
	AcknowledgedBy string         `json:"acknowledged_by,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`
}

func (Alert) TableName() string { return "console.alerts" }

type Filter struct {
	StoreID  string
	Status   string
	Severity string
	Limit    int
}

// Event is one message on the live stream.
type Event struct {
	Type  string `json:"type"` // created, acknowledged, resolved
	Alert Alert  `json:"alert"`
}

func validSeverity(s string) bool {
	return s == SeverityInfo || s == SeverityWarning || s == SeverityCritical
}

func validStatus(s string) bool {
	return s == StatusOpen || s == StatusAcknowledged || s == StatusResolved
}
