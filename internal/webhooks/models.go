package webhooks

import (
	"time"

	"github.com/storesight/console/internal/db"
)

// Delivery records each processed edge report so retries are ignored.
type Delivery struct {
	DeliveryID string    `gorm:"primaryKey"`
	Payload    db.JSONB  `gorm:"type:jsonb;not null"`
	ReceivedAt time.Time `gorm:"not null"`
}

func (Delivery) TableName() string { return "console.edge_deliveries" }

// HealthReport is what an edge agent posts on every heartbeat.
type HealthReport struct {
	AgentVersion string         `json:"agent_version"`
	ReportedAt   time.Time      `json:"reported_at"`
	Cameras      []CameraReport `json:"cameras"`
}

type CameraReport struct {
	CameraID string `json:"camera_id"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
}

type Result struct {
	Updated        int  `json:"updated"`
	Skipped        int  `json:"skipped"`
	AlertsOpened   int  `json:"alerts_opened"`
	AlertsResolved int  `json:"alerts_resolved"`
	Duplicate      bool `json:"duplicate,omitempty"`
}
