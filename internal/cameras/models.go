package cameras

import (
	"time"

	"github.com/storesight/console/internal/db"
	"github.com/storesight/console/internal/roi"
)

// Health states reported by edge agents.
const (
	StatusUnknown = "unknown"
	StatusOnline  = "online"
	StatusOffline = "offline"
)

type Camera struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID    string     `gorm:"type:uuid;not null;index" json:"-"`
	StoreID      string     `gorm:"type:uuid;not null;index" json:"store_id"`
	Name         string     `gorm:"not null" json:"name"`
	StreamURL    string     `json:"stream_url"`
	Status       string     `gorm:"not null;default:'unknown'" json:"status"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
	AgentVersion string     `json:"agent_version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Camera) TableName() string { return "console.cameras" }

type Input struct {
	StoreID   string `json:"store_id"`
	Name      string `json:"name"`
	StreamURL string `json:"stream_url"`
}

type Health struct {
	CameraID     string     `json:"camera_id"`
	Status       string     `json:"status"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
	AgentVersion string     `json:"agent_version"`
}

// ROIRecord is the stored zone configuration of one camera.
type ROIRecord struct {
	CameraID     string   `gorm:"type:uuid;primaryKey"`
	Version      int      `gorm:"not null;default:0"`
	Status       string   `gorm:"not null;default:'draft'"`
	Zones        db.JSONB `gorm:"type:jsonb;not null"`
	CanvasWidth  int      `gorm:"not null"`
	CanvasHeight int      `gorm:"not null"`
	UpdatedBy    string
	UpdatedAt    time.Time
}

func (ROIRecord) TableName() string { return "console.camera_rois" }

// Config converts the record to its wire form.
func (r ROIRecord) Config() (roi.Config, error) {
	cfg := roi.Config{
		CameraID:  r.CameraID,
		Version:   r.Version,
		Status:    roi.Status(r.Status),
		Zones:     []roi.Shape{},
		Canvas:    roi.Canvas{Width: r.CanvasWidth, Height: r.CanvasHeight},
		UpdatedAt: r.UpdatedAt,
	}
	if err := r.Zones.Decode(&cfg.Zones); err != nil {
		return roi.Config{}, err
	}
	return cfg, nil
}

// emptyConfig is what a camera without saved zones reports.
func emptyConfig(cameraID string) roi.Config {
	return roi.Config{
		CameraID: cameraID,
		Status:   roi.StatusDraft,
		Zones:    []roi.Shape{},
		Canvas:   roi.DefaultCanvas,
	}
}
