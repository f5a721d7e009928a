package roi

import (
	"errors"
	"fmt"
	"time"
)

// Status of a stored ROI configuration.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

var (
	ErrBadCanvas   = errors.New("canvas width and height must be positive")
	ErrBadStatus   = errors.New("status must be draft or published")
	ErrDuplicateID = errors.New("duplicate zone id")
	ErrMissingID   = errors.New("zone id is required")
)

// Canvas is the logical drawing surface the zones were normalized against.
type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultCanvas is the logical canvas used by the editor.
var DefaultCanvas = Canvas{Width: 960, Height: 540}

// Config is the server-owned ROI configuration of one camera.
// Version is an optimistic-concurrency token owned by the server.
type Config struct {
	CameraID  string    `json:"camera_id"`
	Version   int       `json:"version"`
	Status    Status    `json:"status"`
	Zones     []Shape   `json:"zones"`
	Canvas    Canvas    `json:"canvas"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveRequest replaces the whole zone collection of a camera.
type SaveRequest struct {
	Version int     `json:"version"`
	Zones   []Shape `json:"zones"`
	Canvas  Canvas  `json:"canvas"`
	Status  Status  `json:"status"`
}

// SaveResponse carries the version assigned by the server.
type SaveResponse struct {
	Version int    `json:"version"`
	Status  Status `json:"status"`
}

// Validate checks the request before it is persisted.
func (r SaveRequest) Validate() error {
	if r.Canvas.Width <= 0 || r.Canvas.Height <= 0 {
		return ErrBadCanvas
	}
	if r.Status != StatusDraft && r.Status != StatusPublished {
		return ErrBadStatus
	}
	seen := make(map[string]struct{}, len(r.Zones))
	for i, z := range r.Zones {
		if err := z.Validate(); err != nil {
			return fmt.Errorf("zone %d (%s): %w", i, z.Name, err)
		}
		if z.ID == "" {
			return fmt.Errorf("zone %d: %w", i, ErrMissingID)
		}
		if _, dup := seen[z.ID]; dup {
			return fmt.Errorf("zone %d: %w", i, ErrDuplicateID)
		}
		seen[z.ID] = struct{}{}
	}
	return nil
}
