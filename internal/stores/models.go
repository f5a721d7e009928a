package stores

import (
	"time"

	"github.com/lib/pq"
)

type Store struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	AccountID string         `gorm:"type:uuid;not null;index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	Address   string         `json:"address"`
	Timezone  string         `gorm:"not null;default:'UTC'" json:"timezone"`
	Tags      pq.StringArray `gorm:"type:text[]" json:"tags"`
	Lat       *float64       `json:"lat,omitempty"`
	Lng       *float64       `json:"lng,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Store) TableName() string {
	return "console.stores"
}

// Input is the create/update payload. Empty fields are left unchanged on update.
type Input struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Timezone string   `json:"timezone"`
	Tags     []string `json:"tags"`
}
