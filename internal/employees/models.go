package employees

import "time"

type Employee struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID string    `gorm:"type:uuid;not null;index" json:"-"`
	StoreID   string    `gorm:"type:uuid;not null;index" json:"store_id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `json:"email"`
	EmailKey  string    `gorm:"index" json:"-"`
	Role      string    `gorm:"not null;default:'other'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (Employee) TableName() string { return "console.employees" }

type BulkResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
