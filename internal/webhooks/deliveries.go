package webhooks

import (
	"time"

	"github.com/storesight/console/internal/db"
	"gorm.io/gorm/clause"
)

type DeliveryLog interface {
	// Record stores the delivery and reports whether it was new.
	Record(id string, raw []byte, at time.Time) (bool, error)
	// Forget drops a recorded delivery that could not be applied.
	Forget(id string) error
}

type gormDeliveries struct{}

func DefaultDeliveryLog() DeliveryLog { return gormDeliveries{} }

func (gormDeliveries) Record(id string, raw []byte, at time.Time) (bool, error) {
	res := db.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Delivery{DeliveryID: id, Payload: db.JSONB(raw), ReceivedAt: at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (gormDeliveries) Forget(id string) error {
	return db.DB.Delete(&Delivery{}, "delivery_id = ?", id).Error
}
