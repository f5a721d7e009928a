package journey

import "github.com/storesight/console/internal/db"

type Repository interface {
	CreateBatch(events []Event) error
}

type gormRepo struct{}

func DefaultRepository() Repository { return gormRepo{} }

func (gormRepo) CreateBatch(events []Event) error {
	return db.DB.CreateInBatches(events, 100).Error
}
