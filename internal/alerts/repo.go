package alerts

import (
	"errors"

	"github.com/storesight/console/internal/db"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("alert not found")

type Repository interface {
	List(accountID string, f Filter) ([]Alert, error)
	Get(accountID, id string) (Alert, error)
	// OpenFor finds an unresolved alert of the given type for a camera.
	OpenFor(cameraID, alertType string) (Alert, error)
	Create(a *Alert) error
	Save(a *Alert) error
}

type gormRepo struct{}

func DefaultRepository() Repository { return gormRepo{} }

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (gormRepo) List(accountID string, f Filter) ([]Alert, error) {
	q := db.DB.Where("account_id = ?", accountID)
	if f.StoreID != "" {
		q = q.Where("store_id = ?", f.StoreID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Severity != "" {
		q = q.Where("severity = ?", f.Severity)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []Alert
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (gormRepo) Get(accountID, id string) (Alert, error) {
	var a Alert
	err := db.DB.First(&a, "account_id = ? AND id = ?", accountID, id).Error
	return a, notFound(err)
}

func (gormRepo) OpenFor(cameraID, alertType string) (Alert, error) {
	var a Alert
	err := db.DB.Where("camera_id = ? AND type = ? AND status <> ?", cameraID, alertType, StatusResolved).
		Order("created_at DESC").First(&a).Error
	return a, notFound(err)
}

func (gormRepo) Create(a *Alert) error { return db.DB.Create(a).Error }

func (gormRepo) Save(a *Alert) error { return db.DB.Save(a).Error }
