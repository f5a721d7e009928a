package employees

import (
	"errors"

	"github.com/storesight/console/internal/db"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("employee not found")

type Repository interface {
	List(accountID, storeID string) ([]Employee, error)
	StoreExists(accountID, storeID string) (bool, error)
	// EmailKeys returns the case-folded e-mails already on file for a store.
	EmailKeys(storeID string) (map[string]bool, error)
	CreateBatch(list []Employee) error
	Delete(accountID, id string) error
}

type gormRepo struct{}

func DefaultRepository() Repository { return gormRepo{} }

func (gormRepo) List(accountID, storeID string) ([]Employee, error) {
	var out []Employee
	err := db.DB.Where("account_id = ? AND store_id = ?", accountID, storeID).
		Order("name ASC").Find(&out).Error
	return out, err
}

func (gormRepo) StoreExists(accountID, storeID string) (bool, error) {
	var n int64
	err := db.DB.Table("console.stores").
		Where("account_id = ? AND id = ?", accountID, storeID).Count(&n).Error
	return n > 0, err
}

func (gormRepo) EmailKeys(storeID string) (map[string]bool, error) {
	var keys []string
	err := db.DB.Model(&Employee{}).
		Where("store_id = ? AND email_key <> ''", storeID).
		Pluck("email_key", &keys).Error
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out, err
}

func (gormRepo) CreateBatch(list []Employee) error {
	if len(list) == 0 {
		return nil
	}
	return db.DB.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(list, 100).Error
	})
}

func (gormRepo) Delete(accountID, id string) error {
	res := db.DB.Delete(&Employee{}, "account_id = ? AND id = ?", accountID, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
