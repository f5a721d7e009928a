package stores

import (
	"errors"

	"github.com/storesight/console/internal/db"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("store not found")

type Repository interface {
	List(accountID string) ([]Store, error)
	Get(accountID, id string) (Store, error)
	Count(accountID string) (int64, error)
	Create(s *Store) error
	Save(s *Store) error
	Delete(accountID, id string) error
}

type gormRepo struct{}

func DefaultRepository() Repository { return gormRepo{} }

func (gormRepo) List(accountID string) ([]Store, error) {
	var out []Store
	err := db.DB.Where("account_id = ?", accountID).Order("name ASC").Find(&out).Error
	return out, err
}

func (gormRepo) Get(accountID, id string) (Store, error) {
	var s Store
	err := db.DB.First(&s, "account_id = ? AND id = ?", accountID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s, ErrNotFound
	}
	return s, err
}

func (gormRepo) Count(accountID string) (int64, error) {
	var n int64
	err := db.DB.Model(&Store{}).Where("account_id = ?", accountID).Count(&n).Error
	return n, err
}

func (gormRepo) Create(s *Store) error { return db.DB.Create(s).Error }

func (gormRepo) Save(s *Store) error { return db.DB.Save(s).Error }

func (gormRepo) Delete(accountID, id string) error {
	res := db.DB.Delete(&Store{}, "account_id = ? AND id = ?", accountID, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
