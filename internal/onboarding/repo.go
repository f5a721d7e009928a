package onboarding

import (
	"errors"

	"github.com/storesight/console/internal/db"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("onboarding progress not found")

type Repository interface {
	Get(accountID string) (Progress, error)
	Save(p *Progress) error
}

type gormRepo struct{}

func DefaultRepository() Repository { return gormRepo{} }

func (gormRepo) Get(accountID string) (Progress, error) {
	var p Progress
	err := db.DB.First(&p, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Progress{}, ErrNotFound
	}
	return p, err
}

func (gormRepo) Save(p *Progress) error {
	return db.DB.Save(p).Error
}
