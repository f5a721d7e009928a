package cameras

import (
	"errors"
	"time"

	"github.com/storesight/console/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound        = errors.New("camera not found")
	ErrVersionConflict = errors.New("roi version conflict")
)

type Repository interface {
	ListByStore(accountID, storeID string) ([]Camera, error)
	Get(accountID, id string) (Camera, error)
	ByID(id string) (Camera, error)
	StoreExists(accountID, storeID string) (bool, error)
	Create(c *Camera) error
	Save(c *Camera) error
	Delete(accountID, id string) error
	SetHealth(id, status, agentVersion string, seenAt time.Time) (Camera, error)

	ROI(cameraID string) (ROIRecord, error)
	// SaveROI stores rec if the current version equals expected, and
	// assigns rec.Version = expected+1.
	SaveROI(rec *ROIRecord, expected int) error
}

type gormRepo struct{}

func DefaultRepository() Repository { return gormRepo{} }

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (gormRepo) ListByStore(accountID, storeID string) ([]Camera, error) {
	var out []Camera
	err := db.DB.Where("account_id = ? AND store_id = ?", accountID, storeID).
		Order("name ASC").Find(&out).Error
	return out, err
}

func (gormRepo) Get(accountID, id string) (Camera, error) {
	var c Camera
	err := db.DB.First(&c, "account_id = ? AND id = ?", accountID, id).Error
	return c, notFound(err)
}

func (gormRepo) ByID(id string) (Camera, error) {
	var c Camera
	err := db.DB.First(&c, "id = ?", id).Error
	return c, notFound(err)
}

func (gormRepo) StoreExists(accountID, storeID string) (bool, error) {
	var n int64
	err := db.DB.Table("console.stores").
		Where("account_id = ? AND id = ?", accountID, storeID).Count(&n).Error
	return n > 0, err
}

func (gormRepo) Create(c *Camera) error { return db.DB.Create(c).Error }

func (gormRepo) Save(c *Camera) error { return db.DB.Save(c).Error }

func (gormRepo) Delete(accountID, id string) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Camera{}, "account_id = ? AND id = ?", accountID, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Delete(&ROIRecord{}, "camera_id = ?", id).Error
	})
}

func (gormRepo) SetHealth(id, status, agentVersion string, seenAt time.Time) (Camera, error) {
	var c Camera
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		c.Status = status
		c.LastSeenAt = &seenAt
		if agentVersion != "" {
			c.AgentVersion = agentVersion
		}
		return tx.Save(&c).Error
	})
	return c, err
}

func (gormRepo) ROI(cameraID string) (ROIRecord, error) {
	var rec ROIRecord
	err := db.DB.First(&rec, "camera_id = ?", cameraID).Error
	return rec, notFound(err)
}

func (gormRepo) SaveROI(rec *ROIRecord, expected int) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var cur ROIRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&cur, "camera_id = ?", rec.CameraID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if expected != 0 {
				return ErrVersionConflict
			}
			rec.Version = 1
			return insertFirstROI(tx, rec)
		case err != nil:
			return err
		}
		if cur.Version != expected {
			return ErrVersionConflict
		}
		rec.Version = expected + 1
		return tx.Save(rec).Error
	})
}

var firstROIConflict = clause.OnConflict{Columns: []clause.Column{{Name: "camera_id"}}, DoNothing: true}

// insertFirstROI creates a camera's first ROI row. The row lock in SaveROI
// covers nothing yet, so a concurrent first save that committed earlier
// leaves this insert empty and the caller loses with a version conflict.
func insertFirstROI(tx *gorm.DB, rec *ROIRecord) error {
	res := tx.Clauses(firstROIConflict).Create(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}
