package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/storesight/console/internal/db"
	"github.com/storesight/console/internal/utils"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// Store is the persistence the auth handlers need.
type Store interface {
	UserByEmail(email string) (User, error)
	UserByID(id string) (User, error)
	Account(id string) (Account, error)
	CreateAccount(a *Account, owner *User) error
	SetPassword(userID, hashed string) error
	CreateSession(s *Session) error
	Session(token string) (Session, error)
	DeleteSession(token string) error
}

type gormStore struct{}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (gormStore) UserByEmail(email string) (User, error) {
	var u User
	err := db.DB.First(&u, "lower(email) = ?", strings.ToLower(email)).Error
	return u, notFound(err)
}

func (gormStore) UserByID(id string) (User, error) {
	var u User
	err := db.DB.First(&u, "user_id = ?", id).Error
	return u, notFound(err)
}

func (gormStore) Account(id string) (Account, error) {
	var a Account
	err := db.DB.First(&a, "id = ?", id).Error
	return a, notFound(err)
}

func (gormStore) CreateAccount(a *Account, owner *User) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		owner.AccountID = a.ID
		return tx.Create(owner).Error
	})
}

func (gormStore) SetPassword(userID, hashed string) error {
	return db.DB.Model(&User{}).Where("user_id = ?", userID).Update("hashed_password", hashed).Error
}

func (gormStore) CreateSession(s *Session) error {
	return db.DB.Create(s).Error
}

func (gormStore) Session(token string) (Session, error) {
	var s Session
	err := db.DB.First(&s, "token = ?", token).Error
	return s, notFound(err)
}

func (gormStore) DeleteSession(token string) error {
	return db.DB.Delete(&Session{}, "token = ?", token).Error
}

// SessionInfo resolves bearer tokens for middleware.SessionMiddleware.
type SessionInfo struct {
	store Store
}

// Fetcher returns the database-backed session resolver.
func Fetcher() SessionInfo {
	return SessionInfo{store: gormStore{}}
}

func (si SessionInfo) FindSessionByToken(token string) (utils.SessionData, error) {
	s, err := si.store.Session(token)
	if err != nil {
		return utils.SessionData{}, err
	}
	u, err := si.store.UserByID(s.UserID)
	if err != nil {
		return utils.SessionData{}, err
	}
	return utils.SessionData{
		UserID:    u.UserID,
		AccountID: u.AccountID,
		Role:      u.Role,
		ExpiresAt: s.ExpiresAt,
	}, nil
}

// AccountPlans exposes account plan codes to other modules.
type AccountPlans struct {
	store Store
}

func NewAccountPlans(store Store) AccountPlans {
	return AccountPlans{store: store}
}

func (p AccountPlans) PlanFor(accountID string) (string, error) {
	a, err := p.store.Account(accountID)
	if err != nil {
		return "", err
	}
	return a.Plan, nil
}

// TrialEndsAt is nil for accounts that never had a trial.
func (p AccountPlans) TrialEndsAt(accountID string) (*time.Time, error) {
	a, err := p.store.Account(accountID)
	if err != nil {
		return nil, err
	}
	return a.TrialEndsAt, nil
}
