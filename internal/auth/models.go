package auth

import "time"

// Plans. The billing module owns the catalogue; accounts only carry the code.
const (
	PlanStarter    = "starter"
	PlanGrowth     = "growth"
	PlanEnterprise = "enterprise"
)

// Roles a console user can hold within an account.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Account struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Plan        string     `gorm:"not null;default:'starter'" json:"plan"`
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type User struct {
	UserID         string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	AccountID      string    `gorm:"type:uuid;not null;index" json:"account_id"`
	Email          string    `gorm:"not null;uniqueIndex" json:"email"`
	Name           string    `json:"name"`
	Password       string    `json:"password,omitempty" gorm:"-"`
	HashedPassword string    `json:"-"`
	Role           string    `gorm:"not null;default:'member'" json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

type Session struct {
	Token     string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (Account) TableName() string { return "console_auth.accounts" }
func (User) TableName() string    { return "console_auth.users" }
func (Session) TableName() string { return "console_auth.sessions" }

// Profile is the user view returned by login, refresh and /auth/me.
type Profile struct {
	UserID      string     `json:"user_id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	AccountID   string     `json:"account_id"`
	Plan        string     `json:"plan"`
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`
}

func NewProfile(u User, a Account) Profile {
	return Profile{
		UserID:      u.UserID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		AccountID:   u.AccountID,
		Plan:        a.Plan,
		TrialEndsAt: a.TrialEndsAt,
	}
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Profile   `json:"user"`
}
