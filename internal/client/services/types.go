package services

import "time"

// User is the profile returned by login and /auth/me.
type User struct {
	UserID      string     `json:"user_id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	AccountID   string     `json:"account_id"`
	Plan        string     `json:"plan"`
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`
}

// LoginResponse is returned by /auth/login and /auth/refresh.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Timezone  string    `json:"timezone"`
	Tags      []string  `json:"tags"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoreInput is the create/update payload for a store.
type StoreInput struct {
	Name     string   `json:"name,omitempty"`
	Address  string   `json:"address,omitempty"`
	Timezone string   `json:"timezone,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type Camera struct {
	ID           string     `json:"id"`
	StoreID      string     `json:"store_id"`
	Name         string     `json:"name"`
	StreamURL    string     `json:"stream_url"`
	Status       string     `json:"status"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
	AgentVersion string     `json:"agent_version"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CameraInput is the create/update payload for a camera.
type CameraInput struct {
	StoreID   string `json:"store_id,omitempty"`
	Name      string `json:"name,omitempty"`
	StreamURL string `json:"stream_url,omitempty"`
}

// CameraHealth is the last status reported by the camera's edge agent.
type CameraHealth struct {
	CameraID     string     `json:"camera_id"`
	Status       string     `json:"status"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
	AgentVersion string     `json:"agent_version"`
}

type Alert struct {
	ID             string     `json:"id"`
	StoreID        string     `json:"store_id"`
	CameraID       *string    `json:"camera_id,omitempty"`
	Type           string     `json:"type"`
	Severity       string     `json:"severity"`
	Status         string     `json:"status"`
	Message        string     `json:"message"`
	Channels       []string   `json:"channels"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// AlertFilter narrows an alert listing. Empty fields are ignored.
type AlertFilter struct {
	StoreID  string
	Status   string
	Severity string
}

type Employee struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// BulkResult reports what the server did with a bulk employee import.
type BulkResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type OnboardingState struct {
	CurrentStep    string         `json:"current_step"`
	CompletedSteps []string       `json:"completed_steps"`
	Answers        map[string]any `json:"answers"`
	Completed      bool           `json:"completed"`
}

// Report is the account summary shown on the dashboard.
type Report struct {
	Stores         int            `json:"stores"`
	Cameras        int            `json:"cameras"`
	CamerasOffline int            `json:"cameras_offline"`
	OpenAlerts     int            `json:"open_alerts"`
	BySeverity     map[string]int `json:"open_alerts_by_severity"`
	Employees      int            `json:"employees"`
	Plan           string         `json:"plan"`
	TrialDaysLeft  *int           `json:"trial_days_left,omitempty"`
}

type DemoRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Stores    int    `json:"stores"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// JourneyEvent is one product-analytics event emitted by the console.
type JourneyEvent struct {
	Name       string         `json:"name"`
	SessionID  string         `json:"session_id"`
	Properties map[string]any `json:"properties,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Plan struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	MaxStores int    `json:"max_stores"`
	PriceUSD  int    `json:"price_usd"`
}
