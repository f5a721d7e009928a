// Package reports serves the dashboard summary for the signed-in account.
package reports

import (
	"math"
	"time"

	"github.com/storesight/console/internal/db"
)

type Summary struct {
	Stores         int            `json:"stores"`
	Cameras        int            `json:"cameras"`
	CamerasOffline int            `json:"cameras_offline"`
	OpenAlerts     int            `json:"open_alerts"`
	BySeverity     map[string]int `json:"open_alerts_by_severity"`
	Employees      int            `json:"employees"`
	Plan           string         `json:"plan"`
	TrialDaysLeft  *int           `json:"trial_days_left,omitempty"`
}

// Counts are the per-account tallies read from the operational tables.
type Counts struct {
	Stores         int
	Cameras        int
	CamerasOffline int
	OpenBySeverity map[string]int
	Employees      int
}

type Repository interface {
	Counts(accountID string) (Counts, error)
}

type gormRepo struct{}

func DefaultRepository() Repository { return gormRepo{} }

func (gormRepo) Counts(accountID string) (Counts, error) {
	var c Counts
	var n int64

	if err := db.DB.Table("console.stores").Where("account_id = ?", accountID).Count(&n).Error; err != nil {
		return c, err
	}
	c.Stores = int(n)

	if err := db.DB.Table("console.cameras").Where("account_id = ?", accountID).Count(&n).Error; err != nil {
		return c, err
	}
	c.Cameras = int(n)

	if err := db.DB.Table("console.cameras").
		Where("account_id = ? AND status = ?", accountID, "offline").Count(&n).Error; err != nil {
		return c, err
	}
	c.CamerasOffline = int(n)

	if err := db.DB.Table("console.employees").Where("account_id = ?", accountID).Count(&n).Error; err != nil {
		return c, err
	}
	c.Employees = int(n)

	var rows []struct {
		Severity string
		Total    int
	}
	err := db.DB.Table("console.alerts").
		Select("severity, COUNT(*) AS total").
		Where("account_id = ? AND status <> ?", accountID, "resolved").
		Group("severity").
		Scan(&rows).Error
	if err != nil {
		return c, err
	}
	c.OpenBySeverity = make(map[string]int, len(rows))
	for _, r := range rows {
		c.OpenBySeverity[r.Severity] = r.Total
	}
	return c, nil
}

// trialDaysLeft rounds up, so a trial ending later today still shows one day.
// An expired trial reports zero.
func trialDaysLeft(ends *time.Time, now time.Time) *int {
	if ends == nil {
		return nil
	}
	days := 0
	if left := ends.Sub(now); left > 0 {
		days = int(math.Ceil(left.Hours() / 24))
	}
	return &days
}

func build(c Counts, plan string, trialEnds *time.Time, now time.Time) Summary {
	s := Summary{
		Stores:         c.Stores,
		Cameras:        c.Cameras,
		CamerasOffline: c.CamerasOffline,
		BySeverity:     map[string]int{"info": 0, "warning": 0, "critical": 0},
		Employees:      c.Employees,
		Plan:           plan,
		TrialDaysLeft:  trialDaysLeft(trialEnds, now),
	}
	for sev, n := range c.OpenBySeverity {
		s.BySeverity[sev] = n
		s.OpenAlerts += n
	}
	return s
}
