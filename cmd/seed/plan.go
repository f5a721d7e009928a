package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/storesight/console/internal/alerts"
	"github.com/storesight/console/internal/auth"
	"github.com/storesight/console/internal/cameras"
	"github.com/storesight/console/internal/db"
	"github.com/storesight/console/internal/employees"
	"github.com/storesight/console/internal/roi"
	"github.com/storesight/console/internal/stores"
	"github.com/storesight/console/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type Options struct {
	Email           string
	Password        string
	AccountName     string
	Plan            string
	Stores          int
	CamerasPerStore int
	EmployeesPer    int
	OfflineRatio    float64
}

// Plan is everything one seed run writes, built before any SQL runs so a dry
// run can print it.
type Plan struct {
	Account   auth.Account
	Owner     auth.User
	Stores    []stores.Store
	Cameras   []cameras.Camera
	ROIs      []cameras.ROIRecord
	Employees []employees.Employee
	Alerts    []alerts.Alert
}

var (
	storeNames = []string{"Downtown", "Riverside", "Airport", "Old Town", "Harbor", "University", "Mall", "Station"}
	timezones  = []string{"America/New_York", "America/Chicago", "America/Denver", "America/Los_Angeles"}
	camNames   = []string{"Entrance", "Checkout", "Stockroom", "Aisle 1", "Aisle 2", "Loading dock", "Back office"}
	firstNames = []string{"Ava", "Ben", "Chloe", "Dev", "Elena", "Felix", "Grace", "Hugo", "Iris", "Jamal", "Kai", "Lena"}
	lastNames  = []string{"Garcia", "Nguyen", "Okafor", "Patel", "Rossi", "Schmidt", "Tanaka", "Walsh"}
	roles      = []string{"manager", "supervisor", "cashier", "cashier", "associate", "associate", "security"}
)

func buildPlan(o Options, rng *rand.Rand, now time.Time) (*Plan, error) {
	if o.Stores < 1 || o.CamerasPerStore < 0 || o.EmployeesPer < 0 {
		return nil, fmt.Errorf("stores must be >= 1 and counts non-negative")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	trial := now.Add(auth.TrialLength)
	p := &Plan{
		Account: auth.Account{
			ID:          utils.GenerateUUID(),
			Name:        o.AccountName,
			Plan:        o.Plan,
			TrialEndsAt: &trial,
			CreatedAt:   now,
		},
	}
	p.Owner = auth.User{
		UserID:         utils.GenerateUUID(),
		AccountID:      p.Account.ID,
		Email:          strings.ToLower(o.Email),
		Name:           "Demo Owner",
		HashedPassword: string(hash),
		Role:           auth.RoleOwner,
		CreatedAt:      now,
	}

	for i := 0; i < o.Stores; i++ {
		s := stores.Store{
			ID:        utils.GenerateUUID(),
			AccountID: p.Account.ID,
			Name:      storeNames[i%len(storeNames)],
			Address:   fmt.Sprintf("%d Main St", 100+rng.Intn(900)),
			Timezone:  timezones[rng.Intn(len(timezones))],
			Tags:      []string{"demo"},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if i >= len(storeNames) {
			s.Name = fmt.Sprintf("%s %d", s.Name, i/len(storeNames)+1)
		}
		p.Stores = append(p.Stores, s)

		for j := 0; j < o.CamerasPerStore; j++ {
			if err := p.addCamera(s, camNames[j%len(camNames)], o.OfflineRatio, rng, now); err != nil {
				return nil, err
			}
		}
		for j := 0; j < o.EmployeesPer; j++ {
			p.addEmployee(s, rng, now)
		}
	}
	return p, nil
}

func (p *Plan) addCamera(s stores.Store, name string, offlineRatio float64, rng *rand.Rand, now time.Time) error {
	seen := now.Add(-time.Duration(rng.Intn(300)) * time.Second)
	c := cameras.Camera{
		ID:           utils.GenerateUUID(),
		AccountID:    s.AccountID,
		StoreID:      s.ID,
		Name:         name,
		StreamURL:    fmt.Sprintf("rtsp://edge.local/%s/%d", strings.ToLower(strings.ReplaceAll(s.Name, " ", "-")), len(p.Cameras)+1),
		Status:       cameras.StatusOnline,
		LastSeenAt:   &seen,
		AgentVersion: "2.3.0",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if rng.Float64() < offlineRatio {
		c.Status = cameras.StatusOffline
		camID := c.ID
		p.Alerts = append(p.Alerts, alerts.Alert{
			ID:        utils.GenerateUUID(),
			AccountID: s.AccountID,
			StoreID:   s.ID,
			CameraID:  &camID,
			Type:      alerts.TypeCameraOffline,
			Severity:  alerts.SeverityCritical,
			Status:    alerts.StatusOpen,
			Message:   fmt.Sprintf("Camera %q is offline", c.Name),
			Channels:  []string{"console"},
			CreatedAt: seen,
		})
	}
	p.Cameras = append(p.Cameras, c)

	zones := demoZones(name, rng)
	req := roi.SaveRequest{Version: 0, Zones: zones, Canvas: roi.DefaultCanvas, Status: roi.StatusPublished}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("zones for %s: %w", name, err)
	}
	raw, err := db.MarshalJSONB(zones)
	if err != nil {
		return err
	}
	p.ROIs = append(p.ROIs, cameras.ROIRecord{
		CameraID:     c.ID,
		Version:      1,
		Status:       string(roi.StatusPublished),
		Zones:        raw,
		CanvasWidth:  roi.DefaultCanvas.Width,
		CanvasHeight: roi.DefaultCanvas.Height,
		UpdatedBy:    "seed",
		UpdatedAt:    now,
	})
	return nil
}

// demoZones gives every camera one rectangle and, half the time, a polygon.
func demoZones(camera string, rng *rand.Rand) []roi.Shape {
	x := 0.1 + rng.Float64()*0.3
	y := 0.1 + rng.Float64()*0.3
	zones := []roi.Shape{
		roi.NewShape(camera+" floor", roi.KindRect, []roi.Point{{X: x, Y: y}, {X: x + 0.4, Y: y + 0.4}}),
	}
	if rng.Intn(2) == 0 {
		zones = append(zones, roi.NewShape(camera+" queue", roi.KindPolygon, []roi.Point{
			{X: 0.6, Y: 0.55}, {X: 0.9, Y: 0.6}, {X: 0.85, Y: 0.9}, {X: 0.55, Y: 0.85},
		}))
	}
	return zones
}

func (p *Plan) addEmployee(s stores.Store, rng *rand.Rand, now time.Time) {
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]
	email := fmt.Sprintf("%s.%s.%d@demo.storesight.example", strings.ToLower(first), strings.ToLower(last), len(p.Employees)+1)
	p.Employees = append(p.Employees, employees.Employee{
		ID:        utils.GenerateUUID(),
		AccountID: s.AccountID,
		StoreID:   s.ID,
		Name:      first + " " + last,
		Email:     email,
		EmailKey:  email,
		Role:      roles[rng.Intn(len(roles))],
		CreatedAt: now,
	})
}

func printPlan(p *Plan) {
	fmt.Printf("Account %q (%s plan), owner %s\n", p.Account.Name, p.Account.Plan, p.Owner.Email)
	for _, s := range p.Stores {
		cams, offline, emps := 0, 0, 0
		for _, c := range p.Cameras {
			if c.StoreID == s.ID {
				cams++
				if c.Status == cameras.StatusOffline {
					offline++
				}
			}
		}
		for _, e := range p.Employees {
			if e.StoreID == s.ID {
				emps++
			}
		}
		fmt.Printf("  %-14s %-20s cameras=%d offline=%d employees=%d\n", s.Name, s.Timezone, cams, offline, emps)
	}
	fmt.Printf("Totals: stores=%d cameras=%d rois=%d employees=%d alerts=%d\n",
		len(p.Stores), len(p.Cameras), len(p.ROIs), len(p.Employees), len(p.Alerts))
}
