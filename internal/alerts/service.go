package alerts

import (
	"errors"
	"fmt"
	"time"

	"github.com/storesight/console/internal/utils"
)

// Service creates and transitions alerts and publishes every change.
type Service struct {
	repo Repository
	hub  *Hub
	now  func() time.Time
}

func NewService(repo Repository, hub *Hub) *Service {
	return &Service{repo: repo, hub: hub, now: time.Now}
}

// Raise opens a new alert unless an unresolved alert of the same type is
// already open for the camera; in that case the existing one is returned.
func (s *Service) Raise(a Alert) (Alert, bool, error) {
	if a.CameraID != nil {
		existing, err := s.repo.OpenFor(*a.CameraID, a.Type)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Alert{}, false, err
		}
	}
	if a.ID == "" {
		a.ID = utils.GenerateUUID()
	}
	if a.Severity == "" {
		a.Severity = SeverityWarning
	}
	if !validSeverity(a.Severity) {
		return Alert{}, false, fmt.Errorf("unknown severity %q", a.Severity)
	}
	a.Status = StatusOpen
	a.CreatedAt = s.now()
	if len(a.Channels) == 0 {
		a.Channels = []string{"console"}
	}
	if err := s.repo.Create(&a); err != nil {
		return Alert{}, false, err
	}
	s.publish("created", a)
	return a, true, nil
}

// Acknowledge marks an open alert as seen by userID.
func (s *Service) Acknowledge(accountID, id, userID string) (Alert, error) {
	a, err := s.repo.Get(accountID, id)
	if err != nil {
		return Alert{}, err
	}
	if a.Status != StatusOpen {
		return a, nil
	}
	now := s.now()
	a.Status = StatusAcknowledged
	a.AcknowledgedAt = &now
	a.AcknowledgedBy = userID
	if err := s.repo.Save(&a); err != nil {
		return Alert{}, err
	}
	s.publish("acknowledged", a)
	return a, nil
}

func (s *Service) Resolve(accountID, id string) (Alert, error) {
	a, err := s.repo.Get(accountID, id)
	if err != nil {
		return Alert{}, err
	}
	return s.resolve(a)
}

// ResolveOpen closes the open alert of alertType for a camera, if any.
func (s *Service) ResolveOpen(cameraID, alertType string) (Alert, bool, error) {
	a, err := s.repo.OpenFor(cameraID, alertType)
	if errors.Is(err, ErrNotFound) {
		return Alert{}, false, nil
	}
	if err != nil {
		return Alert{}, false, err
	}
	a, err = s.resolve(a)
	return a, err == nil, err
}

func (s *Service) resolve(a Alert) (Alert, error) {
	if a.Status == StatusResolved {
		return a, nil
	}
	now := s.now()
	a.Status = StatusResolved
	a.ResolvedAt = &now
	if err := s.repo.Save(&a); err != nil {
		return Alert{}, err
	}
	s.publish("resolved", a)
	return a, nil
}

func (s *Service) publish(kind string, a Alert) {
	if s.hub != nil {
		s.hub.Publish(a.AccountID, Event{Type: kind, Alert: a})
	}
}
