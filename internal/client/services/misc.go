package services

import "context"

type Me struct{ api API }

func (m *Me) Profile(ctx context.Context) (User, error) {
	var out User
	err := m.api.Get(ctx, "/auth/me", &out)
	return out, err
}

func (m *Me) Report(ctx context.Context) (Report, error) {
	var out Report
	err := m.api.Get(ctx, "/me/report", &out)
	return out, err
}

type Demo struct{ api API }

func (d *Demo) Request(ctx context.Context, req DemoRequest) error {
	return d.api.Post(ctx, "/demo/requests", req, nil)
}

type Journey struct{ api API }

type trackRequest struct {
	Events []JourneyEvent `json:"events"`
}

func (j *Journey) Track(ctx context.Context, events ...JourneyEvent) error {
	if len(events) == 0 {
		return nil
	}
	return j.api.Post(ctx, "/journey/events", trackRequest{Events: events}, nil)
}

type Billing struct{ api API }

func (b *Billing) Plans(ctx context.Context) ([]Plan, error) {
	var out []Plan
	err := b.api.Get(ctx, "/billing/plans", &out)
	return out, err
}
