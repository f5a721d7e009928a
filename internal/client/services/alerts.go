package services

import (
	"context"
	"net/url"
)

type Alerts struct{ api API }

func (a *Alerts) List(ctx context.Context, f AlertFilter) ([]Alert, error) {
	q := url.Values{}
	if f.StoreID != "" {
		q.Set("store_id", f.StoreID)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Severity != "" {
		q.Set("severity", f.Severity)
	}
	path := "/alerts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []Alert
	err := a.api.Get(ctx, path, &out)
	return out, err
}

func (a *Alerts) Acknowledge(ctx context.Context, id string) (Alert, error) {
	var out Alert
	err := a.api.Post(ctx, "/alerts/"+seg(id)+"/ack", nil, &out)
	return out, err
}

func (a *Alerts) Resolve(ctx context.Context, id string) (Alert, error) {
	var out Alert
	err := a.api.Post(ctx, "/alerts/"+seg(id)+"/resolve", nil, &out)
	return out, err
}
