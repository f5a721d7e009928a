// Package services holds typed request/response shims over the console REST
// API. They shape payloads and paths and nothing else.
package services

import (
	"context"
	"net/url"
)

// API is the subset of *apiclient.Client the services use.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// Services bundles every domain shim over one API.
type Services struct {
	Auth       *Auth
	Stores     *Stores
	Cameras    *Cameras
	Alerts     *Alerts
	Employees  *Employees
	Onboarding *Onboarding
	Me         *Me
	Demo       *Demo
	Journey    *Journey
	Billing    *Billing
}

// New wires all services to api.
func New(api API) *Services {
	return &Services{
		Auth:       &Auth{api: api},
		Stores:     &Stores{api: api},
		Cameras:    &Cameras{api: api},
		Alerts:     &Alerts{api: api},
		Employees:  &Employees{api: api},
		Onboarding: &Onboarding{api: api},
		Me:         &Me{api: api},
		Demo:       &Demo{api: api},
		Journey:    &Journey{api: api},
		Billing:    &Billing{api: api},
	}
}

func seg(s string) string { return url.PathEscape(s) }
