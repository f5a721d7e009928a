package services

import "context"

type Auth struct{ api API }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *Auth) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	err := a.api.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (a *Auth) Logout(ctx context.Context) error {
	return a.api.Post(ctx, "/auth/logout", nil, nil)
}

func (a *Auth) Refresh(ctx context.Context) (LoginResponse, error) {
	var out LoginResponse
	err := a.api.Post(ctx, "/auth/refresh", nil, &out)
	return out, err
}
