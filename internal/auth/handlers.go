package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/storesight/console/internal/middleware"
	"github.com/storesight/console/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultSessionTTL = 12 * time.Hour
	TrialLength       = 14 * 24 * time.Hour
)

type Handler struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewHandler(store Store, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Handler{store: store, ttl: ttl, now: time.Now}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	AccountName string `json:"account_name"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// Register creates an account on a starter trial together with its owner.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.AccountName) == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "account_name, email and password are required")
		return
	}
	if len(req.Password) < 8 {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "password must be at least 8 characters")
		return
	}

	if _, err := h.store.UserByEmail(req.Email); err == nil {
		http.Error(w, "Email already registered", http.StatusConflict)
		return
	} else if !errors.Is(err, ErrNotFound) {
		http.Error(w, "Failed to check email", http.StatusInternalServerError)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}

	trialEnds := h.now().Add(TrialLength)
	acct := Account{
		ID:          utils.GenerateUUID(),
		Name:        strings.TrimSpace(req.AccountName),
		Plan:        PlanStarter,
		TrialEndsAt: &trialEnds,
	}
	user := User{
		UserID:         utils.GenerateUUID(),
		Email:          req.Email,
		Name:           strings.TrimSpace(req.Name),
		HashedPassword: string(hashed),
		Role:           RoleOwner,
	}
	if err := h.store.CreateAccount(&acct, &user); err != nil {
		log.Printf("[auth] register %s: %v", req.Email, err)
		http.Error(w, "Failed to register account", http.StatusInternalServerError)
		return
	}

	h.issue(w, http.StatusCreated, user, acct)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}

	user, err := h.store.UserByEmail(strings.TrimSpace(c.Email))
	if err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(c.Password)); err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	acct, err := h.store.Account(user.AccountID)
	if err != nil {
		http.Error(w, "Couldn't find account", http.StatusInternalServerError)
		return
	}

	h.issue(w, http.StatusOK, user, acct)
}

// Logout deletes the presented session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if err := h.store.DeleteSession(token); err != nil {
		http.Error(w, "Couldn't delete session", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Refresh swaps the presented token for a new one with a fresh TTL.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	user, acct, ok := h.current(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteSession(middleware.BearerToken(r)); err != nil {
		log.Printf("[auth] refresh: dropping old session: %v", err)
	}
	h.issue(w, http.StatusOK, user, acct)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, acct, ok := h.current(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, NewProfile(user, acct))
}

type updatePassword struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.current(w, r)
	if !ok {
		return
	}

	var req updatePassword
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
		http.Error(w, "Current and new password are required", http.StatusBadRequest)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.CurrentPassword)); err != nil {
		http.Error(w, "Invalid current password", http.StatusUnauthorized)
		return
	}
	if len(req.NewPassword) < 8 {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "password must be at least 8 characters")
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}
	if err := h.store.SetPassword(user.UserID, string(hashed)); err != nil {
		http.Error(w, "Failed to update password", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) (User, Account, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return User{}, Account{}, false
	}
	user, err := h.store.UserByID(userID)
	if err != nil {
		http.Error(w, "Couldn't find user", http.StatusNotFound)
		return User{}, Account{}, false
	}
	acct, err := h.store.Account(user.AccountID)
	if err != nil {
		http.Error(w, "Couldn't find account", http.StatusNotFound)
		return User{}, Account{}, false
	}
	return user, acct, true
}

func (h *Handler) issue(w http.ResponseWriter, status int, user User, acct Account) {
	s := Session{
		Token:     utils.GenerateUUID(),
		UserID:    user.UserID,
		ExpiresAt: h.now().Add(h.ttl),
	}
	if err := h.store.CreateSession(&s); err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, status, TokenResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      NewProfile(user, acct),
	})
}
