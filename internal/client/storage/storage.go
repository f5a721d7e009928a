// Package storage persists the small amount of client state the console
// keeps between runs: the auth token, a minimal user profile and a couple of
// form drafts.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Fixed keys.
const (
	KeyAuthToken        = "auth_token"
	KeyAuthUser         = "auth_user"
	KeyDemoRequestDraft = "demo_request_draft"
	KeyOnboardingDraft  = "onboarding_draft"
)

// Store is a JSON file backed key/value map. The zero value is not usable;
// call Open.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]json.RawMessage
}

// Open loads path, creating an empty store if the file does not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: map[string]json.RawMessage{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read storage: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.values); err != nil {
		return nil, fmt.Errorf("decode storage %s: %w", path, err)
	}
	return s, nil
}

// Get decodes the value under key into dest. It reports false when the key
// is absent.
func (s *Store) Get(key string, dest any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// GetString returns a string value or "".
func (s *Store) GetString(key string) string {
	var v string
	if ok, err := s.Get(key, &v); !ok || err != nil {
		return ""
	}
	return v
}

// Set stores value under key and flushes to disk.
func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
	return s.flushLocked()
}

// Remove deletes key and flushes to disk.
func (s *Store) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return s.flushLocked()
}

// Clear drops every key.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]json.RawMessage{}
	return s.flushLocked()
}

// Token implements apiclient.TokenSource.
func (s *Store) Token() string {
	return s.GetString(KeyAuthToken)
}

func (s *Store) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	buf, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o600); err != nil {
		return fmt.Errorf("write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace storage: %w", err)
	}
	return nil
}
