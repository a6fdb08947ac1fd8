// Package session owns the authenticated user: login, signup, and logout
// against the backend, mirrored to the local state store so a restart
// restores the session without a network call.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nhle/sprintboard/internal/api"
	"github.com/nhle/sprintboard/internal/credential"
	"github.com/nhle/sprintboard/internal/model"
	"github.com/nhle/sprintboard/internal/store"
)

// Store holds the current authenticated user in memory, mirrored to the
// durable client-state database. It is safe for concurrent use.
type Store struct {
	client *api.Client
	db     store.Store

	mu      sync.RWMutex
	user    *model.User
	loading bool
}

// New creates a session store. The store reports Loading() == true until
// Restore has run once.
func New(client *api.Client, db store.Store) *Store {
	return &Store{
		client:  client,
		db:      db,
		loading: true,
	}
}

// Restore loads a previously saved session from durable storage and
// reinstalls the auth token from the keyring. It runs once at startup;
// a missing session or token is not an error.
func (s *Store) Restore(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	user, err := s.db.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	if user == nil {
		return nil
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	if token, err := credential.Get(credential.TokenKey); err == nil && token != "" {
		s.client.SetToken(token)
	}

	return nil
}

// Loading reports whether the initial restore is still in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// User returns the current session user, or nil when logged out.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the user object plus the optional token some backend
// deployments return; others rely on cookie auth and send no token.
type loginResponse struct {
	model.User
	AccessToken string `json:"access_token"`
}

// Login validates credentials against the backend and, on success, stores
// the returned user in memory and durable storage. The returned error
// carries the backend-provided message when one is present.
func (s *Store) Login(
	ctx context.Context,
	email string,
	password string,
) (*model.User, error) {
	var resp loginResponse
	err := s.client.Post(ctx, "/users/valid", credentials{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return nil, errors.New(apiErr.Message("Login failed"))
		}
		return nil, fmt.Errorf("logging in: %w", err)
	}

	s.establish(ctx, &resp.User, resp.AccessToken)
	return &resp.User, nil
}

// Signup creates an account and starts a session. The backend's response
// shape varies across deployments; see normalizeSignupResponse.
func (s *Store) Signup(
	ctx context.Context,
	email string,
	password string,
) (*model.User, error) {
	var raw json.RawMessage
	err := s.client.Post(ctx, "/users/", credentials{
		Email:    email,
		Password: password,
	}, &raw)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return nil, errors.New(apiErr.Message("Signup failed"))
		}
		return nil, fmt.Errorf("signing up: %w", err)
	}

	user, token, err := normalizeSignupResponse(raw)
	if err != nil {
		return nil, err
	}

	s.establish(ctx, user, token)
	return user, nil
}

// UpdateProfile patches the current user's profile on the backend and
// replaces the session user in memory and durable storage.
func (s *Store) UpdateProfile(
	ctx context.Context,
	update model.ProfileUpdate,
) (*model.User, error) {
	current := s.User()
	if current == nil {
		return nil, errors.New("not logged in")
	}

	user, err := s.client.UpdateUser(ctx, current.ID, update)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return nil, errors.New(apiErr.Message("Profile update failed"))
		}
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	_ = s.db.SaveSession(ctx, user)
	return user, nil
}

// Logout clears the in-memory and durable session synchronously. It makes
// no network call; the backend session, if any, simply expires.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.client.SetToken("")
	_ = credential.Delete(credential.TokenKey)
	_ = s.db.ClearSession(context.Background())
}

// establish commits a fresh session to memory, durable storage, and the
// keyring. Storage failures are not fatal to the login itself.
func (s *Store) establish(ctx context.Context, user *model.User, token string) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	_ = s.db.SaveSession(ctx, user)

	if token != "" {
		s.client.SetToken(token)
		_ = credential.Set(credential.TokenKey, token)
	}
}

// signupEnvelope covers the known success/error wrappers: a direct user
// object, a user wrapped under a success-message key, or an error string
// in an "error" field.
type signupEnvelope struct {
	model.User
	AccessToken string           `json:"access_token"`
	ErrorText   string           `json:"error"`
	Wrapped     *json.RawMessage `json:"User created successfully"`
}

// normalizeSignupResponse maps the backend's signup response shapes to a
// user object. Known shapes: the user object itself, the user wrapped
// under "User created successfully", and an "already registered" error
// string inside a single-element array. Anything else is a hard error.
func normalizeSignupResponse(raw json.RawMessage) (*model.User, string, error) {
	trimmed := strings.TrimSpace(string(raw))

	if strings.HasPrefix(trimmed, "[") {
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, "", fmt.Errorf("parsing signup response: %w", err)
		}
		if len(elems) == 1 {
			var msg string
			if json.Unmarshal(elems[0], &msg) == nil &&
				strings.Contains(msg, "already registered") {
				return nil, "", errors.New(msg)
			}
		}
		return nil, "", fmt.Errorf("unexpected signup response: %s", trimmed)
	}

	var env signupEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", fmt.Errorf("parsing signup response: %w", err)
	}

	if env.ErrorText != "" {
		return nil, "", errors.New(env.ErrorText)
	}

	if env.Wrapped != nil {
		var user model.User
		if err := json.Unmarshal(*env.Wrapped, &user); err != nil {
			return nil, "", fmt.Errorf("parsing created user: %w", err)
		}
		if user.ID == 0 {
			return nil, "", fmt.Errorf("unexpected signup response: %s", trimmed)
		}
		return &user, env.AccessToken, nil
	}

	if env.User.ID == 0 && env.User.Email == "" {
		return nil, "", fmt.Errorf("unexpected signup response: %s", trimmed)
	}
	return &env.User, env.AccessToken, nil
}
