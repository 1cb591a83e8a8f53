package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/backend"
	"storefront/internal/domain"

	"go.uber.org/zap"
)

// AuthAPI is the slice of the platform client the auth container needs.
type AuthAPI interface {
	Me(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update backend.ProfileUpdate) (*domain.User, error)
}

// AuthContainer holds the session's refreshable copy of the authenticated
// user. Views and sibling containers observe identity changes through
// Subscribe.
type AuthContainer struct {
	notifier

	api    AuthAPI
	logger *zap.Logger

	mu   sync.RWMutex
	user *domain.User
}

// NewAuthContainer creates an auth container bound to a session's platform
// client.
func NewAuthContainer(api AuthAPI, logger *zap.Logger) *AuthContainer {
	return &AuthContainer{api: api, logger: logger}
}

// User returns the current user, or nil when unauthenticated.
func (a *AuthContainer) User() *domain.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

// IsAuthenticated reports whether a user is present.
func (a *AuthContainer) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user != nil
}

// RefreshUser re-fetches the profile from the platform. An unauthenticated
// response clears the user; other failures keep the previous copy.
func (a *AuthContainer) RefreshUser(ctx context.Context) (*domain.User, error) {
	user, err := a.api.Me(ctx)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthenticated) {
			a.setUser(nil)
			return nil, nil
		}
		a.logger.Error("Failed to refresh user", zap.Error(err))
		return nil, fmt.Errorf("failed to refresh user: %w", err)
	}

	a.setUser(user)
	return a.User(), nil
}

// Logout terminates the platform session and clears the local user. The
// clear happens even when the platform call fails; the session credential
// is discarded by the caller either way.
func (a *AuthContainer) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	if err != nil {
		a.logger.Error("Failed to logout from platform", zap.Error(err))
	}
	a.setUser(nil)
	return err
}

// UpdateProfile issues a partial profile update and refreshes the local
// user from the platform's response.
func (a *AuthContainer) UpdateProfile(ctx context.Context, update backend.ProfileUpdate) (*domain.User, error) {
	user, err := a.api.UpdateProfile(ctx, update)
	if err != nil {
		a.logger.Error("Failed to update profile", zap.Error(err))
		return nil, err
	}
	if user != nil {
		a.setUser(user)
	} else {
		// Some platform deployments return an empty body; reconcile.
		if _, err := a.RefreshUser(ctx); err != nil {
			return nil, err
		}
	}
	return a.User(), nil
}

func (a *AuthContainer) setUser(user *domain.User) {
	a.mu.Lock()
	a.user = user
	a.mu.Unlock()
	a.notify()
}
