package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"storefront/internal/domain"
)

// Login exchanges a Google ID token for a platform session. The returned
// cookie string is the session credential to bind future requests with via
// WithSession.
func (c *Client) Login(ctx context.Context, googleToken string) (string, error) {
	buf, err := json.Marshal(map[string]string{"token": googleToken})
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/google", nil, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env envelope
		msg := http.StatusText(resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Message != "" {
			msg = env.Message
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var pairs []string
	for _, ck := range resp.Cookies() {
		pairs = append(pairs, ck.Name+"="+ck.Value)
	}
	return strings.Join(pairs, "; "), nil
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var resp struct {
		User *domain.User `json:"user"`
	}
	if err := c.get(ctx, "/auth/me", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return resp.User, nil
}

// Logout terminates the platform session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.postJSON(ctx, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// ProfileUpdate carries a partial profile update. When Avatar is non-nil
// the update is sent as a multipart form with the avatar file attached;
// otherwise it is plain JSON.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`

	Avatar         io.Reader `json:"-"`
	AvatarFilename string    `json:"-"`
}

// UpdateProfile issues a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*domain.User, error) {
	var resp struct {
		envelope
		User *domain.User `json:"user"`
	}

	if update.Avatar == nil {
		if err := c.putJSON(ctx, "/users/profile/update", update, &resp); err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		return resp.User, nil
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if update.Name != "" {
		if err := mw.WriteField("name", update.Name); err != nil {
			return nil, fmt.Errorf("failed to build profile form: %w", err)
		}
	}
	if update.Phone != "" {
		if err := mw.WriteField("phone", update.Phone); err != nil {
			return nil, fmt.Errorf("failed to build profile form: %w", err)
		}
	}
	part, err := mw.CreateFormFile("avatar", update.AvatarFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile form: %w", err)
	}
	if _, err := io.Copy(part, update.Avatar); err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build profile form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/users/profile/update", nil, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return resp.User, nil
}
