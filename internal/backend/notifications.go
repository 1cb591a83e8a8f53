package backend

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

// VAPIDPublicKey fetches the public key a push subscription must be
// created with.
func (c *Client) VAPIDPublicKey(ctx context.Context) (string, error) {
	var resp struct {
		PublicKey string `json:"publicKey"`
	}
	if err := c.get(ctx, "/notifications/vapid-public-key", nil, &resp); err != nil {
		return "", fmt.Errorf("failed to fetch VAPID public key: %w", err)
	}
	if resp.PublicKey == "" {
		return "", errors.New("platform returned an empty VAPID public key")
	}
	return resp.PublicKey, nil
}

// RegisterPushSubscription sends the serialized browser subscription to
// the platform so it can deliver push messages.
func (c *Client) RegisterPushSubscription(ctx context.Context, sub *domain.PushSubscription) error {
	var resp envelope
	if err := c.postJSON(ctx, "/notifications/subscribe", sub, &resp); err != nil {
		return fmt.Errorf("failed to register push subscription: %w", err)
	}
	if resp.Error {
		if resp.Message != "" {
			return fmt.Errorf("failed to register push subscription: %s", resp.Message)
		}
		return errors.New("failed to register push subscription")
	}
	return nil
}
