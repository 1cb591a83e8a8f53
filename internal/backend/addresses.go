package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"storefront/internal/domain"
)

// CreateAddress registers a new delivery address.
func (c *Client) CreateAddress(ctx context.Context, addr domain.CreateAddress) (*domain.Address, error) {
	var resp struct {
		envelope
		Address *domain.Address `json:"address"`
	}
	if err := c.postJSON(ctx, "/addresses", addr, &resp); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return resp.Address, nil
}

// Addresses lists the user's saved addresses.
func (c *Client) Addresses(ctx context.Context, userID string) ([]domain.Address, error) {
	var resp struct {
		Addresses []domain.Address `json:"addresses"`
	}
	if err := c.get(ctx, "/addresses/user/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch addresses: %w", err)
	}
	return resp.Addresses, nil
}

// DeleteAddress removes a saved address.
func (c *Client) DeleteAddress(ctx context.Context, addressID int) error {
	if err := c.delete(ctx, "/addresses/"+strconv.Itoa(addressID), nil); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}
