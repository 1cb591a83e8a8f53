package backend

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

// CreateOrder places a new order from the given cart snapshot. The
// affiliate code, when present on the payload, attributes the order to a
// referral.
func (c *Client) CreateOrder(ctx context.Context, order domain.CreateOrder) (*domain.Order, error) {
	var resp struct {
		envelope
		Order *domain.Order `json:"order"`
	}
	if err := c.postJSON(ctx, "/orders/order/new", order, &resp); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if resp.Error {
		return nil, &APIError{StatusCode: 200, Message: resp.Message}
	}
	if resp.Order == nil {
		return nil, fmt.Errorf("order missing from platform response")
	}
	return resp.Order, nil
}

// UserOrders fetches the authenticated user's order history.
func (c *Client) UserOrders(ctx context.Context) ([]domain.Order, error) {
	var resp struct {
		Orders []domain.Order `json:"orders"`
	}
	if err := c.get(ctx, "/orders/user", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return resp.Orders, nil
}
