package backend

import (
	"context"
	"fmt"
	"strconv"

	"storefront/internal/domain"
)

// cartResponse wraps cart endpoints' payloads.
type cartResponse struct {
	envelope
	Cart     *domain.Cart     `json:"cart"`
	CartItem *domain.CartItem `json:"cart_item"`
}

// Cart fetches the authenticated user's full cart. This is the
// reconciliation fetch issued after every cart mutation.
func (c *Client) Cart(ctx context.Context) (*domain.Cart, error) {
	var resp cartResponse
	if err := c.get(ctx, "/carts/user/cart", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return resp.Cart, nil
}

// AddCartItem adds a product to the cart.
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) (*domain.CartItem, error) {
	body := map[string]any{
		"product_id": productID,
		"quantity":   quantity,
	}
	var resp cartResponse
	if err := c.postJSON(ctx, "/carts/add", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	if resp.Error {
		return nil, &APIError{StatusCode: 200, Message: resp.Message}
	}
	return resp.CartItem, nil
}

// UpdateCartItem changes the quantity of a cart item.
func (c *Client) UpdateCartItem(ctx context.Context, itemID int, userID string, quantity int) error {
	body := map[string]any{
		"user_id":  userID,
		"quantity": quantity,
	}
	if err := c.putJSON(ctx, "/carts/update/"+strconv.Itoa(itemID), body, nil); err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

// RemoveCartItem deletes a single item from the cart.
func (c *Client) RemoveCartItem(ctx context.Context, itemID int) error {
	if err := c.delete(ctx, "/carts/remove/"+strconv.Itoa(itemID), nil); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// ClearCart deletes every item from the cart.
func (c *Client) ClearCart(ctx context.Context) error {
	if err := c.delete(ctx, "/carts/clear", nil); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
