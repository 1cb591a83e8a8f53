package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

// ErrNotAuthenticated is returned by cart mutations attempted without a
// logged-in user. No network request is made in that case.
var ErrNotAuthenticated = errors.New("user must be logged in")

// CartAPI is the slice of the platform client the cart container needs.
type CartAPI interface {
	Cart(ctx context.Context) (*domain.Cart, error)
	AddCartItem(ctx context.Context, productID string, quantity int) (*domain.CartItem, error)
	UpdateCartItem(ctx context.Context, itemID int, userID string, quantity int) error
	RemoveCartItem(ctx context.Context, itemID int) error
	ClearCart(ctx context.Context) error
}

// authState is what the cart container observes about the session identity.
type authState interface {
	User() *domain.User
	Subscribe(fn func()) (unsubscribe func())
}

// CartContainer holds the session's copy of the server-owned cart.
//
// Update policy: reconcile after mutation. Every mutation issues the
// platform call and then re-fetches the full cart, replacing local state
// wholesale. There is no optimistic merging, so after any mutation settles
// the local cart equals the server's. Mutation failures are logged and
// returned; prior local state is kept unless the reconciliation fetch
// succeeds.
//
// Concurrent mutations are neither queued nor deduplicated: each runs its
// own request/reconcile cycle and the last reconciliation to resolve wins.
type CartContainer struct {
	notifier

	api    CartAPI
	auth   authState
	logger *zap.Logger

	mu     sync.RWMutex
	items  []domain.CartItem
	cartID string
}

// NewCartContainer creates a cart container and wires it to the auth
// container: login re-fetches the cart, logout clears it.
func NewCartContainer(api CartAPI, auth authState, logger *zap.Logger) *CartContainer {
	c := &CartContainer{api: api, auth: auth, logger: logger}

	auth.Subscribe(func() {
		if err := c.Refresh(context.Background()); err != nil {
			c.logger.Error("Failed to refresh cart after auth change", zap.Error(err))
		}
	})

	return c
}

// Items returns a copy of the current cart items.
func (c *CartContainer) Items() []domain.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]domain.CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// CartID returns the server-assigned cart identifier, or "" when no cart
// is loaded.
func (c *CartContainer) CartID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cartID
}

// TotalItems is the sum of quantities across the current cart entries.
func (c *CartContainer) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// Subtotal is the sum of price times quantity across the current entries.
func (c *CartContainer) Subtotal() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	subtotal := 0.0
	for _, item := range c.items {
		subtotal += item.Product.Price * float64(item.Quantity)
	}
	return subtotal
}

// Refresh replaces local state with the server's current cart. When the
// session is unauthenticated the local cart is cleared instead.
func (c *CartContainer) Refresh(ctx context.Context) error {
	if c.auth.User() == nil {
		c.replace(nil, "")
		return nil
	}

	cart, err := c.api.Cart(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch cart: %w", err)
	}
	if cart == nil {
		c.replace(nil, "")
		return nil
	}

	c.replace(cart.Items, cart.PublicID)
	return nil
}

// AddToCart posts the product to the platform and reconciles.
func (c *CartContainer) AddToCart(ctx context.Context, product domain.Product, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	if c.auth.User() == nil {
		c.logger.Error("User must be logged in to add to cart")
		return ErrNotAuthenticated
	}

	if _, err := c.api.AddCartItem(ctx, product.ID, quantity); err != nil {
		c.logger.Error("Failed to add to cart",
			zap.String("product_id", product.ID),
			zap.Error(err),
		)
		return err
	}

	return c.Refresh(ctx)
}

// RemoveFromCart deletes the item server-side and reconciles.
func (c *CartContainer) RemoveFromCart(ctx context.Context, itemID int) error {
	if c.auth.User() == nil {
		c.logger.Error("User must be logged in to remove from cart")
		return ErrNotAuthenticated
	}

	if err := c.api.RemoveCartItem(ctx, itemID); err != nil {
		c.logger.Error("Failed to remove from cart",
			zap.Int("item_id", itemID),
			zap.Error(err),
		)
		return err
	}

	return c.Refresh(ctx)
}

// UpdateQuantity changes an item's quantity server-side and reconciles.
func (c *CartContainer) UpdateQuantity(ctx context.Context, itemID, quantity int) error {
	user := c.auth.User()
	if user == nil {
		c.logger.Error("User must be logged in to update quantity")
		return ErrNotAuthenticated
	}

	if err := c.api.UpdateCartItem(ctx, itemID, user.PublicID, quantity); err != nil {
		c.logger.Error("Failed to update quantity",
			zap.Int("item_id", itemID),
			zap.Int("quantity", quantity),
			zap.Error(err),
		)
		return err
	}

	return c.Refresh(ctx)
}

// ClearCart deletes all items server-side and reconciles.
func (c *CartContainer) ClearCart(ctx context.Context) error {
	if c.auth.User() == nil {
		c.logger.Error("User must be logged in to clear cart")
		return ErrNotAuthenticated
	}

	if err := c.api.ClearCart(ctx); err != nil {
		c.logger.Error("Failed to clear cart", zap.Error(err))
		return err
	}

	return c.Refresh(ctx)
}

func (c *CartContainer) replace(items []domain.CartItem, cartID string) {
	c.mu.Lock()
	c.items = items
	c.cartID = cartID
	c.mu.Unlock()
	c.notify()
}
