package domain

// Cart is the server-owned cart for a single authenticated user. At most
// one cart per user and one item entry per product, both enforced by the
// platform; the gateway never assumes client-side dedup and reconciles
// with server state after every mutation.
type Cart struct {
	ID       int        `json:"id"`
	PublicID string     `json:"public_id"`
	Items    []CartItem `json:"items"`
}

// CartItem maps a product to a quantity within a cart.
type CartItem struct {
	ID       int     `json:"id"`
	CartID   int     `json:"cart_id,omitempty"`
	Quantity int     `json:"quantity"`
	Product  Product `json:"product"`
}
