package domain

// Order is an immutable snapshot of a cart plus delivery details. Created
// once; only the status field changes server-side afterwards.
type Order struct {
	ID          int         `json:"id"`
	PublicID    string      `json:"public_id"`
	UserID      string      `json:"user_id"`
	AddressID   int         `json:"address_id"`
	PhoneNumber string      `json:"phone_number"`
	TotalPrice  float64     `json:"total_price"`
	ShippingFee float64     `json:"shipping_fee,omitempty"`
	Items       []OrderItem `json:"items"`
	CreatedAt   string      `json:"createdAt"`
	Status      string      `json:"status"`
}

// OrderItem is a denormalized line item within an order.
type OrderItem struct {
	ID              int     `json:"id"`
	Category        string  `json:"category"`
	Image           string  `json:"image"`
	Name            string  `json:"name"`
	OrderID         string  `json:"order_id"`
	Price           float64 `json:"price"`
	ProductPublicID string  `json:"product_public_id"`
	Quantity        int     `json:"quantity"`
}

// CreateOrder is the payload for placing a new order.
type CreateOrder struct {
	Items         []CartItem `json:"items"`
	Address       Address    `json:"address"`
	Phone         string     `json:"phone"`
	TotalPrice    float64    `json:"total_price"`
	AffiliateCode string     `json:"affiliate_code,omitempty"`
}
