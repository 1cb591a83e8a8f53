package domain

// Address is a named delivery location associated with a user,
// independently created and deleted.
type Address struct {
	ID        int     `json:"id"`
	UserID    string  `json:"user_id,omitempty"`
	Name      string  `json:"name,omitempty"`
	City      string  `json:"city"`
	Street    string  `json:"street"`
	Number    string  `json:"number,omitempty"`
	Lat       float64 `json:"lat,omitempty"`
	Long      float64 `json:"long,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// CreateAddress is the payload for registering a new address.
type CreateAddress struct {
	UserID string  `json:"user_id"`
	Name   string  `json:"name,omitempty"`
	City   string  `json:"city"`
	Street string  `json:"street"`
	Number string  `json:"number,omitempty"`
	Lat    float64 `json:"lat,omitempty"`
	Long   float64 `json:"long,omitempty"`
	Phone  string  `json:"phone,omitempty"`
}
