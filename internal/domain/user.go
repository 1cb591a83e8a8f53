package domain

// User represents the authenticated customer profile as served by the
// commerce platform. The platform owns the identity lifecycle; the gateway
// only holds a refreshable copy.
type User struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	PublicID string `json:"public_id"`
	Phone    string `json:"phone,omitempty"`
}

// HasPhone reports whether the profile is complete enough to place orders.
func (u *User) HasPhone() bool {
	return u != nil && u.Phone != ""
}
