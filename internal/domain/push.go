package domain

// PushSubscription is the browser-issued endpoint plus encryption keys
// registered with the platform so it can deliver push messages. Its
// lifecycle is tied to the user agent's push manager, not to any entity
// the gateway holds.
type PushSubscription struct {
	Endpoint       string               `json:"endpoint"`
	ExpirationTime *int64               `json:"expirationTime"`
	Keys           PushSubscriptionKeys `json:"keys"`
}

// PushSubscriptionKeys carries the client key material for payload
// encryption.
type PushSubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushPayload is the JSON body of an incoming push event.
type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}
