package push

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeVAPIDKey converts a base64url-encoded VAPID public key into the
// raw bytes a push subscription is created with. Keys arrive from the
// platform without padding and sometimes in standard-alphabet form, so
// both are normalized first.
func DecodeVAPIDKey(key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("empty VAPID key")
	}

	normalized := strings.ReplaceAll(key, "-", "+")
	normalized = strings.ReplaceAll(normalized, "_", "/")
	if pad := len(normalized) % 4; pad != 0 {
		normalized += strings.Repeat("=", 4-pad)
	}

	raw, err := base64.StdEncoding.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid VAPID key: %w", err)
	}
	return raw, nil
}
