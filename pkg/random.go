package pkg

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateRandomString reads n bytes from crypto/rand and returns them
// base64 URL encoded without padding. Used for session IDs.
func GenerateRandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("random string: invalid byte length %d", n)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random string: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
