package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// tokenBytes gives 256 bits of entropy per session token.
const tokenBytes = 32

// RandomTokenGenerator mints opaque bearer tokens. Tokens carry no claims;
// everything about the session lives server-side in the session store.
type RandomTokenGenerator struct {
	Size int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	n := g.Size
	if n <= 0 {
		n = tokenBytes
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("token: entropy read failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
