package avatars

import (
	"crypto/rand"
	"math/big"
)

// Inline placeholders used when a child has no uploaded avatar, or when the
// upload failed and the record had to be created without one.
var placeholders = []string{
	"👧", "👦", "🧒", "👶", "🦄", "🐯", "🐼", "🦊",
	"🐸", "🐙", "🦖", "🚀", "⭐", "🌈", "🐳", "🦁",
}

// RandomPlaceholder picks a random inline emoji placeholder
func RandomPlaceholder() string {
	p, err := randomElement(placeholders)
	if err != nil || p == "" {
		return placeholders[0]
	}
	return p
}

// IsPlaceholder reports whether an avatar reference is an inline
// placeholder rather than an object-store address.
func IsPlaceholder(ref string) bool {
	for _, p := range placeholders {
		if ref == p {
			return true
		}
	}
	return false
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
