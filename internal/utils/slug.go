package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// Slugify converts a listing title into a URL-safe slug with a random
// 4-digit suffix to keep slugs unique across identical titles
func Slugify(title string) (string, error) {
	var b strings.Builder
	lastDash := true

	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "listing"
	}

	suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate slug suffix: %w", err)
	}

	return fmt.Sprintf("%s-%04d", slug, suffix.Int64()), nil
}
