package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Credentials hashes and verifies passwords with bcrypt.
type Credentials struct {
	cost int
}

// NewCredentials returns a Credentials using the given bcrypt cost.
// Out-of-range costs fall back to bcrypt.DefaultCost.
func NewCredentials(cost int) *Credentials {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Credentials{cost: cost}
}

// Hash returns a salted bcrypt hash of password. Two calls with the same
// password produce different hashes.
func (c *Credentials) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches hashed. Malformed hashes and any
// bcrypt failure count as a mismatch.
func (c *Credentials) Verify(plain, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
