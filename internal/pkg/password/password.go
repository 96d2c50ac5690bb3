package password

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12
	// MinLength is the shortest accepted password
	MinLength = 8
)

// Hasher hashes and verifies passwords. Tests use a lower cost.
type Hasher struct {
	Cost int
}

// NewHasher returns a bcrypt hasher with the given cost, DefaultCost when cost is 0
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = DefaultCost
	}
	return &Hasher{Cost: cost}
}

// Hash hashes a password using bcrypt
func (h *Hasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func (h *Hasher) Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePassword checks if password meets requirements
func ValidatePassword(password string) bool {
	return len(password) >= MinLength
}
