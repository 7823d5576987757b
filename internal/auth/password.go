package auth

import "golang.org/x/crypto/bcrypt"

const (
	// MinPasswordLength is the shortest worker password accepted.
	MinPasswordLength = 8
	// MaxPasswordBytes is bcrypt's input limit; longer secrets would be rejected by the hasher.
	MaxPasswordBytes = 72
)

// HashPassword hashes a worker password. A cost outside bcrypt's range uses the default cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword returns nil when plain matches the stored hash.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
