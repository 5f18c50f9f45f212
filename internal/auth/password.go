package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash of the plaintext credential. A cost
// outside bcrypt's supported range falls back to the library default, so
// a misconfigured BCRYPT_COST cannot take registration down.
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

// ComparePassword verifies a plaintext credential against a stored hash.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
