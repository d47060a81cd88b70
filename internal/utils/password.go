package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash of plain.  The cost comes from
// configuration so operators can tune hashing latency without a
// rebuild; values outside bcrypt's accepted range fall back to the
// library default instead of failing registration.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored hash.  Any
// failure, including a malformed hash, reads as a mismatch.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
