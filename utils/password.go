package utils

import "golang.org/x/crypto/bcrypt"

// bcrypt silently truncates input past 72 bytes, so callers validate length
// before hashing.
const passwordHashCost = bcrypt.DefaultCost

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
