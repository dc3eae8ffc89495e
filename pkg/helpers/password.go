package helpers

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor historically used for stored hashes.
const bcryptCost = 12

// HashPassword hashes the plain text password using bcrypt. The salt is
// generated per call, so two hashes of the same input differ.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password.
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
