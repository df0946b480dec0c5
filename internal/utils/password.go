package utils

import "golang.org/x/crypto/bcrypt" // Password hashing

// HashPassword returns a salted bcrypt hash of the secret
func HashPassword(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a secret with a bcrypt hash in constant time
func CheckPassword(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
