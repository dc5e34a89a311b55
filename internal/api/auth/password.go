package auth

import "golang.org/x/crypto/bcrypt"

// passwordCost is lowered in tests.
var passwordCost = bcrypt.DefaultCost

// HashPassword returns a bcrypt hash for local sign-in. Passwords longer
// than 72 bytes are rejected by bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
