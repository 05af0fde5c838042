package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes an admin password with the configured
// cost.  The startup bootstrap uses it to seed the back-office account
// from the environment.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// Constant-time comparison happens inside bcrypt.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
