package utils // helper functions for admin token creation and password hashing

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken represents a signed JWT access token along with its
// expiry.  Access tokens are short-lived and sent in the Authorization
// header when calling admin endpoints.  The back office has a single
// role, so no refresh-token machinery: an admin simply logs in again
// when the token expires.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for an admin account.
// The JWT carries standard claims: subject (sub), role, expiration
// (exp) and issued at (iat).
func NewAccessToken(secret string, adminID uint64, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  adminID,
		"role": "ADMIN",
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
