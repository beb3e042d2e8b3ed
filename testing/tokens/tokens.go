package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issue - signs an HS256 identity token the way the account subsystem does: the player id is carried
// both in user_id and in sub.
func Issue(t *testing.T, secret, playerID string, expiresAt time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": playerID,
		"sub":     playerID,
		"iat":     expiresAt.Add(-time.Hour).Unix(),
		"exp":     expiresAt.Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("could not sign token: %v", err)
	}

	return token
}
