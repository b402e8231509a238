package testhelpers

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// CreateJWT signs a short-lived landlord access token.
func (h *TestHelper) CreateJWT(userID uuid.UUID) string {
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now,
		"exp": now + 15*60,
	}
	if h.JWTIssuer != "" {
		claims["iss"] = h.JWTIssuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(h.PrivateKey)
	require.NoError(h.T, err, "Failed to sign test landlord JWT")
	return signed
}
