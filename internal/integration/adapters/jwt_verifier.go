package adapters

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
)

// AccessClaims represents the claims carried by access tokens.
type AccessClaims struct {
	OwnerID   string `json:"owner_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// jwtVerifier implements the adapter.TokenVerifier interface with an HMAC
// shared secret.
type jwtVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a new JWT verifier instance.
func NewJWTVerifier(secret string) adapter.TokenVerifier {
	return &jwtVerifier{
		secret: []byte(secret),
	}
}

// VerifyAccessToken validates the token signature, expiry and type, and
// returns the owner it was issued to.
func (v *jwtVerifier) VerifyAccessToken(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, domainerror.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || claims.TokenType != "access" {
		return uuid.Nil, domainerror.ErrInvalidToken
	}

	ownerID, err := uuid.Parse(claims.OwnerID)
	if err != nil {
		return uuid.Nil, domainerror.ErrInvalidToken
	}
	return ownerID, nil
}
