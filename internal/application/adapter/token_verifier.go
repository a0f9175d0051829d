package adapter

import (
	"github.com/google/uuid"
)

// TokenVerifier validates bearer tokens at the API boundary. Token issuance
// belongs to the identity service; this service only verifies.
type TokenVerifier interface {
	// VerifyAccessToken validates the token and returns the owner it was
	// issued to.
	VerifyAccessToken(token string) (uuid.UUID, error)
}
