package services

import (
	"strings"

	"github.com/lborres/roster/core"
)

// Gate turns an Authorization header into the caller's identity.
type Gate struct {
	sessions *SessionManager
}

var _ core.Authorizer = (*Gate)(nil)

func NewGate(sessions *SessionManager) *Gate {
	return &Gate{sessions: sessions}
}

// Authorize expects "Bearer <token>". No header at all is
// core.ErrMissingCredential; any header that is present but fails, blank
// ones included, is core.ErrInvalidSession.
func (g *Gate) Authorize(header string) (core.Identity, error) {
	if header == "" {
		return core.Identity{}, core.ErrMissingCredential
	}
	header = strings.TrimSpace(header)

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return core.Identity{}, core.ErrInvalidSession
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return core.Identity{}, core.ErrInvalidSession
	}

	return g.sessions.Verify(token)
}
