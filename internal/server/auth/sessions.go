package auth

import (
	"context"
	"time"

	"github.com/fairmanage/tenantportal/internal/server/models"
)

// Sessions establishes signed sessions for accounts. It backs the portal's
// auto-login path after a setup token is consumed.
type Sessions struct {
	secret   []byte
	validity time.Duration
}

// NewSessions constructs a Sessions with the given signing secret and
// session lifetime.
func NewSessions(secret []byte, validity time.Duration) *Sessions {
	return &Sessions{secret: secret, validity: validity}
}

// Establish issues a session token for the account.
func (s *Sessions) Establish(ctx context.Context, account *models.Account) (string, error) {
	return GenerateSessionToken(account.ID, s.secret, s.validity)
}
