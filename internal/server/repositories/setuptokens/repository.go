package setuptokens

import "context"

// Repository is the secondary index from setup token values to account IDs.
// The authoritative token record (value and expiry) lives in the account's
// scratch state; this index only makes token resolution a direct lookup
// instead of a scan over every account.
type Repository interface {
	Insert(ctx context.Context, token, accountID string) error
	FindAccountID(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
	DeleteForAccount(ctx context.Context, accountID string) error
}
