package accounts

import (
	"context"

	"github.com/fairmanage/tenantportal/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByLogin(ctx context.Context, login string) (*models.Account, error)

	// GetByIDForUpdate locks the account row for the duration of the
	// surrounding transaction. Scratch read-modify-write cycles must go
	// through it so concurrent updates cannot lose writes.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error)

	UpdateScratch(ctx context.Context, id string, scratch *string) error
	UpdatePasswordDigest(ctx context.Context, id string, digest string) error
}
