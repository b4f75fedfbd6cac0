package groups

import (
	"context"

	"github.com/fairmanage/tenantportal/internal/server/models"
)

type Repository interface {
	GetByName(ctx context.Context, name string) (*models.Group, error)

	// ReplaceMembership clears the account's entire group set and inserts
	// exactly the given group. Callers are expected to run it inside a
	// transaction so the clear and the insert land together.
	ReplaceMembership(ctx context.Context, accountID, groupID string) error
}
