package groups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fairmanage/tenantportal/internal/common"
	"github.com/fairmanage/tenantportal/internal/dbx"
	"github.com/fairmanage/tenantportal/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	query :=
		`SELECT id, name FROM groups
		 WHERE name = $1
		 `

	group := &models.Group{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&group.ID, &group.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return group, nil
}

func (r *PostgresRepository) ReplaceMembership(ctx context.Context, accountID, groupID string) error {
	deleteQuery :=
		`DELETE FROM account_groups
		 WHERE account_id = $1
		 `

	if _, err := r.db.ExecContext(ctx, deleteQuery, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	insertQuery :=
		`INSERT INTO account_groups (account_id, group_id)
         VALUES ($1, $2)
		 `

	if _, err := r.db.ExecContext(ctx, insertQuery, accountID, groupID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
