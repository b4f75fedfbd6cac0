package setuptokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fairmanage/tenantportal/internal/common"
	"github.com/fairmanage/tenantportal/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, token, accountID string) error {
	query :=
		`INSERT INTO setup_tokens (token, account_id)
         VALUES ($1, $2)
		 `

	if _, err := r.db.ExecContext(ctx, query, token, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FindAccountID(ctx context.Context, token string) (string, error) {
	query :=
		`SELECT account_id FROM setup_tokens
		 WHERE token = $1
		 `

	var accountID string
	err := r.db.QueryRowContext(ctx, query, token).Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return accountID, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	query :=
		`DELETE FROM setup_tokens
		 WHERE token = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) DeleteForAccount(ctx context.Context, accountID string) error {
	query :=
		`DELETE FROM setup_tokens
		 WHERE account_id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
