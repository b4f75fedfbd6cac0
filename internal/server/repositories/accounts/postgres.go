package accounts

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

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	account := &models.Account{}
	var scratch sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&account.ID, &account.Login, &account.PasswordDigest, &scratch, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if scratch.Valid {
		account.Scratch = &scratch.String
	}

	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT id, login, password_digest, scratch, created_at FROM accounts
		 WHERE id = $1
		 `

	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	query :=
		`SELECT id, login, password_digest, scratch, created_at FROM accounts
		 WHERE login = $1
		 `

	return r.getOne(ctx, query, login)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT id, login, password_digest, scratch, created_at FROM accounts
		 WHERE id = $1
		 FOR UPDATE
		 `

	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) UpdateScratch(ctx context.Context, id string, scratch *string) error {
	query :=
		`UPDATE accounts SET scratch = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, scratch)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) UpdatePasswordDigest(ctx context.Context, id string, digest string) error {
	query :=
		`UPDATE accounts SET password_digest = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, digest)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
