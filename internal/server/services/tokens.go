// Package services contains the portal's business logic: issuing and
// consuming account setup tokens and running the forced password-change
// workflow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fairmanage/tenantportal/internal/common"
	"github.com/fairmanage/tenantportal/internal/dbx"
	"github.com/fairmanage/tenantportal/internal/logging"
	"github.com/fairmanage/tenantportal/internal/server/config"
	"github.com/fairmanage/tenantportal/internal/server/models"
	"github.com/fairmanage/tenantportal/internal/server/repositories/repomanager"
	"github.com/fairmanage/tenantportal/internal/server/scratch"
)

// setupTokenBytes is the number of random bytes in a setup token; the hex
// encoding doubles it to 64 characters on the wire.
const setupTokenBytes = 32

// TokenService manages the lifecycle of single-use account setup tokens:
// - Issue: mint a token for a freshly provisioned account
// - Resolve: look an account up by token without consuming it
// - Consume: resolve and invalidate in one transaction (auto-login)
// - Invalidate: drop an account's token
//
// The token value and expiry live in the account's scratch state; the
// setup_tokens table is only an index from token values to account IDs.
type TokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	validity    time.Duration
}

// NewTokenService constructs a TokenService using repositories and config.
func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger, cfg *config.Config) *TokenService {
	return &TokenService{
		db:          db,
		repomanager: m,
		log:         log,
		validity:    cfg.SetupTokenValidityDuration,
	}
}

// Issue mints a fresh setup token for the account, replacing any previous
// one, and marks the account as requiring both an initial setup and a
// password change. A non-positive validity issues a token with no expiry.
// The new token is returned for delivery out of band.
func (s *TokenService) Issue(ctx context.Context, accountID string) (*scratch.SetupToken, error) {
	value, err := common.MakeRandHexString(setupTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}
	token := &scratch.SetupToken{Value: value}
	if s.validity > 0 {
		expires := time.Now().Add(s.validity)
		token.ExpiresAt = &expires
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		account, err := s.repomanager.Accounts(tx).GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		st := account.ScratchState()
		st.PasswordChangeRequired = true
		st.InitialSetup = true
		st.Token = token

		if err := s.repomanager.Accounts(tx).UpdateScratch(ctx, account.ID, st.Encode()); err != nil {
			return err
		}

		// one token per account: older index rows go first
		if err := s.repomanager.SetupTokens(tx).DeleteForAccount(ctx, account.ID); err != nil {
			return err
		}
		return s.repomanager.SetupTokens(tx).Insert(ctx, value, account.ID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "issued setup token", "account_id", accountID)
	return token, nil
}

// Resolve finds the account a setup token belongs to without consuming it.
// An unknown, mismatched, or expired token yields common.ErrorNotFound; an
// expired token is additionally invalidated so it cannot be retried.
func (s *TokenService) Resolve(ctx context.Context, tokenValue string) (*models.Account, error) {
	if tokenValue == "" {
		return nil, common.ErrorNotFound
	}

	accountID, err := s.repomanager.SetupTokens(s.db).FindAccountID(ctx, tokenValue)
	if err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// the account is gone; the index row is noise
			s.dropIndexRow(ctx, tokenValue)
			return nil, common.ErrorNotFound
		}
		return nil, err
	}

	st := account.ScratchState()
	if st.Token == nil || st.Token.Value != tokenValue {
		// stale index row pointing at a token the account no longer holds
		s.dropIndexRow(ctx, tokenValue)
		return nil, common.ErrorNotFound
	}

	if st.Token.Expired(time.Now()) {
		if err := s.Invalidate(ctx, account.ID); err != nil {
			s.log.Warn(ctx, "failed to invalidate expired setup token", "account_id", account.ID, "error", err)
		}
		return nil, common.ErrorNotFound
	}

	return account, nil
}

// Consume resolves a setup token and removes it in a single transaction, so
// the token is single-use even under concurrent logins. The password-change
// flags stay set until the account actually changes its password.
func (s *TokenService) Consume(ctx context.Context, tokenValue string) (*models.Account, error) {
	if tokenValue == "" {
		return nil, common.ErrorNotFound
	}

	var account *models.Account
	var expired, stale bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		accountID, err := s.repomanager.SetupTokens(tx).FindAccountID(ctx, tokenValue)
		if err != nil {
			return err
		}

		account, err = s.repomanager.Accounts(tx).GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		st := account.ScratchState()
		if st.Token == nil || st.Token.Value != tokenValue {
			stale = true
			return common.ErrorNotFound
		}
		expired = st.Token.Expired(time.Now())

		st.Token = nil
		encoded := st.Encode()
		if err := s.repomanager.Accounts(tx).UpdateScratch(ctx, account.ID, encoded); err != nil {
			return err
		}
		account.Scratch = encoded

		return s.repomanager.SetupTokens(tx).DeleteForAccount(ctx, account.ID)
	})
	if err != nil {
		if stale {
			// the rollback kept the stale row; clean it up outside the tx
			s.dropIndexRow(ctx, tokenValue)
		}
		return nil, err
	}
	if expired {
		// the cleanup above still commits: an expired token is gone for good
		return nil, common.ErrorNotFound
	}

	s.log.Info(ctx, "consumed setup token", "account_id", account.ID)
	return account, nil
}

// Invalidate removes the account's setup token, if any, along with its index
// rows. It is idempotent: a missing account or an account without a token is
// not an error.
func (s *TokenService) Invalidate(ctx context.Context, accountID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		account, err := s.repomanager.Accounts(tx).GetByIDForUpdate(ctx, accountID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		}

		st := account.ScratchState()
		if st.Token != nil {
			st.Token = nil
			if err := s.repomanager.Accounts(tx).UpdateScratch(ctx, account.ID, st.Encode()); err != nil {
				return err
			}
		}

		return s.repomanager.SetupTokens(tx).DeleteForAccount(ctx, account.ID)
	})
}

// dropIndexRow deletes a stale setup_tokens row. Failures only cost a wasted
// lookup next time, so they are logged and swallowed.
func (s *TokenService) dropIndexRow(ctx context.Context, tokenValue string) {
	if err := s.repomanager.SetupTokens(s.db).Delete(ctx, tokenValue); err != nil {
		s.log.Warn(ctx, "failed to delete stale setup token index row", "error", err)
	}
}
