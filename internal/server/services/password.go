package services

import (
	"context"
	"database/sql"
	"errors"
	"unicode/utf8"

	"github.com/fairmanage/tenantportal/internal/common"
	"github.com/fairmanage/tenantportal/internal/dbx"
	"github.com/fairmanage/tenantportal/internal/logging"
	"github.com/fairmanage/tenantportal/internal/server/config"
	"github.com/fairmanage/tenantportal/internal/server/models"
	"github.com/fairmanage/tenantportal/internal/server/repositories/repomanager"
)

// CredentialStore verifies and replaces account passwords. The portal never
// touches digests directly; the store owns the hashing scheme.
type CredentialStore interface {
	Verify(ctx context.Context, account *models.Account, plaintext string) bool
	Set(ctx context.Context, db dbx.DBTX, account *models.Account, plaintext, confirmation string) error
}

// PasswordService runs the forced password-change workflow: validate the
// submitted passwords, verify the current one where it applies, swap the
// credential, clear the account's pending-change state, and move the account
// into its resident group.
type PasswordService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	creds         CredentialStore
	log           logging.Logger
	minLength     int
	activeGroup   string
	fallbackGroup string
}

// NewPasswordService constructs a PasswordService using repositories,
// a credential store, and server config.
func NewPasswordService(db *sql.DB, m repomanager.RepositoryManager, creds CredentialStore, log logging.Logger, cfg *config.Config) *PasswordService {
	return &PasswordService{
		db:            db,
		repomanager:   m,
		creds:         creds,
		log:           log,
		minLength:     cfg.MinPasswordLength,
		activeGroup:   cfg.ActiveGroupName,
		fallbackGroup: cfg.FallbackGroupName,
	}
}

// ChangePassword validates and applies a password change for the account.
//
// Validation order is fixed: blank, then mismatch, then length, then current
// password. The current password is only checked for accounts that have had
// a self-chosen password before; during initial setup there is nothing to
// verify against.
//
// On success the pending-change flags and any setup token are cleared in the
// same transaction as the credential swap, and the account is moved into the
// active group (or the fallback group when the active one does not exist).
func (s *PasswordService) ChangePassword(ctx context.Context, accountID, current, password, confirmation string) error {
	if password == "" {
		return common.ErrPasswordBlank
	}
	if password != confirmation {
		return common.ErrPasswordMismatch
	}
	if utf8.RuneCountInString(password) < s.minLength {
		return common.ErrPasswordTooShort
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		account, err := s.repomanager.Accounts(tx).GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		if !account.IsInitialSetup() && !s.creds.Verify(ctx, account, current) {
			return common.ErrInvalidCurrentPassword
		}

		st := account.ScratchState()
		st.PasswordChangeRequired = false
		st.InitialSetup = false
		st.Token = nil
		encoded := st.Encode()
		if err := s.repomanager.Accounts(tx).UpdateScratch(ctx, account.ID, encoded); err != nil {
			return err
		}
		account.Scratch = encoded

		if err := s.repomanager.SetupTokens(tx).DeleteForAccount(ctx, account.ID); err != nil {
			return err
		}

		if err := s.creds.Set(ctx, tx, account, password, confirmation); err != nil {
			return err
		}

		return s.moveToResidentGroup(ctx, tx, account)
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound),
			errors.Is(err, common.ErrInvalidCurrentPassword):
			return err
		default:
			s.log.Error(ctx, "password change failed", "account_id", accountID, "error", err)
			return common.ErrPasswordUpdateFailed
		}
	}

	s.log.Info(ctx, "password changed", "account_id", accountID)
	return nil
}

// moveToResidentGroup replaces the account's group membership with the
// active group, falling back to the fallback group. When neither group
// exists the move is skipped with a warning; a half-provisioned directory
// must not block the password change itself.
func (s *PasswordService) moveToResidentGroup(ctx context.Context, tx dbx.DBTX, account *models.Account) error {
	repo := s.repomanager.Groups(tx)

	group, err := repo.GetByName(ctx, s.activeGroup)
	if errors.Is(err, common.ErrorNotFound) {
		group, err = repo.GetByName(ctx, s.fallbackGroup)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "no resident group to move account into",
				"account_id", account.ID, "active_group", s.activeGroup, "fallback_group", s.fallbackGroup)
			return nil
		}
		return err
	}

	if err := repo.ReplaceMembership(ctx, account.ID, group.ID); err != nil {
		return err
	}

	s.log.Info(ctx, "moved account to resident group", "login", account.Login, "group", group.Name)
	return nil
}
