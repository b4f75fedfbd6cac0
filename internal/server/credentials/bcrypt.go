// Package credentials stores and verifies account passwords as bcrypt
// digests.
package credentials

import (
	"context"

	"github.com/fairmanage/tenantportal/internal/common"
	"github.com/fairmanage/tenantportal/internal/dbx"
	"github.com/fairmanage/tenantportal/internal/server/models"
	"github.com/fairmanage/tenantportal/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// BcryptStore hashes passwords with bcrypt and persists the digest through
// the accounts repository.
type BcryptStore struct {
	rm   repomanager.RepositoryManager
	cost int
}

// NewBcryptStore constructs a BcryptStore with the default bcrypt cost.
func NewBcryptStore(rm repomanager.RepositoryManager) *BcryptStore {
	return &BcryptStore{rm: rm, cost: bcrypt.DefaultCost}
}

// Verify reports whether plaintext matches the account's stored digest.
func (s *BcryptStore) Verify(ctx context.Context, account *models.Account, plaintext string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(account.PasswordDigest), []byte(plaintext))
	return err == nil
}

// Set hashes plaintext and persists the new digest for the account. The
// confirmation is checked again here so a store used outside the workflow
// cannot silently accept a mistyped password.
func (s *BcryptStore) Set(ctx context.Context, db dbx.DBTX, account *models.Account, plaintext, confirmation string) error {
	if plaintext != confirmation {
		return common.ErrConfirmationMismatch
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return err
	}

	if err := s.rm.Accounts(db).UpdatePasswordDigest(ctx, account.ID, string(digest)); err != nil {
		return err
	}

	account.PasswordDigest = string(digest)
	return nil
}
