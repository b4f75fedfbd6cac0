// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/fairmanage/tenantportal/internal/server/scratch"
)

// Account is a tenant account as seen by the portal. The credential itself
// is owned by the credential store; the portal only reads the stored digest
// for verification and swaps it on a successful password change.
type Account struct {
	ID             string
	Login          string
	PasswordDigest string

	// Scratch is the free-form side-channel attribute owned by this
	// subsystem. NULL means the account carries no portal state.
	Scratch *string

	CreatedAt time.Time
}

// ScratchState decodes the account's scratch attribute. Never fails.
func (a *Account) ScratchState() scratch.State {
	return scratch.Decode(a.Scratch)
}

// NeedsPasswordChange reports whether the account is still in the forced
// password-change state, in either the legacy or the structured encoding.
func (a *Account) NeedsPasswordChange() bool {
	return a.ScratchState().NeedsPasswordChange()
}

// IsInitialSetup reports whether the account has never had a self-chosen
// password, so old-password verification must be skipped.
func (a *Account) IsInitialSetup() bool {
	return a.ScratchState().IsInitialSetup()
}
