package services

import (
	"context"
	"errors"

	"github.com/fairmanage/tenantportal/internal/common"
	"github.com/fairmanage/tenantportal/internal/logging"
	"github.com/fairmanage/tenantportal/internal/server/config"
	"github.com/fairmanage/tenantportal/internal/server/models"
)

// Template names the view a portal outcome should render.
const (
	TemplateChangeForm = "password_change_form"
	TemplateLogin      = "password_change_login"
)

// RouteIndex is the named route of the portal entry point.
const RouteIndex = "index"

// Code is a symbolic notice or error surfaced to the view layer. The view
// maps codes to localized copy; the portal never produces display text.
type Code string

const (
	CodePasswordCannotBeBlank       Code = "password_cannot_be_blank"
	CodePasswordsDoNotMatch         Code = "passwords_do_not_match"
	CodePasswordTooShort            Code = "password_too_short"
	CodeInvalidCurrentPassword      Code = "invalid_current_password"
	CodePasswordUpdateFailed        Code = "password_update_failed"
	CodeInvalidOrMissingToken       Code = "invalid_or_missing_token"
	CodeInvalidOrExpiredToken       Code = "invalid_or_expired_token"
	CodePasswordChangedSuccessfully Code = "password_changed_successfully"
	CodeAutoLoginSuccessful         Code = "auto_login_successful"
)

// Outcome tells the transport layer what to do after a portal operation:
// render a template or follow a redirect, carry at most one notice or error
// code, and optionally install a freshly established session token.
type Outcome struct {
	Template     string
	Redirect     string
	Notice       Code
	Error        Code
	SessionToken string
}

// Session is the portal's view of the inbound request's authentication
// state, supplied by the transport layer.
type Session interface {
	IsLoggedIn() bool
	CurrentAccount() *models.Account
}

// SessionStarter establishes a session for an account that authenticated
// via setup token, returning the token the transport should install.
type SessionStarter interface {
	Establish(ctx context.Context, account *models.Account) (string, error)
}

// TokenConsumer is the slice of TokenService the portal needs.
type TokenConsumer interface {
	Consume(ctx context.Context, tokenValue string) (*models.Account, error)
}

// PasswordChanger is the slice of PasswordService the portal needs.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, accountID, current, password, confirmation string) error
}

// Portal is the transport-free request handler for the forced
// password-change flow. Each method returns an Outcome; rendering,
// redirecting, and session installation are left to the caller.
type Portal struct {
	tokens        TokenConsumer
	passwords     PasswordChanger
	sessions      SessionStarter
	log           logging.Logger
	mainPortalURL string
}

// NewPortal constructs a Portal from its collaborators and server config.
func NewPortal(tokens TokenConsumer, passwords PasswordChanger, sessions SessionStarter, log logging.Logger, cfg *config.Config) *Portal {
	return &Portal{
		tokens:        tokens,
		passwords:     passwords,
		sessions:      sessions,
		log:           log,
		mainPortalURL: cfg.MainPortalURL,
	}
}

// Index picks the view for the portal entry point: the change form for a
// logged-in account that still owes a password change, the main portal for
// one that does not, and the login view for everyone else.
func (p *Portal) Index(ctx context.Context, session Session) Outcome {
	if !session.IsLoggedIn() {
		return Outcome{Template: TemplateLogin}
	}
	if session.CurrentAccount().NeedsPasswordChange() {
		return Outcome{Template: TemplateChangeForm}
	}
	return Outcome{Redirect: p.mainPortalURL}
}

// AccountSetup consumes a setup token and establishes a session for its
// account. The token is spent even when a later step fails; it was a
// single-use credential either way.
func (p *Portal) AccountSetup(ctx context.Context, tokenValue string) Outcome {
	if tokenValue == "" {
		return Outcome{Template: TemplateLogin, Error: CodeInvalidOrMissingToken}
	}

	account, err := p.tokens.Consume(ctx, tokenValue)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			p.log.Error(ctx, "setup token consumption failed", "error", err)
		}
		return Outcome{Template: TemplateLogin, Error: CodeInvalidOrExpiredToken}
	}

	sessionToken, err := p.sessions.Establish(ctx, account)
	if err != nil {
		p.log.Error(ctx, "failed to establish session after auto-login", "account_id", account.ID, "error", err)
		return Outcome{Template: TemplateLogin, Error: CodeInvalidOrExpiredToken}
	}

	return Outcome{
		Redirect:     RouteIndex,
		Notice:       CodeAutoLoginSuccessful,
		SessionToken: sessionToken,
	}
}

// ChangePassword applies a submitted password change for the logged-in
// account. An anonymous submission is silently bounced to the entry point;
// authentication is the transport layer's gate, not a portal error.
func (p *Portal) ChangePassword(ctx context.Context, session Session, current, password, confirmation string) Outcome {
	if !session.IsLoggedIn() {
		return Outcome{Redirect: RouteIndex}
	}
	account := session.CurrentAccount()

	err := p.passwords.ChangePassword(ctx, account.ID, current, password, confirmation)
	if err != nil {
		return Outcome{Template: TemplateChangeForm, Error: changeErrorCode(err)}
	}

	return Outcome{Redirect: p.mainPortalURL, Notice: CodePasswordChangedSuccessfully}
}

func changeErrorCode(err error) Code {
	switch {
	case errors.Is(err, common.ErrPasswordBlank):
		return CodePasswordCannotBeBlank
	case errors.Is(err, common.ErrPasswordMismatch):
		return CodePasswordsDoNotMatch
	case errors.Is(err, common.ErrPasswordTooShort):
		return CodePasswordTooShort
	case errors.Is(err, common.ErrInvalidCurrentPassword):
		return CodeInvalidCurrentPassword
	default:
		return CodePasswordUpdateFailed
	}
}
