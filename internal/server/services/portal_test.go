package services

import (
	"context"
	"errors"
	"testing"

	"github.com/fairmanage/tenantportal/internal/common"
	"github.com/fairmanage/tenantportal/internal/server/config"
	"github.com/fairmanage/tenantportal/internal/server/models"
	"github.com/fairmanage/tenantportal/internal/server/scratch"
)

type fakeSession struct {
	loggedIn bool
	account  *models.Account
}

func (f *fakeSession) IsLoggedIn() bool                { return f.loggedIn }
func (f *fakeSession) CurrentAccount() *models.Account { return f.account }

type fakeTokenConsumer struct {
	account *models.Account
	err     error

	consumed []string
}

func (f *fakeTokenConsumer) Consume(ctx context.Context, tokenValue string) (*models.Account, error) {
	f.consumed = append(f.consumed, tokenValue)
	if f.err != nil {
		return nil, f.err
	}
	return f.account, nil
}

type fakePasswordChanger struct {
	err error

	calls int
}

func (f *fakePasswordChanger) ChangePassword(ctx context.Context, accountID, current, password, confirmation string) error {
	f.calls++
	return f.err
}

type fakeSessionStarter struct {
	token string
	err   error
}

func (f *fakeSessionStarter) Establish(ctx context.Context, account *models.Account) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func newPortal(tokens *fakeTokenConsumer, passwords *fakePasswordChanger, sessions *fakeSessionStarter) *Portal {
	cfg := &config.Config{MainPortalURL: "/portal/fairmanage/"}
	return NewPortal(tokens, passwords, sessions, testLogger(), cfg)
}

func pendingChangeAccount() *models.Account {
	st := scratch.State{PasswordChangeRequired: true}
	return &models.Account{ID: "a-1", Login: "alice", Scratch: st.Encode()}
}

func TestIndex_AnonymousGetsLoginView(t *testing.T) {
	p := newPortal(&fakeTokenConsumer{}, &fakePasswordChanger{}, &fakeSessionStarter{})

	out := p.Index(context.Background(), &fakeSession{loggedIn: false})
	if out.Template != TemplateLogin {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestIndex_PendingChangeGetsForm(t *testing.T) {
	p := newPortal(&fakeTokenConsumer{}, &fakePasswordChanger{}, &fakeSessionStarter{})

	out := p.Index(context.Background(), &fakeSession{loggedIn: true, account: pendingChangeAccount()})
	if out.Template != TemplateChangeForm {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestIndex_SettledAccountGoesToPortal(t *testing.T) {
	p := newPortal(&fakeTokenConsumer{}, &fakePasswordChanger{}, &fakeSessionStarter{})

	out := p.Index(context.Background(), &fakeSession{loggedIn: true, account: &models.Account{ID: "a-1"}})
	if out.Redirect != "/portal/fairmanage/" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestAccountSetup_Success(t *testing.T) {
	tokens := &fakeTokenConsumer{account: pendingChangeAccount()}
	sessions := &fakeSessionStarter{token: "session-jwt"}
	p := newPortal(tokens, &fakePasswordChanger{}, sessions)

	out := p.AccountSetup(context.Background(), "T2")
	if out.Redirect != RouteIndex {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.Notice != CodeAutoLoginSuccessful {
		t.Fatalf("unexpected notice: %q", out.Notice)
	}
	if out.SessionToken != "session-jwt" {
		t.Fatalf("unexpected session token: %q", out.SessionToken)
	}
	if len(tokens.consumed) != 1 || tokens.consumed[0] != "T2" {
		t.Fatalf("token not consumed: %v", tokens.consumed)
	}
}

func TestAccountSetup_MissingToken(t *testing.T) {
	tokens := &fakeTokenConsumer{}
	p := newPortal(tokens, &fakePasswordChanger{}, &fakeSessionStarter{})

	out := p.AccountSetup(context.Background(), "")
	if out.Template != TemplateLogin || out.Error != CodeInvalidOrMissingToken {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(tokens.consumed) != 0 {
		t.Fatal("nothing to consume without a token")
	}
}

func TestAccountSetup_UnknownOrExpiredToken(t *testing.T) {
	p := newPortal(&fakeTokenConsumer{err: common.ErrorNotFound}, &fakePasswordChanger{}, &fakeSessionStarter{})

	out := p.AccountSetup(context.Background(), "nope")
	if out.Template != TemplateLogin || out.Error != CodeInvalidOrExpiredToken {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestAccountSetup_SessionFailure(t *testing.T) {
	p := newPortal(
		&fakeTokenConsumer{account: pendingChangeAccount()},
		&fakePasswordChanger{},
		&fakeSessionStarter{err: errors.New("signing failed")},
	)

	out := p.AccountSetup(context.Background(), "T2")
	if out.Template != TemplateLogin || out.Error != CodeInvalidOrExpiredToken {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.SessionToken != "" {
		t.Fatal("no session token on failure")
	}
}

func TestChangePassword_AnonymousIsSilentNoop(t *testing.T) {
	passwords := &fakePasswordChanger{}
	p := newPortal(&fakeTokenConsumer{}, passwords, &fakeSessionStarter{})

	out := p.ChangePassword(context.Background(), &fakeSession{loggedIn: false}, "old", "new-password-1", "new-password-1")
	if out.Redirect != RouteIndex || out.Error != "" || out.Notice != "" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if passwords.calls != 0 {
		t.Fatal("workflow must not run for anonymous callers")
	}
}

func TestChangePassword_Success(t *testing.T) {
	passwords := &fakePasswordChanger{}
	p := newPortal(&fakeTokenConsumer{}, passwords, &fakeSessionStarter{})
	session := &fakeSession{loggedIn: true, account: pendingChangeAccount()}

	out := p.ChangePassword(context.Background(), session, "old", "new-password-1", "new-password-1")
	if out.Redirect != "/portal/fairmanage/" || out.Notice != CodePasswordChangedSuccessfully {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if passwords.calls != 1 {
		t.Fatalf("expected one workflow call, got %d", passwords.calls)
	}
}

func TestChangePassword_ErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"blank", common.ErrPasswordBlank, CodePasswordCannotBeBlank},
		{"mismatch", common.ErrPasswordMismatch, CodePasswordsDoNotMatch},
		{"too short", common.ErrPasswordTooShort, CodePasswordTooShort},
		{"wrong current", common.ErrInvalidCurrentPassword, CodeInvalidCurrentPassword},
		{"update failed", common.ErrPasswordUpdateFailed, CodePasswordUpdateFailed},
		{"anything else", errors.New("boom"), CodePasswordUpdateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPortal(&fakeTokenConsumer{}, &fakePasswordChanger{err: tt.err}, &fakeSessionStarter{})
			session := &fakeSession{loggedIn: true, account: pendingChangeAccount()}

			out := p.ChangePassword(context.Background(), session, "old", "new-password-1", "new-password-1")
			if out.Template != TemplateChangeForm {
				t.Fatalf("errors must re-render the form, got %+v", out)
			}
			if out.Error != tt.want {
				t.Fatalf("got %q, want %q", out.Error, tt.want)
			}
		})
	}
}
