package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/fairmanage/tenantportal/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	accountID := "account-123"

	tok, err := GenerateSessionToken(accountID, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}

	got, err := AccountIDFromToken(tok, secret)
	if err != nil {
		t.Fatalf("AccountIDFromToken error: %v", err)
	}
	if got != accountID {
		t.Fatalf("accountID mismatch: got %q want %q", got, accountID)
	}
}

func TestGenerateSessionToken_UniquePerCall(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	a, err := GenerateSessionToken("a-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}
	b, err := GenerateSessionToken("a-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct tokens for separate calls")
	}
}

func TestAccountIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateSessionToken("a-1", secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}

	_, err = AccountIDFromToken(tok, secret)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestAccountIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateSessionToken("a-2", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}

	_, err = AccountIDFromToken(tok, []byte("wrong-secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestAccountIDFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := AccountIDFromToken("not.a.jwt", []byte("k"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}
