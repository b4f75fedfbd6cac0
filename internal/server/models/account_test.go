package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestAccount_NeedsPasswordChange(t *testing.T) {
	tests := []struct {
		name    string
		scratch *string
		want    bool
	}{
		{"no scratch", nil, false},
		{"blank scratch", strptr(""), false},
		{"legacy marker", strptr("password_change_required"), true},
		{"structured flag", strptr("password_change_required: true"), true},
		{"unrelated content", strptr("note: hello"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{ID: "a-1", Login: "alice", Scratch: tt.scratch}
			assert.Equal(t, tt.want, a.NeedsPasswordChange())
		})
	}
}

func TestAccount_IsInitialSetup(t *testing.T) {
	tests := []struct {
		name    string
		scratch *string
		want    bool
	}{
		{"no scratch", nil, false},
		{"legacy marker", strptr("initial_password_setup"), true},
		{"structured flag", strptr(":initial_password_setup: true"), true},
		{"token implies initial setup", strptr("auto_login_token: tok"), true},
		{"change flag alone is not initial setup", strptr("password_change_required: true"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{ID: "a-1", Login: "alice", Scratch: tt.scratch}
			assert.Equal(t, tt.want, a.IsInitialSetup())
		})
	}
}
