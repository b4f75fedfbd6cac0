// Package scratch decodes and encodes the free-form "scratch" attribute on a
// tenant account. The attribute is the persistence medium for the forced
// password-change flow: it either holds a legacy plain-string marker, a YAML
// mapping with flag and token keys, or nothing at all.
//
// Decoding never fails. Malformed content, scalars, and unknown keys all
// degrade to an empty State so that a corrupted scratch value can never take
// the portal down.
package scratch

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	keyPasswordChangeRequired = "password_change_required"
	keyInitialSetup           = "initial_password_setup"
	keyAutoLoginToken         = "auto_login_token"
	keyTokenExpiresAt         = "token_expires_at"
)

// SetupToken is the single-use auto-login token embedded in scratch state.
type SetupToken struct {
	Value string

	// ExpiresAt is nil when the token never expires.
	ExpiresAt *time.Time

	// rawExpiry preserves an unparseable stored expiry verbatim so that
	// re-encoding does not silently turn it into "never expires". A token
	// with an unparseable expiry is always treated as expired.
	rawExpiry string
}

// Expired reports whether the token is no longer valid at the given time.
// An absent expiry means valid forever; an unparseable one means expired.
func (t *SetupToken) Expired(now time.Time) bool {
	if t.rawExpiry != "" {
		return true
	}
	if t.ExpiresAt == nil {
		return false
	}
	return now.After(*t.ExpiresAt)
}

// State is the decoded scratch attribute. The legacy plain-marker format and
// the structured mapping format both migrate onto this one struct at decode
// time, so callers never deal with raw keys.
type State struct {
	PasswordChangeRequired bool
	InitialSetup           bool
	Token                  *SetupToken
}

// Empty reports whether the state carries no flags and no token. An empty
// state is persisted as NULL, never as an empty mapping.
func (s State) Empty() bool {
	return !s.PasswordChangeRequired && !s.InitialSetup && s.Token == nil
}

// NeedsPasswordChange reports whether the account must change its password.
func (s State) NeedsPasswordChange() bool {
	return s.PasswordChangeRequired
}

// IsInitialSetup reports whether the account has never had a self-chosen
// password. A present auto-login token implies initial setup: old-password
// verification is meaningless before any password exists.
func (s State) IsInitialSetup() bool {
	return s.InitialSetup || s.Token != nil
}

// Decode parses a raw scratch value into a State. It never fails.
//
// The legacy markers are recognized by substring before any parse is
// attempted, so accounts provisioned with plain marker strings keep working
// even when the value is not a valid mapping.
func Decode(raw *string) State {
	var st State
	if raw == nil {
		return st
	}

	text := strings.TrimSpace(*raw)
	if text == "" {
		return st
	}

	if strings.Contains(text, keyPasswordChangeRequired) {
		st.PasswordChangeRequired = true
	}
	if strings.Contains(text, keyInitialSetup) {
		st.InitialSetup = true
	}

	var doc any
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return st
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return st
	}

	if v, found := lookup(m, keyPasswordChangeRequired); found && truthy(v) {
		st.PasswordChangeRequired = true
	}
	if v, found := lookup(m, keyInitialSetup); found && truthy(v) {
		st.InitialSetup = true
	}

	if v, found := lookup(m, keyAutoLoginToken); found {
		if value := stringValue(v); value != "" {
			token := &SetupToken{Value: value}
			if ev, evFound := lookup(m, keyTokenExpiresAt); evFound {
				token.ExpiresAt, token.rawExpiry = parseExpiry(ev)
			}
			st.Token = token
		}
	}

	return st
}

// Encode serializes the state back into the scratch attribute. It returns nil
// for an empty state, keeping "has no scratch state" cheap to test against
// NULL. Only set flags are written, so Encode∘Decode round-trips.
func (s State) Encode() *string {
	if s.Empty() {
		return nil
	}

	m := map[string]any{}
	if s.PasswordChangeRequired {
		m[keyPasswordChangeRequired] = true
	}
	if s.InitialSetup {
		m[keyInitialSetup] = true
	}
	if s.Token != nil && s.Token.Value != "" {
		m[keyAutoLoginToken] = s.Token.Value
		switch {
		case s.Token.rawExpiry != "":
			m[keyTokenExpiresAt] = s.Token.rawExpiry
		case s.Token.ExpiresAt != nil:
			m[keyTokenExpiresAt] = s.Token.ExpiresAt.UTC().Format(time.RFC3339)
		}
	}

	b, err := yaml.Marshal(m)
	if err != nil {
		// A flat map of scalars cannot fail to marshal; degrade to NULL
		// rather than persisting garbage.
		return nil
	}

	out := strings.TrimSuffix(string(b), "\n")
	return &out
}

// lookup returns the value stored under the plain key or its legacy
// symbol-prefixed alias (":key"), whichever is present first.
func lookup(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	if v, ok := m[":"+key]; ok {
		return v, true
	}
	return nil, false
}

// truthy mirrors the loose semantics of the legacy data: booleans count as
// themselves, empty strings and "false" count as unset, zero numbers count
// as unset, anything else present counts as set.
func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != "" && value != "false"
	case int:
		return value != 0
	case int64:
		return value != 0
	case float64:
		return value != 0
	default:
		return true
	}
}

func stringValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// parseExpiry converts a stored expiry value into a timestamp. It accepts
// RFC3339 strings, YAML timestamps, and integer epoch seconds. A value that
// cannot be parsed is returned verbatim in the second result; the token then
// counts as expired.
func parseExpiry(v any) (*time.Time, string) {
	switch value := v.(type) {
	case nil:
		return nil, ""
	case time.Time:
		return &value, ""
	case string:
		value = strings.TrimSpace(value)
		if value == "" {
			return nil, ""
		}
		if parsed, err := time.Parse(time.RFC3339, value); err == nil {
			return &parsed, ""
		}
		return nil, value
	case int:
		ts := time.Unix(int64(value), 0)
		return &ts, ""
	case int64:
		ts := time.Unix(value, 0)
		return &ts, ""
	case float64:
		ts := time.Unix(int64(value), 0)
		return &ts, ""
	default:
		return nil, fmt.Sprintf("%v", value)
	}
}
