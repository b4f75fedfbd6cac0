package models

// Group is a named tenant group. Membership is stored in the account_groups
// join table; the portal only ever replaces an account's whole membership.
type Group struct {
	ID   string
	Name string
}
