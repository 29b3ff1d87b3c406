package models

import "slices"

// Identity is the verified content of an access token. It is produced once
// per request by the token verification middleware and passed by value.
type Identity struct {
	UserID    string
	Username  string
	Role      Role
	Divisions []string
}

// IsZero reports whether no identity is present, e.g. because the token was
// missing, malformed or expired.
func (i Identity) IsZero() bool { return i.UserID == "" }

// InDivision reports whether divisionID is within the identity's own
// division memberships. Role is not considered.
func (i Identity) InDivision(divisionID string) bool {
	return slices.Contains(i.Divisions, divisionID)
}
