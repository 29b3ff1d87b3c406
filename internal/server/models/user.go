// Package models defines the directory records persisted by the server and
// the identity derived from a verified token.
package models

import "time"

// Role is the coarse permission level of a user.
type Role string

const (
	RoleNormal     Role = "normal"
	RoleManagement Role = "management"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleNormal, RoleManagement, RoleAdmin:
		return true
	}
	return false
}

// Ref is a directory entry reference resolved to its display name.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is a vault account. OUs and Divisions keep assignment order.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	OUs          []Ref     `json:"ous"`
	Divisions    []Ref     `json:"divisions"`
	CreatedAt    time.Time `json:"-"`
}

// DivisionIDs returns the ids of the divisions the user belongs to.
func (u *User) DivisionIDs() []string {
	ids := make([]string, 0, len(u.Divisions))
	for _, d := range u.Divisions {
		ids = append(ids, d.ID)
	}
	return ids
}
