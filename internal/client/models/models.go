// Package models holds the vault API payloads as seen by the CLI.
package models

import (
	"fmt"
	"strings"
)

type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	OUs       []Ref  `json:"ous"`
	Divisions []Ref  `json:"divisions"`
}

type Division struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OU             string `json:"ou"`
	CredentialRepo string `json:"credentialRepo,omitempty"`
}

type Credential struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CredentialRepo is the credential list of one division. ID and Name are
// empty when the division has no repo yet.
type CredentialRepo struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Credentials []Credential `json:"credentials"`
}

// CredentialUpdate is one entry of a batch edit. Empty Key or Value keeps
// the stored field.
type CredentialUpdate struct {
	CredentialID string
	Key          string
	Value        string
}

// ParseCredentialUpdate reads "id key=value" as typed in the CLI. Either
// side of "=" may be empty.
func ParseCredentialUpdate(s string) (CredentialUpdate, error) {
	id, kv, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok || id == "" {
		return CredentialUpdate{}, fmt.Errorf("expected \"<id> key=value\", got %q", s)
	}
	key, value, ok := strings.Cut(strings.TrimSpace(kv), "=")
	if !ok {
		return CredentialUpdate{}, fmt.Errorf("expected key=value, got %q", kv)
	}
	return CredentialUpdate{CredentialID: id, Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)}, nil
}

// UpdateResult reports the outcome of one entry of a batch edit.
type UpdateResult struct {
	CredentialID string
	Err          error
}

// Session is what the CLI knows about the logged-in user, read from the
// access token.
type Session struct {
	Username  string
	Role      string
	Divisions []string
}

func (s Session) IsAdmin() bool { return s.Role == "admin" }
