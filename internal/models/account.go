// Package models defines the records persisted by the registry: accounts,
// their stored credentials, and vehicles with their approval status.
package models

import (
	"strings"
	"time"
)

// Role is the access level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account is a registered identity as seen by callers. It never carries
// credential material.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether the account may browse and verify all vehicles.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// StoredAccount is the persisted form of an account. PasswordHash is a PHC
// encoded Argon2id string.
type StoredAccount struct {
	Account
	PasswordHash string `json:"passwordHash"`
}

// MatchesEmail compares emails case-insensitively.
func (s StoredAccount) MatchesEmail(email string) bool {
	return strings.EqualFold(s.Email, email)
}
