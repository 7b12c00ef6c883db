// Package model defines the data structures shared by the stores, the query
// engine and the HTTP layer.
//
// The `json:"..."` tags are the persisted wire format as well as the API
// format: every collection is written to the key/value medium as a JSON array
// of these structs, so renaming a tag is a storage migration.
package model

import "time"

// Role gates the admin-only views. It is the only authorization concept in
// the system.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AuthenticatedUser is the identity held by the session store.
//
// There is at most one per session store. It is created by a successful login
// (admin credential check or an external identity assertion) and destroyed by
// logout.
type AuthenticatedUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"` // optional avatar URL
	Role    Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (u AuthenticatedUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserStatus is the moderation state of a directory entry. Any status is
// reachable from any other.
type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserBlocked UserStatus = "blocked"
	UserOnHold  UserStatus = "on-hold"
)

// PlatformUser is a directory entry, tracked independently of any single
// login session.
//
// Email is the identity used to reconcile login events with existing entries
// and is compared case-sensitively. JoinedDate never changes once set.
type PlatformUser struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Role             Role       `json:"role"`
	Status           UserStatus `json:"status"`
	LastActive       time.Time  `json:"lastActive"`
	JoinedDate       time.Time  `json:"joinedDate"`
	TotalInvestments float64    `json:"totalInvestments"`
}

// UserDraft is the input of an administrative add: every field except the
// ones the directory assigns (ID, JoinedDate).
type UserDraft struct {
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Role             Role       `json:"role"`
	Status           UserStatus `json:"status"`
	LastActive       time.Time  `json:"lastActive"`
	TotalInvestments float64    `json:"totalInvestments"`
}

// UserPatch is a partial update. Nil fields are left untouched.
type UserPatch struct {
	Name             *string     `json:"name,omitempty"`
	Email            *string     `json:"email,omitempty"`
	Role             *Role       `json:"role,omitempty"`
	Status           *UserStatus `json:"status,omitempty"`
	LastActive       *time.Time  `json:"lastActive,omitempty"`
	TotalInvestments *float64    `json:"totalInvestments,omitempty"`
}

// Apply merges the non-nil fields of p into u.
func (p UserPatch) Apply(u *PlatformUser) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.LastActive != nil {
		u.LastActive = *p.LastActive
	}
	if p.TotalInvestments != nil {
		u.TotalInvestments = *p.TotalInvestments
	}
}

// UserStats counts directory entries by moderation status.
type UserStats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Blocked int `json:"blocked"`
	OnHold  int `json:"onHold"`
}
