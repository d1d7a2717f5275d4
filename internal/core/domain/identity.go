package domain

import "strings"

// Role is the closed set of account roles issued by the auth service.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleAgent Role = "agent"
)

// Roles lists every recognised role in display order.
var Roles = []Role{RoleAdmin, RoleStaff, RoleAgent}

// Known reports whether r belongs to the closed role set.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleAgent:
		return true
	}
	return false
}

// Identity is the authenticated principal as held by the portal.
// It only lives in memory and is dropped on logout or on a failed check.
type Identity struct {
	ID          int64  `json:"id"`
	Username    string `json:"username,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
	Role        Role   `json:"account_role,omitempty"`
	AgencyID    *int64 `json:"agency_id,omitempty"`
}

// DisplayName returns the full name, falling back to the username.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if name := strings.TrimSpace(i.FullName); name != "" {
		return name
	}
	return i.Username
}

// Clone returns a deep copy so callers can't mutate shared state.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	if i.AgencyID != nil {
		id := *i.AgencyID
		c.AgencyID = &id
	}
	return &c
}
