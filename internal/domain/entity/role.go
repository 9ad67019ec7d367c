// Package entity contains the core business objects of the project.
package entity

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Names of the roles every deployment must carry. They are seeded at
// startup and flagged system-defined so they can never be deleted.
const (
	RoleGuest = "GUEST"
	RoleAdmin = "ADMIN"
)

// Role is a named permission grouping. Names are case-normalized to
// upper so "admin" and "ADMIN" are the same role.
type Role struct {
	ID            uuid.UUID
	Name          string
	SystemDefined bool
	Deleted       bool
	CreatedAt     time.Time
}

// NormalizeRoleName upper-cases and trims a role name. All lookups and
// writes go through this so the uniqueness constraint sees one casing.
func NormalizeRoleName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a role with the given name.
func (rs Roles) Contains(name string) bool {
	name = NormalizeRoleName(name)

	return slices.ContainsFunc(rs, func(r Role) bool { return r.Name == name })
}

// Names converts Roles to a sorted []string for token claims and responses.
func (rs Roles) Names() []string {
	result := make([]string, len(rs))
	for i, r := range rs {
		result[i] = r.Name
	}
	slices.Sort(result)

	return result
}

// Primary returns the lexicographically first role name, or the given
// fallback when the user has no roles. Several responses surface a single
// "role" field; sorting makes that field deterministic instead of
// depending on iteration order.
func (rs Roles) Primary(fallback string) string {
	if len(rs) == 0 {
		return fallback
	}
	names := rs.Names()

	return names[0]
}
