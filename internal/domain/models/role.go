package models

import "fmt"

// Role is the fixed vocabulary of access levels, totally ordered by
// permission breadth: OWNER > ADMIN > EDITOR > VIEWER.
//
// OWNER is a pseudo-role: it is never stored as a membership or grant row,
// it is derived from resource ownership at resolution time.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"

	// RoleNone is the "no access" resolution result.
	RoleNone Role = ""
)

// roleOrdinals encodes the total order as data so Combine is a min-by-ordinal
// rather than nested conditionals.
var roleOrdinals = map[Role]int{
	RoleViewer: 0,
	RoleEditor: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// Valid reports whether r is one of the four concrete roles.
func (r Role) Valid() bool {
	_, ok := roleOrdinals[r]
	return ok
}

// Storable reports whether r may be persisted as a membership or folder
// grant row. OWNER is derived, never stored.
func (r Role) Storable() bool {
	return r.Valid() && r != RoleOwner
}

// Ordinal returns r's position in the total order (VIEWER=0 .. OWNER=3).
// RoleNone and unknown values sort below every concrete role.
func (r Role) Ordinal() int {
	if ord, ok := roleOrdinals[r]; ok {
		return ord
	}
	return -1
}

// AtLeast reports whether r grants everything other does.
func (r Role) AtLeast(other Role) bool {
	return r.Valid() && other.Valid() && r.Ordinal() >= other.Ordinal()
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a stored string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return RoleNone, fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

// CombineRoles returns the more restrictive of two roles. It is commutative
// and idempotent; combining anything with RoleNone yields RoleNone, since a
// missing prerequisite can never be widened by a grant.
func CombineRoles(a, b Role) Role {
	if !a.Valid() || !b.Valid() {
		return RoleNone
	}
	if a.Ordinal() <= b.Ordinal() {
		return a
	}
	return b
}
