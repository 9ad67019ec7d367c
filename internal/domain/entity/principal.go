package entity

// Principal is the authenticated identity reconstructed from a verified
// access token. It carries only what stateless authorization needs.
type Principal struct {
	UserID   string
	Username string
	Roles    []string
}

// HasRole checks the principal's role set for a normalized role name.
func (p *Principal) HasRole(name string) bool {
	name = NormalizeRoleName(name)
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}

	return false
}

// IsAdmin reports whether the principal carries the administrator role.
func (p *Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}
