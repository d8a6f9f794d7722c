package metadata

// UserContext represents the authenticated operator, set by auth middleware.
type UserContext struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// HasRole checks whether the user has a specific role.
func (u *UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin checks whether the user has the admin role.
func (u *UserContext) IsAdmin() bool {
	return u.HasRole("admin")
}

// CanWrite checks whether the user may create, change or delete records.
func (u *UserContext) CanWrite() bool {
	return u.IsAdmin() || u.HasRole("editor")
}
