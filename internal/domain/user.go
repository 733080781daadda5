package domain

// User is an authenticated caller as known to the user directory.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Permission is a coarse capability granted to a user.
type Permission string

const (
	PermissionAdmin Permission = "admin"
	PermissionUser  Permission = "user"
)

// Profile combines a user with the permissions it holds.
type Profile struct {
	User        User         `json:"user"`
	Permissions []Permission `json:"permissions"`
}

// Has reports whether the profile holds permission p.
func (p Profile) Has(perm Permission) bool {
	for _, held := range p.Permissions {
		if held == perm {
			return true
		}
	}

	return false
}
