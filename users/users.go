package users

// RoleType represents the role the gateway assigns to an account.
type RoleType string

const (
	RoleUser   RoleType = "ROLE_USER"   // Regular storefront customer
	RoleSeller RoleType = "ROLE_SELLER" // Can manage products through the seller portal
	RoleAdmin  RoleType = "ROLE_ADMIN"  // Platform administrator
)

// User is the profile the identity service returns for a verified token.
// It carries only the client-visible fields; credentials never leave the backend.
type User struct {
	ID        string   `json:"id,omitempty"`        // Unique identifier for the user
	FirstName string   `json:"firstName,omitempty"` // First name of the user
	LastName  string   `json:"lastName,omitempty"`  // Last name of the user
	Email     string   `json:"email,omitempty"`     // User's email address
	Role      RoleType `json:"role,omitempty"`      // Account role assigned by the gateway
}

// FullName joins the first and last name for display.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsSeller returns true if the user may use the seller portal.
func (u *User) IsSeller() bool {
	return u.Role == RoleSeller || u.Role == RoleAdmin
}

// IsAdmin returns true if the user has platform admin privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
