package enums

import "fmt"

// UserRole maps to the user_role_enum enum in Postgres.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
	UserRoleCashier UserRole = "cashier"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleManager,
	UserRoleCashier,
}

// IsValid reports whether the value matches the canonical user role enum.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// AtLeast reports whether the role carries the privileges of the required role.
// Ordering: cashier < manager < admin.
func (r UserRole) AtLeast(required UserRole) bool {
	return roleRank(r) >= roleRank(required)
}

func roleRank(r UserRole) int {
	switch r {
	case UserRoleAdmin:
		return 3
	case UserRoleManager:
		return 2
	case UserRoleCashier:
		return 1
	default:
		return 0
	}
}
