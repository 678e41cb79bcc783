package users

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Role represents a dashboard user's role. The set is closed at compile
// time; values arriving from the backend that are not in the set parse to
// RoleUnknown rather than erroring, so a newer backend taxonomy degrades
// to the default landing route instead of breaking login.
type Role string

const (
	RolePlatformAdmin Role = "platform_admin" // Manages every tenant on the platform
	RoleBusinessAdmin Role = "business_admin" // Owns a single business tenant
	RoleManager       Role = "manager"        // Runs one store within a tenant
	RoleSalesTeam     Role = "sales_team"     // Field sales representative
	RoleInhouseSales  Role = "inhouse_sales"  // In-house sales, routed with sales_team
	RoleMarketing     Role = "marketing"
	RoleTeleCalling   Role = "tele_calling"
	RoleUnknown       Role = ""
)

// ParseRole maps a backend role string onto the closed Role set.
// Unrecognized values yield RoleUnknown; parsing never fails.
func ParseRole(s string) Role {
	switch Role(s) {
	case RolePlatformAdmin, RoleBusinessAdmin, RoleManager,
		RoleSalesTeam, RoleInhouseSales, RoleMarketing, RoleTeleCalling:
		return Role(s)
	}
	return RoleUnknown
}

// Known reports whether the role is one of the compiled-in values.
func (r Role) Known() bool {
	return r != RoleUnknown
}

// User is the identity snapshot captured at the last successful login.
// It carries no credentials; tokens live on the session, not here.
type User struct {
	ID        string `json:"id,omitempty"`         // Unique identifier for the user
	Username  string `json:"username,omitempty"`   // Unique username
	Email     string `json:"email,omitempty"`      // User's email address
	FirstName string `json:"first_name,omitempty"` // First name of the user
	LastName  string `json:"last_name,omitempty"`  // Last name of the user
	Role      Role   `json:"role,omitempty"`       // Dashboard role, drives routing
	Active    bool   `json:"is_active,omitempty"`  // Active, false once the account is disabled
	StoreID   string `json:"store,omitempty"`      // Store / tenant the user belongs to
}

// DisplayName returns the name shown in the dashboard header.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
