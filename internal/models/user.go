package models

import (
	"time"
)

// User represents a portal account. Customers authenticate with an emailed
// one-time code; back-office admins additionally hold a password hash.
type User struct {
	BaseModel
	Phone        string     `gorm:"uniqueIndex" json:"phone"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	CompanyName  string     `json:"company_name"`
	Address      string     `json:"address"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"is_admin"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	Orders       []Order    `json:"orders,omitempty"`
}

// Sanitized returns the user fields safe to hand to clients.
func (u *User) Sanitized() map[string]interface{} {
	return map[string]interface{}{
		"id":           u.ID,
		"phone":        u.Phone,
		"name":         u.Name,
		"email":        u.Email,
		"company_name": u.CompanyName,
		"address":      u.Address,
		"is_admin":     u.IsAdmin,
	}
}

// Verification code types.
const (
	CodeTypeLogin  = "login"
	CodeTypeSignup = "signup"
)

// VerificationCode is a one-time code emailed during login or signup. The
// table may hold stale rows for a phone; lookups always match the exact
// {phone, code, type} triple and check expiry explicitly, and consumption
// deletes every matching row.
type VerificationCode struct {
	BaseModel
	Phone     string    `gorm:"index" json:"phone"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`

	// Signup context, carried until the account is created.
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
}
