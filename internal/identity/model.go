package identity

import "time"

// User roles.
const (
	RoleUser     = "user"
	RoleProvider = "provider"
)

// KYC statuses.
const (
	KYCNone     = "none"
	KYCPending  = "pending"
	KYCVerified = "verified"
)

// User represents a registered app user identified by phone number.
type User struct {
	ID           string
	Phone        string
	Name         string
	Village      string
	Role         string
	KYCStatus    string
	OTPHash      []byte
	OTPExpiresAt time.Time
	TokenVersion int
	CreatedAt    time.Time
	LastLogin    time.Time
}
