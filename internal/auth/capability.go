package auth

import (
	"errors"
	"strconv"
	"time"

	"hotelbook/internal/models"
)

// ErrForbidden is returned when an admin operation gets no valid capability.
var ErrForbidden = errors.New("admin capability required")

// AdminCapability proves that the holder authenticated as an admin. It can
// only be obtained from verified token claims; the zero value grants nothing.
type AdminCapability struct {
	adminID   int64
	username  string
	tokenID   string
	expiresAt time.Time
}

// Grant turns verified claims into a capability.
func Grant(claims *Claims) AdminCapability {
	if claims == nil {
		return AdminCapability{}
	}
	id, _ := strconv.ParseInt(claims.Subject, 10, 64)
	c := AdminCapability{
		adminID:  id,
		username: claims.Username,
		tokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		c.expiresAt = claims.ExpiresAt.Time
	}
	return c
}

func (c AdminCapability) AdminID() int64       { return c.adminID }
func (c AdminCapability) Username() string     { return c.username }
func (c AdminCapability) TokenID() string      { return c.tokenID }
func (c AdminCapability) ExpiresAt() time.Time { return c.expiresAt }

// Check returns ErrForbidden unless the capability is populated and unexpired.
func (c AdminCapability) Check() error {
	if c.adminID == 0 || c.tokenID == "" {
		return ErrForbidden
	}
	if !c.expiresAt.IsZero() && time.Now().After(c.expiresAt) {
		return ErrForbidden
	}
	return nil
}

// LoginResult is handed to an admin after a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Admin     *models.Admin
}
