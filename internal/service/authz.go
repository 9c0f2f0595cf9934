package service

import "github.com/google/uuid"

// Caller is the identity attached to the current request: the session's user
// ID plus the admin flag, or a zero Caller for anonymous visitors.
type Caller struct {
	UserID  *uuid.UUID
	IsAdmin bool
}

func (c Caller) IsAuthenticated() bool {
	return c.UserID != nil
}

// CanEdit reports whether the caller may edit a message owned by ownerID.
// Editing requires strict ownership: admins get no override here, unlike
// deletion. Anonymous messages (nil owner) cannot be edited by anyone.
func (c Caller) CanEdit(ownerID *uuid.UUID) bool {
	if !c.IsAuthenticated() || ownerID == nil {
		return false
	}
	return *c.UserID == *ownerID
}

// CanDelete reports whether the caller may delete a message owned by ownerID.
// The author may delete their own message; an admin may delete any message.
func (c Caller) CanDelete(ownerID *uuid.UUID) bool {
	if !c.IsAuthenticated() {
		return false
	}
	if c.IsAdmin {
		return true
	}
	return ownerID != nil && *c.UserID == *ownerID
}
