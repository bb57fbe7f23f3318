package model

import (
	"time"
)

// UserRole represents the access level of a dashboard user.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User represents a dashboard user account.
type User struct {
	ID             string
	Email          string
	Name           string
	Role           UserRole
	Active         bool
	DailyPageLimit int
	DailyPageUsed  int
	CreatedAt      time.Time
}

// EntityID returns the cache identity of the user.
func (u User) EntityID() string { return u.ID }
