package user

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	Name string
	Role Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// User is a registered account. Team is empty until the user creates or joins one.
type User struct {
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Team         string
	CreatedAt    time.Time
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("username is required")
	}
	switch u.Role {
	case RoleUser, RoleAdmin:
	default:
		return fmt.Errorf("invalid role %q", u.Role)
	}

	return nil
}

func (u User) Principal() Principal {
	return Principal{Name: u.Username, Role: u.Role}
}
