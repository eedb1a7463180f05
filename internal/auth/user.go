package auth

import (
	"errors"
	"time"
)

// Role is a closed enumeration. The string form only exists at the JSON and
// JWT boundary.
type Role int

const (
	RoleMinor Role = iota
	RoleAdult
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	switch s {
	case "minor":
		return RoleMinor, nil
	case "adult":
		return RoleAdult, nil
	}
	return 0, ErrUnknownRole
}

func (r Role) String() string {
	if r == RoleAdult {
		return "adult"
	}
	return "minor"
}

type User struct {
	ID           uint64    `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"not null;default:'minor'"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`
}
