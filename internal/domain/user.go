package domain

import "time"

// Role enumerates the fixed set of user roles. Roles are immutable for the
// lifetime of a session.
type Role string

const (
	RoleUnit  Role = "UNIT"
	RoleG1    Role = "G1"
	RoleTeam  Role = "TEAM"
	RoleAdmin Role = "ADMIN"
)

// Roles lists every role, in a stable order.
func Roles() []Role {
	return []Role{RoleUnit, RoleG1, RoleTeam, RoleAdmin}
}

// User is the domain model for an account.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	TeamID       *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is the identity slice of a user that transition guards operate on.
type Actor struct {
	ID     string
	Name   string
	Role   Role
	TeamID *string
}

// ActorFromUser derives the guard-relevant view of a user.
func ActorFromUser(u *User) Actor {
	return Actor{
		ID:     u.ID,
		Name:   u.FullName,
		Role:   u.Role,
		TeamID: u.TeamID,
	}
}
