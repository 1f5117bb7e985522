package domain

import "time"

type TeamRole string

const (
	RoleAdmin TeamRole = "admin"
	RoleUser  TeamRole = "user"
)

// NormalizeRole maps any unknown role to the regular user role.
func NormalizeRole(raw string) TeamRole {
	if TeamRole(raw) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

type Team struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type TeamMember struct {
	TeamID    string    `db:"team_id" json:"team_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Role      TeamRole  `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Project struct {
	ID        string    `db:"id" json:"id"`
	TeamID    string    `db:"team_id" json:"team_id"`
	Name      string    `db:"name" json:"name"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ProjectMember struct {
	ProjectID string    `db:"project_id" json:"project_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Role      TeamRole  `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Profile mirrors the identity provider's user record that the app keeps
// locally for display purposes.
type Profile struct {
	ID          string  `db:"id" json:"id"`
	Email       string  `db:"email" json:"email"`
	DisplayName *string `db:"display_name" json:"display_name"`
}
