package domain

import "time"

// InvitationTTL is how long an invite link stays valid.
const InvitationTTL = 7 * 24 * time.Hour

type Invitation struct {
	ID         string     `db:"id" json:"id"`
	TeamID     string     `db:"team_id" json:"team_id"`
	Email      string     `db:"email" json:"email"`
	Role       TeamRole   `db:"role" json:"role"`
	Token      string     `db:"token" json:"-"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at"`
	AcceptedAt *time.Time `db:"accepted_at" json:"accepted_at"`
	CreatedBy  string     `db:"created_by" json:"created_by"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
