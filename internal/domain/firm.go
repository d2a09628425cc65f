package domain

import "time"

type Firm struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type InvitationStatus string

const (
	InviteOpen     InvitationStatus = "open"
	InviteAccepted InvitationStatus = "accepted"
	InviteExpired  InvitationStatus = "expired"
)

// Invitation tokens are ULIDs minted from crypto/rand entropy. An invitation
// is single use: accepting it binds the profile to the firm and role.
type Invitation struct {
	ID         string           `json:"id"`
	FirmID     string           `json:"firm_id"`
	Email      string           `json:"email"`
	Role       Role             `json:"role"`
	Token      string           `json:"token"`
	InvitedBy  string           `json:"invited_by"`
	Status     InvitationStatus `json:"status"`
	ExpiresAt  time.Time        `json:"expires_at"`
	AcceptedAt *time.Time       `json:"accepted_at"`
	CreatedAt  time.Time        `json:"created_at"`
}

func (i Invitation) ExpiredAt(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
