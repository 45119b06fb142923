// Package domain contains the email-based invitation workflow state.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	teamdomain "github.com/openconext/teams/internal/team/domain"
)

// Status is the invitation lifecycle state. Expiry is derived from the
// expires_at column at read time rather than stored.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
	StatusExpired  Status = "EXPIRED"
)

// Invitation is a pending grant of a role in a team to an email address.
type Invitation struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvitationHash string          `gorm:"type:text;not null;uniqueIndex:ux_invitations_hash" json:"-"`
	TeamID         snowflake.ID    `gorm:"not null;index" json:"team_id"`
	Email          string          `gorm:"type:text;not null;index" json:"email"`
	IntendedRole   teamdomain.Role `gorm:"type:text;not null" json:"intended_role"`
	Language       string          `gorm:"type:text;not null" json:"language"`
	Status         Status          `gorm:"type:text;not null" json:"status"`
	ExpiresAt      time.Time       `gorm:"not null" json:"expires_at"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`

	Team     *teamdomain.Team    `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Messages []InvitationMessage `gorm:"foreignKey:InvitationID" json:"messages,omitempty"`
}

// TableName sets the database table name.
func (Invitation) TableName() string { return "invitations" }

// InvitationMessage is one free-text note attached by an inviter, appended
// again on every resend.
type InvitationMessage struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	InvitationID snowflake.ID `gorm:"not null;index" json:"invitation_id"`
	PersonID     snowflake.ID `gorm:"not null" json:"person_id"`
	PersonURN    string       `gorm:"type:text;not null;column:person_urn" json:"person_urn"`
	Text         string       `gorm:"type:text" json:"text"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (InvitationMessage) TableName() string { return "invitation_messages" }

// EffectiveStatus resolves pending invitations against the clock.
func (i *Invitation) EffectiveStatus(now time.Time) Status {
	if i.Status == StatusPending && now.After(i.ExpiresAt) {
		return StatusExpired
	}
	return i.Status
}
