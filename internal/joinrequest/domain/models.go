// Package domain contains the join-request workflow state.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	identitydomain "github.com/openconext/teams/internal/identity/domain"
	teamdomain "github.com/openconext/teams/internal/team/domain"
)

// JoinRequest is a person's pending request to become a MEMBER of a viewable
// team. Approval and rejection both remove the row.
type JoinRequest struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TeamID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_join_requests_team_person,priority:1" json:"team_id"`
	PersonID  snowflake.ID `gorm:"not null;uniqueIndex:ux_join_requests_team_person,priority:2" json:"person_id"`
	PersonURN string       `gorm:"type:text;not null;index;column:person_urn" json:"person_urn"`
	Message   string       `gorm:"type:text" json:"message"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`

	Team   *teamdomain.Team       `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Person *identitydomain.Person `gorm:"foreignKey:PersonID" json:"person,omitempty"`
}

// TableName sets the database table name.
func (JoinRequest) TableName() string { return "join_requests" }
