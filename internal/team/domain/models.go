// Package domain contains the team aggregate and its membership rules.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	identitydomain "github.com/openconext/teams/internal/identity/domain"
)

// Team is a named group of memberships. Its urn is derived from the name at
// creation time and never changes.
type Team struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	URN                string       `gorm:"type:text;not null;uniqueIndex:ux_teams_urn;column:urn" json:"urn"`
	Name               string       `gorm:"type:text;not null" json:"name"`
	Description        string       `gorm:"type:text" json:"description"`
	PersonalNote       string       `gorm:"type:text" json:"personal_note"`
	Viewable           bool         `gorm:"not null" json:"viewable"`
	PublicLink         string       `gorm:"type:text" json:"public_link"`
	PublicLinkDisabled bool         `gorm:"not null" json:"public_link_disabled"`
	HideMembers        bool         `gorm:"not null" json:"hide_members"`
	CreatedAt          time.Time    `gorm:"not null" json:"created_at"`

	Memberships []Membership `gorm:"foreignKey:TeamID" json:"memberships,omitempty"`
}

// TableName sets the database table name.
func (Team) TableName() string { return "teams" }

// Membership ties a person to a team with a role. At most one membership
// exists per (team, person) pair.
type Membership struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TeamID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_memberships_team_person,priority:1" json:"team_id"`
	PersonID  snowflake.ID `gorm:"not null;index;uniqueIndex:ux_memberships_team_person,priority:2" json:"person_id"`
	PersonURN string       `gorm:"type:text;not null;index;column:person_urn" json:"person_urn"`
	Role      Role         `gorm:"type:text;not null" json:"role"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`

	Person *identitydomain.Person `gorm:"foreignKey:PersonID" json:"person,omitempty"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "memberships" }

// ExternalTeam is a grouping in another system linked to zero or more teams.
// It is shared, so deleting a team only removes the link.
type ExternalTeam struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Identifier    string       `gorm:"type:text;not null;uniqueIndex:ux_external_teams_identifier" json:"identifier"`
	Name          string       `gorm:"type:text;not null" json:"name"`
	Description   string       `gorm:"type:text" json:"description"`
	GroupProvider string       `gorm:"type:text" json:"group_provider"`

	Teams []Team `gorm:"many2many:team_external_teams" json:"teams,omitempty"`
}

// TableName sets the database table name.
func (ExternalTeam) TableName() string { return "external_teams" }

// Member returns the membership held by the person with the given urn.
func (t *Team) Member(urn string) (*Membership, bool) {
	for i := range t.Memberships {
		if t.Memberships[i].PersonURN == urn {
			return &t.Memberships[i], true
		}
	}
	return nil, false
}

// AdminCount counts memberships holding the ADMIN role.
func (t *Team) AdminCount() int {
	count := 0
	for i := range t.Memberships {
		if t.Memberships[i].Role == RoleAdmin {
			count++
		}
	}
	return count
}

// MembershipCount counts memberships excluding the OWNER super-role.
func (t *Team) MembershipCount() int {
	count := 0
	for i := range t.Memberships {
		if t.Memberships[i].Role != RoleOwner {
			count++
		}
	}
	return count
}

var urnReplacer = strings.NewReplacer(" ", "_", "'", "_")

// ConstructURN derives the team urn from its name: lower-cased, trimmed,
// spaces and apostrophes replaced by underscores, prefixed by the stem.
func ConstructURN(stem, name string) string {
	return stem + ":" + urnReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// NewPublicLink generates a fresh public-link token.
func NewPublicLink() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ResetPublicLink issues a new token and re-enables the link. Enabling the
// link implies the team is viewable.
func (t *Team) ResetPublicLink() {
	t.PublicLink = NewPublicLink()
	t.PublicLinkDisabled = false
	t.Viewable = true
}
