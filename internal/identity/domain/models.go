// Package domain contains the identity records provisioned from the
// federation layer.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Person is the local record of a federated identity. It is created or
// refreshed on every successful login and never deleted by normal flows.
type Person struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	URN           string       `gorm:"type:text;not null;uniqueIndex:ux_persons_urn;column:urn" json:"urn"`
	Name          string       `gorm:"type:text;not null" json:"name"`
	Email         string       `gorm:"type:text;not null" json:"email"`
	Guest         bool         `gorm:"not null" json:"guest"`
	LastLoginDate time.Time    `gorm:"not null" json:"last_login_date"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`

	// SuperAdmin is recomputed on every login and never persisted.
	SuperAdmin bool `gorm:"-" json:"super_admin"`
}

// TableName sets the database table name.
func (Person) TableName() string { return "persons" }

// Attributes are the pre-verified values asserted by the federation proxy
// for the current request.
type Attributes struct {
	NameID   string
	Name     string
	Email    string
	MemberOf string
}
