package domain

import "time"

// ViewKind selects how much of a team a caller may see.
type ViewKind string

const (
	ViewFull   ViewKind = "full"
	ViewPublic ViewKind = "public"
	ViewDenied ViewKind = "denied"
)

// TeamView is the variant returned when a team is read: members get the full
// team, non-members get a public summary of viewable teams, everyone else is
// denied.
type TeamView struct {
	Kind    ViewKind     `json:"kind"`
	Detail  *TeamDetail  `json:"detail,omitempty"`
	Summary *TeamSummary `json:"summary,omitempty"`
}

// TeamDetail is the member-facing shape of a team.
type TeamDetail struct {
	ID                 int64        `json:"id"`
	URN                string       `json:"urn"`
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	PersonalNote       string       `json:"personal_note,omitempty"`
	Viewable           bool         `json:"viewable"`
	PublicLink         string       `json:"public_link,omitempty"`
	PublicLinkDisabled bool         `json:"public_link_disabled"`
	HideMembers        bool         `json:"hide_members"`
	CreatedAt          time.Time    `json:"created_at"`
	Role               Role         `json:"role"`
	MembershipCount    int          `json:"membership_count"`
	Memberships        []Membership `json:"memberships,omitempty"`
}

// TeamSummary is the public shape of a viewable team.
type TeamSummary struct {
	ID              int64     `json:"id"`
	URN             string    `json:"urn"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Viewable        bool      `json:"viewable"`
	CreatedAt       time.Time `json:"created_at"`
	MembershipCount int       `json:"membership_count"`
	Role            Role      `json:"role,omitempty"`
}

// TeamAutocomplete is a single search suggestion.
type TeamAutocomplete struct {
	ID          int64  `json:"id"`
	URN         string `json:"urn"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ViewTeamFor chooses the view variant for a caller. It is a pure function
// of membership presence, team visibility and super-admin standing.
func ViewTeamFor(team *Team, membership *Membership, superAdmin bool) TeamView {
	if membership != nil || superAdmin {
		role := RoleOwner
		if membership != nil {
			role = membership.Role
		}
		return TeamView{Kind: ViewFull, Detail: detailOf(team, role)}
	}
	if team.Viewable {
		summary := SummarizeTeam(team)
		return TeamView{Kind: ViewPublic, Summary: &summary}
	}
	return TeamView{Kind: ViewDenied}
}

func detailOf(team *Team, role Role) *TeamDetail {
	detail := &TeamDetail{
		ID:                 int64(team.ID),
		URN:                team.URN,
		Name:               team.Name,
		Description:        team.Description,
		Viewable:           team.Viewable,
		PublicLink:         team.PublicLink,
		PublicLinkDisabled: team.PublicLinkDisabled,
		HideMembers:        team.HideMembers,
		CreatedAt:          team.CreatedAt,
		Role:               role,
		MembershipCount:    team.MembershipCount(),
	}
	if role.AtLeast(RoleAdmin) {
		detail.PersonalNote = team.PersonalNote
	}
	if !team.HideMembers || role.AtLeast(RoleAdmin) {
		detail.Memberships = team.Memberships
	}
	return detail
}

// SummarizeTeam builds the public summary of a team.
func SummarizeTeam(team *Team) TeamSummary {
	return TeamSummary{
		ID:              int64(team.ID),
		URN:             team.URN,
		Name:            team.Name,
		Description:     team.Description,
		Viewable:        team.Viewable,
		CreatedAt:       team.CreatedAt,
		MembershipCount: team.MembershipCount(),
	}
}

// SummarizeTeamFor additionally records the caller's own role.
func SummarizeTeamFor(team *Team, viewerURN string) TeamSummary {
	summary := SummarizeTeam(team)
	if membership, ok := team.Member(viewerURN); ok {
		summary.Role = membership.Role
	}
	return summary
}
