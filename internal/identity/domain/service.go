package domain

import "context"

// Service provisions federated identities into local storage.
type Service interface {
	// Provision validates the asserted attributes, upserts the matching
	// Person record and computes its super-admin standing. Exactly one
	// Person row is written per call.
	Provision(ctx context.Context, attrs Attributes) (*Person, error)

	// Autocomplete finds persons by partial name or email match.
	Autocomplete(ctx context.Context, query string) ([]PersonAutocomplete, error)
}

// PersonAutocomplete is the reduced shape returned to pickers.
type PersonAutocomplete struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MembershipDirectory answers membership questions the provisioner needs
// without depending on the team packages. The team repository implements it.
type MembershipDirectory interface {
	// HoldsNonOwnerMembership reports whether the person identified by
	// personURN has a membership other than OWNER in the team identified
	// by teamURN.
	HoldsNonOwnerMembership(ctx context.Context, teamURN, personURN string) (bool, error)
}
