package model

import (
	"time"
)

// Grant links a provider configuration into a group's ordered access list.
// Its cache identity is the provider config id, which is the id the grant,
// revoke and reorder operations address on the wire.
type Grant struct {
	ID         string // Server-side link row id.
	GroupID    string
	ProviderID string
	SortOrder  int
	CreatedAt  time.Time
}

// EntityID returns the cache identity of the grant.
func (g Grant) EntityID() string { return g.ProviderID }

// GrantPatch is a partial update for a grant. Nil fields were omitted by the
// producer and keep the value the cached grant already holds.
type GrantPatch struct {
	ProviderID string
	ID         *string
	GroupID    *string
	SortOrder  *int
	CreatedAt  *time.Time
}

// EntityID returns the cache identity of the patched grant.
func (p GrantPatch) EntityID() string { return p.ProviderID }

// Apply merges the patch into an existing grant and returns the result.
// Omitted fields are retained verbatim.
func (p GrantPatch) Apply(g Grant) Grant {
	if p.ID != nil {
		g.ID = *p.ID
	}
	if p.GroupID != nil {
		g.GroupID = *p.GroupID
	}
	if p.SortOrder != nil {
		g.SortOrder = *p.SortOrder
	}
	if p.CreatedAt != nil {
		g.CreatedAt = *p.CreatedAt
	}
	return g
}

// Materialize builds a grant from the patch alone, used when an update event
// references a grant the cache has never seen.
func (p GrantPatch) Materialize() Grant {
	return p.Apply(Grant{ProviderID: p.ProviderID})
}
