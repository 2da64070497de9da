// Package store defines the data gateway's external surface: generic document
// CRUD with per-actor visibility scoping, team operations, versioned agent
// registration, and the retention sweeper. The HTTP layer in front of it is an
// external caller that supplies an authenticated actor id.
package store

import (
	"context"

	"github.com/chirino/data-gateway/internal/model"
)

// DefaultFindLimit is applied when FindOptions.Limit is unset.
const DefaultFindLimit = 100

// MaxFindLimit is the largest page size a find will serve; larger requests
// are clamped to it.
const MaxFindLimit = 1000

// SortKey orders find results by a single field.
type SortKey struct {
	Key  string
	Desc bool
}

// FindOptions controls pagination, ordering, and visibility scoping of a find.
// When ActorID is set the query is rewritten by the visibility filter before it
// reaches the database; a nil ActorID means the caller has already scoped it.
type FindOptions struct {
	ActorID *string
	Limit   int64
	Skip    int64
	Sort    []SortKey
}

// RegisterAgentParams carries the inputs to agent registration. Capabilities
// and Metadata distinguish nil (omitted: preserve stored values on update)
// from empty (replace with empty containers).
type RegisterAgentParams struct {
	UserID        string
	Name          string
	Type          model.AgentType
	Version       string
	Config        map[string]any
	SystemMessage string
	Src           string
	Command       string
	Description   *string
	Capabilities  []string
	Metadata      map[string]any
}

// CleanupReport maps each swept collection to the number of documents removed.
type CleanupReport map[model.Collection]int64

// DataStore is the gateway over the underlying document store. Implementations
// are safe for concurrent use; every operation is a single document-level call
// with no retries and no cross-request state.
type DataStore interface {
	// InsertDocument stores a document, stamping created_at/updated_at (and
	// workflows.timestamp / agents.last_active) when absent, and returns the
	// new identifier as an opaque string.
	InsertDocument(ctx context.Context, c model.Collection, doc model.Document) (string, error)

	// FindDocuments returns matching documents ordered per opts.Sort, with
	// identifiers normalized to strings. An empty result is not an error.
	FindDocuments(ctx context.Context, c model.Collection, query model.Document, opts FindOptions) ([]model.Document, error)

	// UpdateDocument applies the patch field-set to at most one matching
	// document, always forcing updated_at (and the collection's bookkeeping
	// timestamp) to the current time. Returns whether exactly one document
	// was modified; zero matches is false, not an error.
	UpdateDocument(ctx context.Context, c model.Collection, query, patch model.Document) (bool, error)

	// DeleteDocument removes at most one matching document and reports
	// whether one was removed.
	DeleteDocument(ctx context.Context, c model.Collection, query model.Document) (bool, error)

	// TeamsFor returns the ids of teams the actor owns or belongs to. A
	// resolution failure degrades to an empty set (logged, not raised) so it
	// never blocks the primary operation.
	TeamsFor(ctx context.Context, actorID string) []string

	// ChatIDsFor returns the ids of chats the actor can see: owned, shared
	// via access_users, or granted through team membership.
	ChatIDsFor(ctx context.Context, actorID string) []string

	// RegisterAgent creates or updates the agent identified by
	// (UserID, Name, Type) and returns its id.
	RegisterAgent(ctx context.Context, p RegisterAgentParams) (string, error)

	// GetAgentRegistration looks up an agent by exact identity. Absence is
	// reported as a nil document with a nil error.
	GetAgentRegistration(ctx context.Context, userID, name string, agentType model.AgentType) (model.Document, error)

	// ListRegisteredAgents lists a user's agents, optionally filtered by type
	// and status, ordered by last_active descending.
	ListRegisteredAgents(ctx context.Context, userID string, agentType *model.AgentType, status *model.AgentStatus) ([]model.Document, error)

	// CreateTeam creates a team owned by ownerID; the owner is always part of
	// the member set.
	CreateTeam(ctx context.Context, ownerID string, team model.Document) (string, error)

	// GetTeam returns a team the actor owns, belongs to, or administers.
	GetTeam(ctx context.Context, actorID, teamID string) (model.Document, error)

	// UpdateTeam applies a patch; owner or admin only.
	UpdateTeam(ctx context.Context, actorID, teamID string, patch model.Document) (model.Document, error)

	// DeleteTeam removes a team; owner or admin only.
	DeleteTeam(ctx context.Context, actorID, teamID string) error

	// AddTeamMember adds memberID to the team's member set; owner or admin only.
	AddTeamMember(ctx context.Context, actorID, teamID, memberID string) error

	// RemoveTeamMember removes memberID from the team's member set; owner or
	// admin only. The owner cannot be removed.
	RemoveTeamMember(ctx context.Context, actorID, teamID, memberID string) error

	// Cleanup deletes documents older than retentionDays from every
	// collection and reports per-collection counts. The first failing
	// collection aborts the sweep.
	Cleanup(ctx context.Context, retentionDays int) (CleanupReport, error)

	// Ping verifies store connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying client.
	Close(ctx context.Context) error
}
