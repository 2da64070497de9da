package metrics

import (
	"context"
	"time"

	"github.com/chirino/data-gateway/internal/model"
	"github.com/chirino/data-gateway/internal/observe"
	"github.com/chirino/data-gateway/internal/store"
)

// Wrap returns a DataStore that records StoreLatency for every operation.
func Wrap(inner store.DataStore) store.DataStore {
	return &metricsStore{inner: inner}
}

type metricsStore struct {
	inner store.DataStore
}

func observeOp(op string, start time.Time, err error) {
	if observe.StoreLatency != nil {
		observe.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
	if err != nil && observe.StoreErrorsTotal != nil {
		observe.StoreErrorsTotal.WithLabelValues(op).Inc()
	}
}

func (m *metricsStore) InsertDocument(ctx context.Context, c model.Collection, doc model.Document) (id string, err error) {
	defer func(start time.Time) { observeOp("insert_document", start, err) }(time.Now())
	return m.inner.InsertDocument(ctx, c, doc)
}

func (m *metricsStore) FindDocuments(ctx context.Context, c model.Collection, query model.Document, opts store.FindOptions) (docs []model.Document, err error) {
	defer func(start time.Time) { observeOp("find_documents", start, err) }(time.Now())
	return m.inner.FindDocuments(ctx, c, query, opts)
}

func (m *metricsStore) UpdateDocument(ctx context.Context, c model.Collection, query, patch model.Document) (modified bool, err error) {
	defer func(start time.Time) { observeOp("update_document", start, err) }(time.Now())
	return m.inner.UpdateDocument(ctx, c, query, patch)
}

func (m *metricsStore) DeleteDocument(ctx context.Context, c model.Collection, query model.Document) (deleted bool, err error) {
	defer func(start time.Time) { observeOp("delete_document", start, err) }(time.Now())
	return m.inner.DeleteDocument(ctx, c, query)
}

func (m *metricsStore) TeamsFor(ctx context.Context, actorID string) []string {
	defer func(start time.Time) { observeOp("teams_for", start, nil) }(time.Now())
	return m.inner.TeamsFor(ctx, actorID)
}

func (m *metricsStore) ChatIDsFor(ctx context.Context, actorID string) []string {
	defer func(start time.Time) { observeOp("chat_ids_for", start, nil) }(time.Now())
	return m.inner.ChatIDsFor(ctx, actorID)
}

func (m *metricsStore) RegisterAgent(ctx context.Context, p store.RegisterAgentParams) (id string, err error) {
	defer func(start time.Time) { observeOp("register_agent", start, err) }(time.Now())
	return m.inner.RegisterAgent(ctx, p)
}

func (m *metricsStore) GetAgentRegistration(ctx context.Context, userID, name string, agentType model.AgentType) (doc model.Document, err error) {
	defer func(start time.Time) { observeOp("get_agent_registration", start, err) }(time.Now())
	return m.inner.GetAgentRegistration(ctx, userID, name, agentType)
}

func (m *metricsStore) ListRegisteredAgents(ctx context.Context, userID string, agentType *model.AgentType, status *model.AgentStatus) (docs []model.Document, err error) {
	defer func(start time.Time) { observeOp("list_registered_agents", start, err) }(time.Now())
	return m.inner.ListRegisteredAgents(ctx, userID, agentType, status)
}

func (m *metricsStore) CreateTeam(ctx context.Context, ownerID string, team model.Document) (id string, err error) {
	defer func(start time.Time) { observeOp("create_team", start, err) }(time.Now())
	return m.inner.CreateTeam(ctx, ownerID, team)
}

func (m *metricsStore) GetTeam(ctx context.Context, actorID, teamID string) (doc model.Document, err error) {
	defer func(start time.Time) { observeOp("get_team", start, err) }(time.Now())
	return m.inner.GetTeam(ctx, actorID, teamID)
}

func (m *metricsStore) UpdateTeam(ctx context.Context, actorID, teamID string, patch model.Document) (doc model.Document, err error) {
	defer func(start time.Time) { observeOp("update_team", start, err) }(time.Now())
	return m.inner.UpdateTeam(ctx, actorID, teamID, patch)
}

func (m *metricsStore) DeleteTeam(ctx context.Context, actorID, teamID string) (err error) {
	defer func(start time.Time) { observeOp("delete_team", start, err) }(time.Now())
	return m.inner.DeleteTeam(ctx, actorID, teamID)
}

func (m *metricsStore) AddTeamMember(ctx context.Context, actorID, teamID, memberID string) (err error) {
	defer func(start time.Time) { observeOp("add_team_member", start, err) }(time.Now())
	return m.inner.AddTeamMember(ctx, actorID, teamID, memberID)
}

func (m *metricsStore) RemoveTeamMember(ctx context.Context, actorID, teamID, memberID string) (err error) {
	defer func(start time.Time) { observeOp("remove_team_member", start, err) }(time.Now())
	return m.inner.RemoveTeamMember(ctx, actorID, teamID, memberID)
}

func (m *metricsStore) Cleanup(ctx context.Context, retentionDays int) (report store.CleanupReport, err error) {
	defer func(start time.Time) { observeOp("cleanup", start, err) }(time.Now())
	return m.inner.Cleanup(ctx, retentionDays)
}

func (m *metricsStore) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { observeOp("ping", start, err) }(time.Now())
	return m.inner.Ping(ctx)
}

func (m *metricsStore) Close(ctx context.Context) error {
	return m.inner.Close(ctx)
}
