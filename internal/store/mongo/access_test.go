package mongo

import (
	"testing"

	"github.com/chirino/data-gateway/internal/model"
	"github.com/chirino/data-gateway/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestAccessClauseChats(t *testing.T) {
	clause := accessClause(model.AccessRuleOwnerSharedTeam, "alice", []string{"t1", "t2"}, nil)
	require.Equal(t, bson.M{"$or": bson.A{
		bson.M{"user_id": "alice"},
		bson.M{"access_users": "alice"},
		bson.M{"team_id": bson.M{"$in": []string{"t1", "t2"}}},
	}}, clause)
}

func TestAccessClauseOwnerTeam(t *testing.T) {
	clause := accessClause(model.AccessRuleOwnerTeam, "alice", nil, nil)
	require.Equal(t, bson.M{"$or": bson.A{
		bson.M{"user_id": "alice"},
		bson.M{"team_id": bson.M{"$in": []string{}}},
	}}, clause)
}

func TestAccessClauseChatDerived(t *testing.T) {
	clause := accessClause(model.AccessRuleChatDerived, "alice", nil, []string{"c1"})
	require.Equal(t, bson.M{"chat_id": bson.M{"$in": []string{"c1"}}}, clause)
}

func TestCombineQueryNarrowsBase(t *testing.T) {
	clause := accessClause(model.AccessRuleOwnerTeam, "alice", nil, nil)

	// Empty base: the clause is the whole query.
	assert.Equal(t, clause, combineQuery(bson.M{}, clause))

	// Non-empty base: ANDed, so the access predicate can never widen the
	// base query's own constraints, even a caller-supplied $or.
	base := bson.M{"$or": bson.A{bson.M{"status": "draft"}, bson.M{"status": "active"}}}
	combined := combineQuery(base, clause)
	require.Equal(t, bson.M{"$and": bson.A{base, clause}}, combined)
}

func TestEffectiveLimit(t *testing.T) {
	assert.EqualValues(t, store.DefaultFindLimit, effectiveLimit(0))
	assert.EqualValues(t, store.DefaultFindLimit, effectiveLimit(-7))
	assert.EqualValues(t, 25, effectiveLimit(25))
	assert.EqualValues(t, store.MaxFindLimit, effectiveLimit(store.MaxFindLimit))
	assert.EqualValues(t, store.MaxFindLimit, effectiveLimit(store.MaxFindLimit+1))
}

func TestMergeAgentConfig(t *testing.T) {
	merged := mergeAgentConfig(model.AgentTypeCodeGenerator, map[string]any{
		"temperature": 0.9,
		"style":       "concise",
	})

	// Caller values win on conflicting keys.
	assert.Equal(t, 0.9, merged["temperature"])
	// Caller-only keys pass through.
	assert.Equal(t, "concise", merged["style"])
	// Unspecified defaults pass through.
	assert.Equal(t, "python", merged["language"])
	assert.Equal(t, 8192, merged["max_tokens"])

	// Defaults are not mutated by the merge.
	assert.Equal(t, 0.3, defaultAgentConfigs[model.AgentTypeCodeGenerator]["temperature"])
}

func TestMergeAgentConfigNoOverrides(t *testing.T) {
	merged := mergeAgentConfig(model.AgentTypeGemini, nil)
	assert.Equal(t, "gemini-pro", merged["model"])
}
