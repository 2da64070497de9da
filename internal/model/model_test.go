package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCollection(t *testing.T) {
	for _, c := range Collections() {
		parsed, err := ParseCollection(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseCollection("invoices")
	require.Error(t, err)
}

func TestAccessRules(t *testing.T) {
	assert.Equal(t, AccessRuleOwnerSharedTeam, CollectionChats.AccessRule())
	assert.Equal(t, AccessRuleOwnerTeam, CollectionWorkflows.AccessRule())
	assert.Equal(t, AccessRuleOwnerTeam, CollectionAgents.AccessRule())
	assert.Equal(t, AccessRuleChatDerived, CollectionMessages.AccessRule())
	assert.Equal(t, AccessRuleChatDerived, CollectionSessions.AccessRule())
	assert.Equal(t, AccessRuleNone, CollectionUsers.AccessRule())
	assert.Equal(t, AccessRuleNone, CollectionTeams.AccessRule())
}

func TestAgentTypeRegistrable(t *testing.T) {
	assert.True(t, AgentTypeTaskExecutor.Valid())
	assert.True(t, AgentTypeTaskExecutor.Registrable())

	// gemini is only accepted at registration time.
	assert.False(t, AgentTypeGemini.Valid())
	assert.True(t, AgentTypeGemini.Registrable())

	assert.False(t, AgentType("unknown_type").Registrable())
}

func TestValidSemver(t *testing.T) {
	assert.True(t, ValidSemver("1.0.0"))
	assert.True(t, ValidSemver("0.12.345"))

	assert.False(t, ValidSemver("1.0"))
	assert.False(t, ValidSemver("v1.0.0"))
	assert.False(t, ValidSemver("1.0.0-beta"))
	assert.False(t, ValidSemver("1.0.0 "))
	assert.False(t, ValidSemver(""))
}

func TestValidateDocument(t *testing.T) {
	require.NoError(t, ValidateDocument(CollectionMessages, Document{"type": "text"}))
	require.Error(t, ValidateDocument(CollectionMessages, Document{"type": "video"}))

	require.NoError(t, ValidateDocument(CollectionWorkflows, Document{"status": "draft", "version": "1.2.3"}))
	require.Error(t, ValidateDocument(CollectionWorkflows, Document{"status": "paused"}))
	require.Error(t, ValidateDocument(CollectionWorkflows, Document{"version": "1.2"}))

	require.NoError(t, ValidateDocument(CollectionAgents, Document{"type": "system", "status": "inactive"}))
	require.Error(t, ValidateDocument(CollectionAgents, Document{"type": "gemini"}))

	// Absent fields are not required.
	require.NoError(t, ValidateDocument(CollectionWorkflows, Document{"name": "wf"}))
	// Other collections carry no enum invariants.
	require.NoError(t, ValidateDocument(CollectionUsers, Document{"type": "whatever"}))
}
