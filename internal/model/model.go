package model

import (
	"fmt"
	"regexp"
)

// Document is a schemaless document as stored in a collection. Nested
// config/metadata values are carried through without interpretation.
type Document = map[string]any

// Collection identifies one of the known typed collections.
type Collection string

const (
	CollectionUsers     Collection = "users"
	CollectionTeams     Collection = "teams"
	CollectionChats     Collection = "chats"
	CollectionSessions  Collection = "sessions"
	CollectionMessages  Collection = "messages"
	CollectionWorkflows Collection = "workflows"
	CollectionAgents    Collection = "agents"
)

// Collections returns all known collections in cleanup-sweep order.
func Collections() []Collection {
	return []Collection{
		CollectionUsers,
		CollectionTeams,
		CollectionChats,
		CollectionSessions,
		CollectionMessages,
		CollectionWorkflows,
		CollectionAgents,
	}
}

// ParseCollection resolves a collection name, rejecting unknown ones.
func ParseCollection(name string) (Collection, error) {
	c := Collection(name)
	switch c {
	case CollectionUsers, CollectionTeams, CollectionChats, CollectionSessions,
		CollectionMessages, CollectionWorkflows, CollectionAgents:
		return c, nil
	}
	return "", fmt.Errorf("unknown collection %q", name)
}

func (c Collection) String() string { return string(c) }

// AccessRule describes how the visibility filter scopes reads of a collection
// for a non-admin actor.
type AccessRule int

const (
	// AccessRuleNone adds no implicit filter; callers enforce ownership
	// per endpoint (users and teams).
	AccessRuleNone AccessRule = iota
	// AccessRuleOwnerSharedTeam grants the document owner, actors on the
	// access_users allow-list, and members of the document's team.
	AccessRuleOwnerSharedTeam
	// AccessRuleOwnerTeam grants the document owner and members of the
	// document's team.
	AccessRuleOwnerTeam
	// AccessRuleChatDerived grants transitively through the set of chats
	// the actor can see.
	AccessRuleChatDerived
)

// AccessRule returns the visibility rule for the collection.
func (c Collection) AccessRule() AccessRule {
	switch c {
	case CollectionChats:
		return AccessRuleOwnerSharedTeam
	case CollectionWorkflows, CollectionAgents:
		return AccessRuleOwnerTeam
	case CollectionMessages, CollectionSessions:
		return AccessRuleChatDerived
	default:
		return AccessRuleNone
	}
}

// MessageType classifies the payload of a message document.
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeFile   MessageType = "file"
	MessageTypeJSON   MessageType = "json"
	MessageTypeSystem MessageType = "system"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeJSON, MessageTypeSystem:
		return true
	}
	return false
}

// WorkflowStatus is the lifecycle state of a workflow document.
type WorkflowStatus string

const (
	WorkflowStatusDraft     WorkflowStatus = "draft"
	WorkflowStatusActive    WorkflowStatus = "active"
	WorkflowStatusCompleted WorkflowStatus = "completed"
	WorkflowStatusArchived  WorkflowStatus = "archived"
)

func (s WorkflowStatus) Valid() bool {
	switch s {
	case WorkflowStatusDraft, WorkflowStatusActive, WorkflowStatusCompleted, WorkflowStatusArchived:
		return true
	}
	return false
}

// AgentType classifies a stored agent document.
type AgentType string

const (
	AgentTypeWorkflowCreator      AgentType = "workflow_creator"
	AgentTypeProblemUnderstanding AgentType = "problem_understanding"
	AgentTypeTaskExecutor         AgentType = "task_executor"
	AgentTypeCodeGenerator        AgentType = "code_generator"
	AgentTypeDataProcessor        AgentType = "data_processor"
	AgentTypeSystem               AgentType = "system"
	// AgentTypeGemini is accepted at registration time only.
	AgentTypeGemini AgentType = "gemini"
)

// Valid reports whether the type is one of the stored-document types.
func (t AgentType) Valid() bool {
	switch t {
	case AgentTypeWorkflowCreator, AgentTypeProblemUnderstanding, AgentTypeTaskExecutor,
		AgentTypeCodeGenerator, AgentTypeDataProcessor, AgentTypeSystem:
		return true
	}
	return false
}

// Registrable reports whether the type is accepted by agent registration,
// a superset of Valid that additionally allows gemini.
func (t AgentType) Registrable() bool {
	return t.Valid() || t == AgentTypeGemini
}

// AgentStatus is the lifecycle state of an agent document.
type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
	AgentStatusArchived AgentStatus = "archived"
)

func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusActive, AgentStatusInactive, AgentStatusArchived:
		return true
	}
	return false
}

var semverRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidSemver reports whether v is a three-part semantic version (e.g. 1.0.0).
func ValidSemver(v string) bool {
	return semverRe.MatchString(v)
}
