package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chirino/data-gateway/internal/model"
	"github.com/chirino/data-gateway/internal/store"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// defaultAgentConfigs holds the per-type base configuration. Caller-supplied
// config values override these key by key; unspecified defaults pass through.
var defaultAgentConfigs = map[model.AgentType]map[string]any{
	model.AgentTypeWorkflowCreator: {
		"model":       "gpt-4",
		"temperature": 0.7,
		"max_tokens":  4096,
	},
	model.AgentTypeProblemUnderstanding: {
		"model":       "gpt-4",
		"temperature": 0.2,
		"max_tokens":  2048,
	},
	model.AgentTypeTaskExecutor: {
		"model":           "gpt-4",
		"temperature":     0.0,
		"max_tokens":      2048,
		"timeout_seconds": 300,
	},
	model.AgentTypeCodeGenerator: {
		"model":       "gpt-4",
		"temperature": 0.3,
		"max_tokens":  8192,
		"language":    "python",
	},
	model.AgentTypeDataProcessor: {
		"model":       "gpt-3.5-turbo",
		"temperature": 0.0,
		"max_tokens":  2048,
		"batch_size":  100,
	},
	model.AgentTypeSystem: {
		"model":       "gpt-4",
		"temperature": 0.0,
		"max_tokens":  1024,
	},
	model.AgentTypeGemini: {
		"model":       "gemini-pro",
		"temperature": 0.7,
		"max_tokens":  4096,
	},
}

// mergeAgentConfig overlays caller config onto the type's defaults. Caller
// values win on conflicting keys.
func mergeAgentConfig(t model.AgentType, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(defaultAgentConfigs[t])+len(overrides))
	for k, v := range defaultAgentConfigs[t] {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// RegisterAgent creates or updates the agent identified by (UserID, Name,
// Type). On update, capabilities and metadata are preserved when the caller
// omits them; everything else is overwritten.
func (s *Store) RegisterAgent(ctx context.Context, p store.RegisterAgentParams) (string, error) {
	if !p.Type.Registrable() {
		return "", &store.ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("invalid agent type %q", p.Type),
		}
	}
	if !model.ValidSemver(p.Version) {
		return "", &store.ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("version %q must be semantic (e.g. 1.0.0)", p.Version),
		}
	}

	merged := mergeAgentConfig(p.Type, p.Config)
	identity := bson.M{
		"user_id": p.UserID,
		"name":    p.Name,
		"type":    string(p.Type),
	}

	var existing bson.M
	err := s.collection(model.CollectionAgents).FindOne(ctx, identity).Decode(&existing)
	now := time.Now().UTC()
	switch {
	case err == nil:
		set := bson.M{
			"version":        p.Version,
			"config":         merged,
			"system_message": p.SystemMessage,
			"src":            p.Src,
			"command":        p.Command,
			"description":    derefString(p.Description),
			"last_active":    now,
			"updated_at":     now,
		}
		if p.Capabilities != nil {
			set["capabilities"] = p.Capabilities
		}
		if p.Metadata != nil {
			set["metadata"] = p.Metadata
		}
		result, err := s.collection(model.CollectionAgents).UpdateOne(ctx, identity, bson.M{"$set": set})
		if err != nil {
			return "", &store.StoreError{Op: "update agent registration", Err: err}
		}
		if result.ModifiedCount == 0 {
			return "", &store.RegistrationError{Message: "expected to update exactly one agent registration"}
		}
		return idString(existing["_id"]), nil

	case errors.Is(err, mongo.ErrNoDocuments):
		capabilities := p.Capabilities
		if capabilities == nil {
			capabilities = []string{}
		}
		metadata := p.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		doc := bson.M{
			"_id":            uuid.New().String(),
			"user_id":        p.UserID,
			"name":           p.Name,
			"type":           string(p.Type),
			"version":        p.Version,
			"config":         merged,
			"system_message": p.SystemMessage,
			"src":            p.Src,
			"command":        p.Command,
			"description":    derefString(p.Description),
			"status":         string(model.AgentStatusActive),
			"capabilities":   capabilities,
			"metadata":       metadata,
			"last_active":    now,
			"created_at":     now,
			"updated_at":     now,
		}
		result, err := s.collection(model.CollectionAgents).InsertOne(ctx, doc)
		if err != nil {
			// A concurrent registration of the same identity is a caller
			// problem, not a store failure.
			if mongo.IsDuplicateKeyError(err) {
				return "", &store.ValidationError{
					Field:   "name",
					Message: "agent already exists for this user",
				}
			}
			return "", &store.StoreError{Op: "insert agent registration", Err: err}
		}
		return idString(result.InsertedID), nil

	default:
		return "", &store.StoreError{Op: "lookup agent registration", Err: err}
	}
}

// GetAgentRegistration looks up an agent by exact (user, name, type) identity.
// Absence is reported as a nil document with a nil error.
func (s *Store) GetAgentRegistration(ctx context.Context, userID, name string, agentType model.AgentType) (model.Document, error) {
	var doc bson.M
	err := s.collection(model.CollectionAgents).FindOne(ctx, bson.M{
		"user_id": userID,
		"name":    name,
		"type":    string(agentType),
	}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, &store.StoreError{Op: "get agent registration", Err: err}
	}
	return normalizeID(doc), nil
}

// ListRegisteredAgents lists a user's agents, optionally filtered by type and
// status, most recently active first.
func (s *Store) ListRegisteredAgents(ctx context.Context, userID string, agentType *model.AgentType, status *model.AgentStatus) ([]model.Document, error) {
	filter := bson.M{"user_id": userID}
	if agentType != nil {
		filter["type"] = string(*agentType)
	}
	if status != nil {
		filter["status"] = string(*status)
	}

	cursor, err := s.collection(model.CollectionAgents).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "last_active", Value: -1}}))
	if err != nil {
		return nil, &store.StoreError{Op: "list agent registrations", Err: err}
	}
	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, &store.StoreError{Op: "list agent registrations", Err: err}
	}
	docs := make([]model.Document, 0, len(raw))
	for _, d := range raw {
		docs = append(docs, normalizeID(d))
	}
	return docs, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
