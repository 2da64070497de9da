package mongo

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/chirino/data-gateway/internal/model"
	"github.com/chirino/data-gateway/internal/store"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// CreateTeam creates a team owned by ownerID. The owner is always part of the
// member set, regardless of the supplied users list.
func (s *Store) CreateTeam(ctx context.Context, ownerID string, team model.Document) (string, error) {
	now := time.Now().UTC()
	doc := make(bson.M, len(team)+5)
	for k, v := range team {
		doc[k] = v
	}
	users := stringSlice(doc["users"])
	if !slices.Contains(users, ownerID) {
		users = append(users, ownerID)
	}
	doc["_id"] = uuid.New().String()
	doc["owner_id"] = ownerID
	doc["users"] = users
	doc["created_at"] = now
	doc["updated_at"] = now
	if _, ok := doc["metadata"]; !ok {
		doc["metadata"] = map[string]any{}
	}

	result, err := s.collection(model.CollectionTeams).InsertOne(ctx, doc)
	if err != nil {
		return "", &store.StoreError{Op: "create team", Err: err}
	}
	return idString(result.InsertedID), nil
}

// GetTeam returns a team the actor owns, belongs to, or administers.
func (s *Store) GetTeam(ctx context.Context, actorID, teamID string) (model.Document, error) {
	doc, err := s.findTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !s.isAdmin(actorID) && actorID != asString(doc["owner_id"]) &&
		!slices.Contains(stringSlice(doc["users"]), actorID) {
		return nil, &store.ForbiddenError{}
	}
	return normalizeID(doc), nil
}

// UpdateTeam applies a patch to a team. Owner or admin only. owner_id is not
// patchable; ownership does not move through this operation. A patch that
// changes nothing is reported as a validation error.
func (s *Store) UpdateTeam(ctx context.Context, actorID, teamID string, patch model.Document) (model.Document, error) {
	if _, err := s.requireTeamOwner(ctx, actorID, teamID); err != nil {
		return nil, err
	}
	set := make(bson.M, len(patch)+1)
	for k, v := range patch {
		if k == "_id" || k == "owner_id" {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		return nil, &store.ValidationError{Field: "team", Message: "no changes to apply"}
	}
	set["updated_at"] = time.Now().UTC()

	result, err := s.collection(model.CollectionTeams).UpdateOne(ctx,
		bson.M{"_id": teamID}, bson.M{"$set": set})
	if err != nil {
		return nil, &store.StoreError{Op: "update team", Err: err}
	}
	if result.ModifiedCount == 0 {
		return nil, &store.ValidationError{Field: "team", Message: "no changes applied"}
	}
	doc, err := s.findTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return normalizeID(doc), nil
}

// DeleteTeam removes a team. Owner or admin only.
func (s *Store) DeleteTeam(ctx context.Context, actorID, teamID string) error {
	if _, err := s.requireTeamOwner(ctx, actorID, teamID); err != nil {
		return err
	}
	result, err := s.collection(model.CollectionTeams).DeleteOne(ctx, bson.M{"_id": teamID})
	if err != nil {
		return &store.StoreError{Op: "delete team", Err: err}
	}
	if result.DeletedCount == 0 {
		return &store.NotFoundError{Resource: "team", ID: teamID}
	}
	return nil
}

// AddTeamMember adds memberID to the team's member set. Owner or admin only.
func (s *Store) AddTeamMember(ctx context.Context, actorID, teamID, memberID string) error {
	if _, err := s.requireTeamOwner(ctx, actorID, teamID); err != nil {
		return err
	}
	result, err := s.collection(model.CollectionTeams).UpdateOne(ctx,
		bson.M{"_id": teamID}, bson.M{"$addToSet": bson.M{"users": memberID}})
	if err != nil {
		return &store.StoreError{Op: "add team member", Err: err}
	}
	if result.ModifiedCount == 0 {
		return &store.ValidationError{Field: "member", Message: "user already in team"}
	}
	return nil
}

// RemoveTeamMember removes memberID from the team's member set. Owner or
// admin only. The owner cannot be removed.
func (s *Store) RemoveTeamMember(ctx context.Context, actorID, teamID, memberID string) error {
	doc, err := s.requireTeamOwner(ctx, actorID, teamID)
	if err != nil {
		return err
	}
	if memberID == asString(doc["owner_id"]) {
		return &store.ValidationError{Field: "member", Message: "cannot remove team owner"}
	}
	result, err := s.collection(model.CollectionTeams).UpdateOne(ctx,
		bson.M{"_id": teamID}, bson.M{"$pull": bson.M{"users": memberID}})
	if err != nil {
		return &store.StoreError{Op: "remove team member", Err: err}
	}
	if result.ModifiedCount == 0 {
		return &store.ValidationError{Field: "member", Message: "user not in team"}
	}
	return nil
}

func (s *Store) findTeam(ctx context.Context, teamID string) (bson.M, error) {
	var doc bson.M
	err := s.collection(model.CollectionTeams).FindOne(ctx, bson.M{"_id": teamID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &store.NotFoundError{Resource: "team", ID: teamID}
	}
	if err != nil {
		return nil, &store.StoreError{Op: "get team", Err: err}
	}
	return doc, nil
}

func (s *Store) requireTeamOwner(ctx context.Context, actorID, teamID string) (bson.M, error) {
	doc, err := s.findTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !s.isAdmin(actorID) && actorID != asString(doc["owner_id"]) {
		return nil, &store.ForbiddenError{}
	}
	return doc, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// stringSlice coerces a decoded bson array into []string, skipping anything
// that is not a string.
func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return slices.Clone(vals)
	case bson.A:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
