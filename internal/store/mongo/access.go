package mongo

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/chirino/data-gateway/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// TeamsFor returns the ids of teams the actor owns or is a member of. A
// resolution failure must not block the primary operation: it degrades to
// "no team-granted access" and is logged, not raised.
func (s *Store) TeamsFor(ctx context.Context, actorID string) []string {
	cursor, err := s.collection(model.CollectionTeams).Find(ctx,
		bson.M{"$or": bson.A{
			bson.M{"owner_id": actorID},
			bson.M{"users": actorID},
		}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		log.Error("Failed to resolve team membership", "err", err, "actorId", actorID)
		return []string{}
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		log.Error("Failed to decode team membership", "err", err, "actorId", actorID)
		return []string{}
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, idString(d["_id"]))
	}
	return ids
}

// ChatIDsFor returns the ids of chats the actor can see: owned, shared via
// access_users, or granted through team membership. Degrades to empty on a
// resolution failure, like TeamsFor.
func (s *Store) ChatIDsFor(ctx context.Context, actorID string) []string {
	teams := s.TeamsFor(ctx, actorID)
	cursor, err := s.collection(model.CollectionChats).Find(ctx,
		bson.M{"$or": bson.A{
			bson.M{"user_id": actorID},
			bson.M{"access_users": actorID},
			bson.M{"team_id": bson.M{"$in": teams}},
		}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		log.Error("Failed to resolve accessible chats", "err", err, "actorId", actorID)
		return []string{}
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		log.Error("Failed to decode accessible chats", "err", err, "actorId", actorID)
		return []string{}
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, idString(d["_id"]))
	}
	return ids
}

// scopeQuery rewrites a base query so that a non-admin actor only sees
// documents they are entitled to. The admin sentinel bypasses all filtering.
func (s *Store) scopeQuery(ctx context.Context, c model.Collection, actorID string, base bson.M) bson.M {
	if actorID == "" || s.isAdmin(actorID) {
		return base
	}
	rule := c.AccessRule()
	if rule == model.AccessRuleNone {
		// users and teams: callers enforce ownership per endpoint.
		return base
	}

	var clause bson.M
	switch rule {
	case model.AccessRuleOwnerSharedTeam:
		clause = accessClause(rule, actorID, s.TeamsFor(ctx, actorID), nil)
	case model.AccessRuleOwnerTeam:
		clause = accessClause(rule, actorID, s.TeamsFor(ctx, actorID), nil)
	case model.AccessRuleChatDerived:
		clause = accessClause(rule, actorID, nil, s.ChatIDsFor(ctx, actorID))
	}
	return combineQuery(base, clause)
}

// accessClause builds the per-collection access predicate for an actor given
// their resolved team and chat id sets.
func accessClause(rule model.AccessRule, actorID string, teamIDs, chatIDs []string) bson.M {
	if teamIDs == nil {
		teamIDs = []string{}
	}
	if chatIDs == nil {
		chatIDs = []string{}
	}
	switch rule {
	case model.AccessRuleOwnerSharedTeam:
		return bson.M{"$or": bson.A{
			bson.M{"user_id": actorID},
			bson.M{"access_users": actorID},
			bson.M{"team_id": bson.M{"$in": teamIDs}},
		}}
	case model.AccessRuleOwnerTeam:
		return bson.M{"$or": bson.A{
			bson.M{"user_id": actorID},
			bson.M{"team_id": bson.M{"$in": teamIDs}},
		}}
	case model.AccessRuleChatDerived:
		return bson.M{"chat_id": bson.M{"$in": chatIDs}}
	default:
		return bson.M{}
	}
}

// combineQuery ANDs the access clause onto the caller's base query. The
// clause narrows, never widens, what the base query matches, even when the
// base carries its own $or.
func combineQuery(base, clause bson.M) bson.M {
	if len(clause) == 0 {
		return base
	}
	if len(base) == 0 {
		return clause
	}
	return bson.M{"$and": bson.A{base, clause}}
}
