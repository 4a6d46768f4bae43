package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// MatchStatus enumerates the lifecycle states of a match
type MatchStatus string

// Match statuses. Resolved is terminal.
const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusChatting MatchStatus = "chatting"
	MatchStatusResolved MatchStatus = "resolved"
)

// MatchResolution enumerates the outcomes recorded when a match is resolved
type MatchResolution string

// Match resolutions
const (
	ResolutionReunited   MatchResolution = "reunited"
	ResolutionFalseAlarm MatchResolution = "false-alarm"
)

// Match holds the structure for the matches collection in mongo.
// SimilarityScore is the raw cosine similarity in [0,1]; percentage conversion
// happens only in API responses.
type Match struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	StolenBikeID    primitive.ObjectID `bson:"stolenBikeId" json:"stolenBikeId"`
	FoundBikeID     primitive.ObjectID `bson:"foundBikeId" json:"foundBikeId"`
	SimilarityScore float64            `bson:"similarityScore" json:"similarityScore"`
	Status          MatchStatus        `bson:"status" json:"status"`
	Resolution      MatchResolution    `bson:"resolution,omitempty" json:"resolution,omitempty"`
	ChatRoomID      string             `bson:"chatRoomId,omitempty" json:"chatRoomId,omitempty"`
	CreatedAt       primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt       primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}

// ValidResolution reports whether res is an accepted match resolution
func ValidResolution(res MatchResolution) bool {
	return res == ResolutionReunited || res == ResolutionFalseAlarm
}

// CanTransition reports whether a match may move from one status to another.
// Resolved is terminal; chatting may not go back to pending.
func CanTransition(from, to MatchStatus) bool {
	switch from {
	case MatchStatusPending:
		return to == MatchStatusChatting || to == MatchStatusResolved
	case MatchStatusChatting:
		return to == MatchStatusResolved
	}
	return false
}
