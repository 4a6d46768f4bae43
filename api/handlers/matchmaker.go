package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/matching"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/models"
)

// Error kinds surfaced by match operations. Handlers map ErrValidation to 400
// and ErrInvalidTransition to 409.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Matchmaker holds the shared match-finding and match-creation rules used by
// the report handlers, the match handler and the background scan job
type Matchmaker struct {
	SDB       databases.StolenBikeDatabase
	FDB       databases.FoundBikeDatabase
	MDB       databases.MatchDatabase
	Threshold float64
}

// activeWithFeatures selects reports that can participate in a match scan
func activeWithFeatures() bson.M {
	return bson.M{
		"status":        models.ReportStatusActive,
		"imageFeatures": bson.M{"$exists": true, "$ne": []interface{}{}},
	}
}

// ActiveStolenWithFeatures returns every active stolen bike report eligible
// for a match scan
func (m Matchmaker) ActiveStolenWithFeatures(ctx context.Context) ([]models.StolenBike, error) {
	return m.SDB.Find(ctx, activeWithFeatures())
}

// CandidatesForStolen ranks active found-bike reports against a stolen report.
// Reports without image features are skipped on both sides.
func (m Matchmaker) CandidatesForStolen(ctx context.Context, stolen *models.StolenBike) ([]matching.Result, error) {
	if len(stolen.ImageFeatures) == 0 {
		return []matching.Result{}, nil
	}
	foundBikes, err := m.FDB.Find(ctx, activeWithFeatures())
	if err != nil {
		return nil, err
	}
	candidates := make([]matching.Candidate, 0, len(foundBikes))
	for _, f := range foundBikes {
		candidates = append(candidates, matching.Candidate{ID: f.ID.Hex(), Embedding: f.ImageFeatures})
	}
	return matching.FindMatches(stolen.ImageFeatures, candidates, m.Threshold), nil
}

// CandidatesForFound ranks active stolen-bike reports against a found report
func (m Matchmaker) CandidatesForFound(ctx context.Context, found *models.FoundBike) ([]matching.Result, error) {
	if len(found.ImageFeatures) == 0 {
		return []matching.Result{}, nil
	}
	stolenBikes, err := m.SDB.Find(ctx, activeWithFeatures())
	if err != nil {
		return nil, err
	}
	candidates := make([]matching.Candidate, 0, len(stolenBikes))
	for _, s := range stolenBikes {
		candidates = append(candidates, matching.Candidate{ID: s.ID.Hex(), Embedding: s.ImageFeatures})
	}
	return matching.FindMatches(found.ImageFeatures, candidates, m.Threshold), nil
}

// CreateMatch validates the pairing rules and persists a new pending match.
// Both reports must exist and be active, the score must be within
// [threshold, 1], and the pair must not already have a match row.
func (m Matchmaker) CreateMatch(ctx context.Context, stolenID, foundID primitive.ObjectID, score float64) (*models.Match, error) {
	if score < m.Threshold || score > 1 {
		return nil, fmt.Errorf("%w: score %v outside [%v, 1]", ErrValidation, score, m.Threshold)
	}

	stolen, err := m.SDB.FindOne(ctx, bson.M{"_id": stolenID})
	if err != nil {
		return nil, fmt.Errorf("%w: stolen bike report not found", ErrValidation)
	}
	if stolen.Status != models.ReportStatusActive {
		return nil, fmt.Errorf("%w: stolen bike report is %s", ErrValidation, stolen.Status)
	}

	found, err := m.FDB.FindOne(ctx, bson.M{"_id": foundID})
	if err != nil {
		return nil, fmt.Errorf("%w: found bike report not found", ErrValidation)
	}
	if found.Status != models.ReportStatusActive {
		return nil, fmt.Errorf("%w: found bike report is %s", ErrValidation, found.Status)
	}

	count, err := m.MDB.CountDocuments(ctx, bson.M{"stolenBikeId": stolenID, "foundBikeId": foundID})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: match already exists for this pair", ErrValidation)
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	match := models.Match{
		ID:              primitive.NewObjectID(),
		StolenBikeID:    stolenID,
		FoundBikeID:     foundID,
		SimilarityScore: score,
		Status:          models.MatchStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := m.MDB.InsertOne(ctx, match); err != nil {
		return nil, err
	}
	return &match, nil
}

// UpdateStatus applies the match state machine. Moving to chatting allocates a
// chat room; moving to resolved requires a resolution and is terminal.
func (m Matchmaker) UpdateStatus(ctx context.Context, matchID primitive.ObjectID, newStatus models.MatchStatus, resolution models.MatchResolution) (*models.Match, error) {
	match, err := m.MDB.FindOne(ctx, bson.M{"_id": matchID})
	if err != nil {
		return nil, fmt.Errorf("%w: match not found", ErrValidation)
	}

	if !models.CanTransition(match.Status, newStatus) {
		return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, match.Status, newStatus)
	}
	if newStatus == models.MatchStatusResolved && !models.ValidResolution(resolution) {
		return nil, fmt.Errorf("%w: resolved requires a resolution of %s or %s", ErrInvalidTransition, models.ResolutionReunited, models.ResolutionFalseAlarm)
	}

	set := bson.M{
		"status":    newStatus,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}
	if newStatus == models.MatchStatusResolved {
		set["resolution"] = resolution
	}
	if newStatus == models.MatchStatusChatting && match.ChatRoomID == "" {
		set["chatRoomId"] = uuid.New().String()
	}

	if err := m.MDB.UpdateOne(ctx, bson.M{"_id": matchID}, bson.M{"$set": set}); err != nil {
		return nil, err
	}

	match.Status = newStatus
	if res, ok := set["resolution"]; ok {
		match.Resolution = res.(models.MatchResolution)
	}
	if room, ok := set["chatRoomId"]; ok {
		match.ChatRoomID = room.(string)
	}
	return match, nil
}

// RecordMatchesForStolen persists a pending match for every candidate above
// threshold. Pairs that already have a match are skipped silently.
func (m Matchmaker) RecordMatchesForStolen(ctx context.Context, stolen *models.StolenBike) (int, error) {
	results, err := m.CandidatesForStolen(ctx, stolen)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, res := range results {
		foundID, err := primitive.ObjectIDFromHex(res.ID)
		if err != nil {
			continue
		}
		if _, err := m.CreateMatch(ctx, stolen.ID, foundID, res.Similarity); err != nil {
			if errors.Is(err, ErrValidation) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

// RecordMatchesForFound persists a pending match for every candidate above
// threshold, mirroring RecordMatchesForStolen for the opposite report kind
func (m Matchmaker) RecordMatchesForFound(ctx context.Context, found *models.FoundBike) (int, error) {
	results, err := m.CandidatesForFound(ctx, found)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, res := range results {
		stolenID, err := primitive.ObjectIDFromHex(res.ID)
		if err != nil {
			continue
		}
		if _, err := m.CreateMatch(ctx, stolenID, found.ID, res.Similarity); err != nil {
			if errors.Is(err, ErrValidation) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
