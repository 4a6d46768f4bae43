package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/api"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/config"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/matching"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/models"
)

// Match exported for testing purposes
type Match struct {
	DB         databases.MatchDatabase
	Matchmaker Matchmaker
}

// candidateResponse is one ranked candidate in the candidates endpoint
// response. Similarity carries the raw score; the percentage is derived at
// this boundary only.
type candidateResponse struct {
	ReportID             string  `json:"reportId"`
	Similarity           float64 `json:"similarity"`
	SimilarityPercentage int     `json:"similarityPercentage"`
}

// CandidatesHandler runs the match finder for one report against all active
// opposite-kind reports and returns the ranked candidates without persisting
// anything
func (m Match) CandidatesHandler(w http.ResponseWriter, r *http.Request) {
	reportKind := mux.Vars(r)["report_kind"]
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var results []matching.Result
	switch reportKind {
	case "stolen":
		stolen, err := m.Matchmaker.SDB.FindOne(ctx, bson.M{"_id": rID})
		if err != nil {
			config.ErrorStatus("failed to get stolen bike report by ID", http.StatusNotFound, w, err)
			return
		}
		results, err = m.Matchmaker.CandidatesForStolen(ctx, stolen)
		if err != nil {
			config.ErrorStatus("failed to find match candidates", http.StatusInternalServerError, w, err)
			return
		}
	case "found":
		found, err := m.Matchmaker.FDB.FindOne(ctx, bson.M{"_id": rID})
		if err != nil {
			config.ErrorStatus("failed to get found bike report by ID", http.StatusNotFound, w, err)
			return
		}
		results, err = m.Matchmaker.CandidatesForFound(ctx, found)
		if err != nil {
			config.ErrorStatus("failed to find match candidates", http.StatusInternalServerError, w, err)
			return
		}
	default:
		config.ErrorStatus("invalid report kind", http.StatusBadRequest, w, fmt.Errorf("report kind must be stolen or found, got %q", reportKind))
		return
	}

	candidates := make([]candidateResponse, 0, len(results))
	for _, res := range results {
		candidates = append(candidates, candidateResponse{
			ReportID:             res.ID,
			Similarity:           res.Similarity,
			SimilarityPercentage: matching.Percentage(res.Similarity),
		})
	}

	b, err := json.Marshal(candidates)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateMatchHandler persists a match between a stolen and a found bike report
func (m Match) CreateMatchHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StolenBikeID    string  `json:"stolenBikeId"`
		FoundBikeID     string  `json:"foundBikeId"`
		SimilarityScore float64 `json:"similarityScore"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	sID, err := primitive.ObjectIDFromHex(body.StolenBikeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	fID, err := primitive.ObjectIDFromHex(body.FoundBikeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	match, err := m.Matchmaker.CreateMatch(ctx, sID, fID, body.SimilarityScore)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			config.ErrorStatus("match creation rejected", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to create match", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("match created",
		"matchId", match.ID.Hex(),
		"stolenBikeId", match.StolenBikeID.Hex(),
		"foundBikeId", match.FoundBikeID.Hex(),
		"similarityScore", match.SimilarityScore,
	)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Match created successfully",
		"id":      match.ID.Hex(),
		"match":   match,
	})
}

// MatchByIDHandler returns a match by ID
func (m Match) MatchByIDHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["match_id"]

	mID, err := primitive.ObjectIDFromHex(matchID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := m.DB.FindOne(ctx, bson.M{"_id": mID})
	if err != nil {
		config.ErrorStatus("failed to get match by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MatchesHandler returns matches with optional report/status filters
func (m Match) MatchesHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || Limit <= 0 {
		Limit = 10
	}
	Page = getPage(Page, r)

	filter := bson.M{}
	if stolenID := r.URL.Query().Get("stolenBikeId"); stolenID != "" {
		sID, err := primitive.ObjectIDFromHex(stolenID)
		if err != nil {
			config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
			return
		}
		filter["stolenBikeId"] = sID
	}
	if foundID := r.URL.Query().Get("foundBikeId"); foundID != "" {
		fID, err := primitive.ObjectIDFromHex(foundID)
		if err != nil {
			config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
			return
		}
		filter["foundBikeId"] = fID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := databases.PaginatedOpts(Limit, Page)
	opts.SetSort(bson.M{"similarityScore": -1})

	dbResp, err := m.DB.Find(ctx, filter, opts)
	if err != nil {
		config.ErrorStatus("failed to get matches", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.Match{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateMatchStatusHandler applies a status transition to a match
func (m Match) UpdateMatchStatusHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["match_id"]

	mID, err := primitive.ObjectIDFromHex(matchID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		Status     models.MatchStatus     `json:"status"`
		Resolution models.MatchResolution `json:"resolution,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	match, err := m.Matchmaker.UpdateStatus(ctx, mID, body.Status, body.Resolution)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			config.ErrorStatus("invalid match status transition", http.StatusConflict, w, err)
			return
		}
		if errors.Is(err, ErrValidation) {
			config.ErrorStatus("failed to find match", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to update match status", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Match status updated successfully",
		"match":   match,
	})
}
