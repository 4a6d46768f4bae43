package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/api"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/config"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/matching"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/models"
)

// StolenBike exported for testing purposes
type StolenBike struct {
	DB         databases.StolenBikeDatabase
	Matchmaker Matchmaker
	Extractor  matching.Extractor
}

// CreateStolenBikeHandler creates a new stolen bike report, extracts image
// features from the first photo and runs an inline match pass against active
// found-bike reports
func (s StolenBike) CreateStolenBikeHandler(w http.ResponseWriter, r *http.Request) {
	var report models.StolenBike
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if report.OwnerID == "" {
		config.ErrorStatus("ownerId is required", http.StatusBadRequest, w, fmt.Errorf("missing ownerId"))
		return
	}
	if len(report.Photos) == 0 {
		config.ErrorStatus("at least one photo is required", http.StatusBadRequest, w, fmt.Errorf("missing photos"))
		return
	}
	if !models.ValidBikeType(report.Type) {
		config.ErrorStatus("invalid bike type", http.StatusBadRequest, w, fmt.Errorf("unknown bike type %q", report.Type))
		return
	}

	report.ID = primitive.NewObjectID()
	report.Status = models.ReportStatusActive
	now := primitive.NewDateTimeFromTime(time.Now())
	report.CreatedAt = now
	report.UpdatedAt = now

	// image features are computed once, from the first photo, at creation time
	report.ImageFeatures = extractFromFirstPhoto(r.Context(), s.Extractor, report.Photos[0])

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := s.DB.InsertOne(ctx, report); err != nil {
		config.ErrorStatus("failed to create stolen bike report", http.StatusInternalServerError, w, err)
		return
	}

	// best-effort inline match pass; failures never block report creation
	created, err := s.Matchmaker.RecordMatchesForStolen(ctx, &report)
	if err != nil {
		zap.S().Warnw("match pass failed for new stolen bike report",
			"stolenBikeId", report.ID.Hex(),
			"error", err,
		)
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "Stolen bike report created successfully",
		"id":         report.ID.Hex(),
		"report":     report,
		"newMatches": created,
	})
}

// StolenBikeByIDHandler returns a stolen bike report by ID
func (s StolenBike) StolenBikeByIDHandler(w http.ResponseWriter, r *http.Request) {
	stolenBikeID := mux.Vars(r)["stolen_bike_id"]

	zap.S().Debugf("stolen_bike_id: %v", stolenBikeID)

	sID, err := primitive.ObjectIDFromHex(stolenBikeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := s.DB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get stolen bike report by ID", http.StatusNotFound, w, err)
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

// StolenBikesHandler returns all stolen bike reports with pagination and
// optional status/city/type filters
func (s StolenBike) StolenBikesHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || Limit <= 0 {
		Limit = 10
	}
	Page = getPage(Page, r)

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if city := r.URL.Query().Get("city"); city != "" {
		filter["location.city"] = city
	}
	if bikeType := r.URL.Query().Get("type"); bikeType != "" {
		filter["type"] = bikeType
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := databases.PaginatedOpts(Limit, Page)
	opts.SetSort(bson.M{"_id": -1})

	dbResp, err := s.DB.Find(ctx, filter, opts)
	if err != nil {
		config.ErrorStatus("failed to get stolen bike reports", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.StolenBike{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// StolenBikesByUserIDHandler returns all stolen bike reports submitted by the given user
func (s StolenBike) StolenBikesByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	zap.S().Debugf("user_id: '%v'", userID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := s.DB.Find(ctx, bson.M{"ownerId": userID}, &options.FindOptions{
		Sort: bson.M{"_id": -1},
	})
	if err != nil {
		config.ErrorStatus("failed to get stolen bike reports", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.StolenBike{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// stolenBikeMutableFields are the owner-editable fields. Image features are
// deliberately absent: they are computed once at creation and photo edits do
// not refresh them.
var stolenBikeMutableFields = map[string]bool{
	"color":             true,
	"type":              true,
	"features":          true,
	"location":          true,
	"status":            true,
	"photos":            true,
	"brand":             true,
	"model":             true,
	"size":              true,
	"dateStolen":        true,
	"contactPreference": true,
}

// UpdateStolenBikeHandler updates a stolen bike report's owner-editable fields
func (s StolenBike) UpdateStolenBikeHandler(w http.ResponseWriter, r *http.Request) {
	stolenBikeID := mux.Vars(r)["stolen_bike_id"]

	sID, err := primitive.ObjectIDFromHex(stolenBikeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var updateData map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{}
	for key, value := range updateData {
		if stolenBikeMutableFields[key] {
			set[key] = value
		}
	}
	if status, ok := set["status"]; ok {
		switch models.ReportStatus(fmt.Sprintf("%v", status)) {
		case models.ReportStatusActive, models.ReportStatusResolved, models.ReportStatusRemoved:
		default:
			config.ErrorStatus("invalid report status", http.StatusBadRequest, w, fmt.Errorf("unknown status %v", status))
			return
		}
	}
	if len(set) == 0 {
		config.ErrorStatus("no updatable fields provided", http.StatusBadRequest, w, fmt.Errorf("empty update"))
		return
	}
	set["updatedAt"] = primitive.NewDateTimeFromTime(time.Now())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := s.DB.FindOne(ctx, bson.M{"_id": sID}); err != nil {
		config.ErrorStatus("failed to find stolen bike report", http.StatusNotFound, w, err)
		return
	}

	if err := s.DB.UpdateOne(ctx, bson.M{"_id": sID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update stolen bike report", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Stolen bike report updated successfully",
	})
}

// DeleteStolenBikeHandler removes a stolen bike report from the matching pool.
// Reports are never hard-deleted; the status flips to removed so existing
// matches keep a valid reference.
func (s StolenBike) DeleteStolenBikeHandler(w http.ResponseWriter, r *http.Request) {
	stolenBikeID := mux.Vars(r)["stolen_bike_id"]

	sID, err := primitive.ObjectIDFromHex(stolenBikeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	err = s.DB.UpdateOne(ctx, bson.M{"_id": sID}, bson.M{"$set": bson.M{
		"status":    models.ReportStatusRemoved,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to remove stolen bike report", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Stolen bike report removed successfully",
	})
}
