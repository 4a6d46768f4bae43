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

// FoundBike exported for testing purposes
type FoundBike struct {
	DB         databases.FoundBikeDatabase
	Matchmaker Matchmaker
	Extractor  matching.Extractor
}

// CreateFoundBikeHandler creates a new found bike report, extracts image
// features from the first photo and runs an inline match pass against active
// stolen-bike reports
func (f FoundBike) CreateFoundBikeHandler(w http.ResponseWriter, r *http.Request) {
	var report models.FoundBike
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
	if !models.ValidCondition(report.Condition) {
		config.ErrorStatus("invalid bike condition", http.StatusBadRequest, w, fmt.Errorf("unknown condition %q", report.Condition))
		return
	}

	report.ID = primitive.NewObjectID()
	report.Status = models.ReportStatusActive
	now := primitive.NewDateTimeFromTime(time.Now())
	report.CreatedAt = now
	report.UpdatedAt = now

	report.ImageFeatures = extractFromFirstPhoto(r.Context(), f.Extractor, report.Photos[0])

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := f.DB.InsertOne(ctx, report); err != nil {
		config.ErrorStatus("failed to create found bike report", http.StatusInternalServerError, w, err)
		return
	}

	created, err := f.Matchmaker.RecordMatchesForFound(ctx, &report)
	if err != nil {
		zap.S().Warnw("match pass failed for new found bike report",
			"foundBikeId", report.ID.Hex(),
			"error", err,
		)
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "Found bike report created successfully",
		"id":         report.ID.Hex(),
		"report":     report,
		"newMatches": created,
	})
}

// FoundBikeByIDHandler returns a found bike report by ID
func (f FoundBike) FoundBikeByIDHandler(w http.ResponseWriter, r *http.Request) {
	foundBikeID := mux.Vars(r)["found_bike_id"]

	zap.S().Debugf("found_bike_id: %v", foundBikeID)

	fID, err := primitive.ObjectIDFromHex(foundBikeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := f.DB.FindOne(ctx, bson.M{"_id": fID})
	if err != nil {
		config.ErrorStatus("failed to get found bike report by ID", http.StatusNotFound, w, err)
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

// FoundBikesHandler returns all found bike reports with pagination and
// optional status/city/type filters
func (f FoundBike) FoundBikesHandler(w http.ResponseWriter, r *http.Request) {
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

	dbResp, err := f.DB.Find(ctx, filter, opts)
	if err != nil {
		config.ErrorStatus("failed to get found bike reports", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.FoundBike{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// FoundBikesByUserIDHandler returns all found bike reports submitted by the given user
func (f FoundBike) FoundBikesByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	zap.S().Debugf("user_id: '%v'", userID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := f.DB.Find(ctx, bson.M{"ownerId": userID}, &options.FindOptions{
		Sort: bson.M{"_id": -1},
	})
	if err != nil {
		config.ErrorStatus("failed to get found bike reports", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.FoundBike{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

var foundBikeMutableFields = map[string]bool{
	"color":      true,
	"type":       true,
	"features":   true,
	"location":   true,
	"status":     true,
	"photos":     true,
	"condition":  true,
	"dateFound":  true,
	"stillThere": true,
}

// UpdateFoundBikeHandler updates a found bike report's owner-editable fields
func (f FoundBike) UpdateFoundBikeHandler(w http.ResponseWriter, r *http.Request) {
	foundBikeID := mux.Vars(r)["found_bike_id"]

	fID, err := primitive.ObjectIDFromHex(foundBikeID)
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
		if foundBikeMutableFields[key] {
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

	if _, err := f.DB.FindOne(ctx, bson.M{"_id": fID}); err != nil {
		config.ErrorStatus("failed to find found bike report", http.StatusNotFound, w, err)
		return
	}

	if err := f.DB.UpdateOne(ctx, bson.M{"_id": fID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update found bike report", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Found bike report updated successfully",
	})
}

// DeleteFoundBikeHandler removes a found bike report from the matching pool
// by flipping its status to removed
func (f FoundBike) DeleteFoundBikeHandler(w http.ResponseWriter, r *http.Request) {
	foundBikeID := mux.Vars(r)["found_bike_id"]

	fID, err := primitive.ObjectIDFromHex(foundBikeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	err = f.DB.UpdateOne(ctx, bson.M{"_id": fID}, bson.M{"$set": bson.M{
		"status":    models.ReportStatusRemoved,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to remove found bike report", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Found bike report removed successfully",
	})
}
