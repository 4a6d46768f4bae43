package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/api/handlers"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases"
	mocksdb "github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases/mocks"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/matching"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/models"
)

func TestStolenBike_StolenBikeByIDHandlerInvalidID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/stolen-bike/1234", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"stolen_bike_id": "1234"})

	db := &mocksdb.DatabaseHelper{}

	u := handlers.StolenBike{
		DB: databases.NewStolenBikeDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.StolenBikeByIDHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to get objectID from Hex")
}

func TestStolenBike_StolenBikeByIDHandlerNotFound(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/stolen-bike/5fc51f58c72ff10004dca999", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"stolen_bike_id": "5fc51f58c72ff10004dca999"})

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	srHelper := &mocksdb.SingleResultHelper{}

	srHelper.On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))
	conn.On("FindOne", mock.Anything, mock.Anything).Return(srHelper)
	db.On("Collection", "stolenBikes").Return(conn)

	u := handlers.StolenBike{
		DB: databases.NewStolenBikeDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.StolenBikeByIDHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to get stolen bike report by ID")
}

func TestStolenBike_StolenBikeByIDHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/stolen-bike/5fc51f58c72ff10004dca382", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"stolen_bike_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	srHelper := &mocksdb.SingleResultHelper{}

	srHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.StolenBike)
		(*arg).OwnerID = "user-1"
		(*arg).Color = "red"
		(*arg).Type = models.BikeTypeMountain
		(*arg).Status = models.ReportStatusActive
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(srHelper)
	db.On("Collection", "stolenBikes").Return(conn)

	u := handlers.StolenBike{
		DB: databases.NewStolenBikeDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.StolenBikeByIDHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"color":"red"`)
	assert.Contains(t, rr.Body.String(), `"type":"mountain"`)
}

func TestStolenBike_CreateStolenBikeHandlerMissingOwner(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"photos": []string{"https://example.com/photo.jpg"},
		"type":   "road",
	})
	req, err := http.NewRequest("POST", "/api/v1/stolen-bike", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.StolenBike{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateStolenBikeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "ownerId is required")
}

func TestStolenBike_CreateStolenBikeHandlerMissingPhotos(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"ownerId": "user-1",
		"type":    "road",
	})
	req, err := http.NewRequest("POST", "/api/v1/stolen-bike", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.StolenBike{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateStolenBikeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "at least one photo is required")
}

func TestStolenBike_CreateStolenBikeHandlerInvalidType(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"ownerId": "user-1",
		"photos":  []string{"https://example.com/photo.jpg"},
		"type":    "unicycle",
	})
	req, err := http.NewRequest("POST", "/api/v1/stolen-bike", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.StolenBike{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateStolenBikeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid bike type")
}

func TestStolenBike_CreateStolenBikeHandlerSuccess(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"ownerId": "user-1",
		"photos":  []string{"https://example.com/photo.jpg"},
		"type":    "road",
		"color":   "blue",
	})
	req, err := http.NewRequest("POST", "/api/v1/stolen-bike", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	insertHelper := &mocksdb.InsertOneResultHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(insertHelper, nil)
	db.On("Collection", "stolenBikes").Return(conn)

	// no extractor is configured, so the report is saved without image
	// features and the inline match pass finds nothing
	u := handlers.StolenBike{
		DB: databases.NewStolenBikeDatabase(db),
		Matchmaker: handlers.Matchmaker{
			SDB:       databases.NewStolenBikeDatabase(db),
			FDB:       databases.NewFoundBikeDatabase(db),
			MDB:       databases.NewMatchDatabase(db),
			Threshold: 0.6,
		},
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateStolenBikeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "Stolen bike report created successfully")
	assert.Contains(t, rr.Body.String(), `"newMatches":0`)
	conn.AssertCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

type stubExtractor struct {
	features []float64
}

func (s stubExtractor) ExtractFeatures(ctx context.Context, img []byte) ([]float64, error) {
	return s.features, nil
}

// Full create flow: the first photo is fetched, its embedding lands on the
// report, and the inline match pass records a pending match against the
// closest active found-bike report.
func TestStolenBike_CreateStolenBikeHandlerCreatesPendingMatch(t *testing.T) {
	photoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	defer photoSrv.Close()

	foundID := primitive.NewObjectID()

	body, _ := json.Marshal(map[string]interface{}{
		"ownerId": "user-1",
		"photos":  []string{photoSrv.URL + "/bike.jpg"},
		"type":    "road",
	})
	req, err := http.NewRequest("POST", "/api/v1/stolen-bike", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &mocksdb.DatabaseHelper{}
	stolenConn := &mocksdb.CollectionHelper{}
	foundConn := &mocksdb.CollectionHelper{}
	matchConn := &mocksdb.CollectionHelper{}
	insertHelper := &mocksdb.InsertOneResultHelper{}
	stolenResult := &mocksdb.SingleResultHelper{}
	foundResult := &mocksdb.SingleResultHelper{}
	cursor := &mocksdb.CursorHelper{}

	stolenConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertHelper, nil)
	stolenResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.StolenBike)
		(*arg).Status = models.ReportStatusActive
	})
	stolenConn.On("FindOne", mock.Anything, mock.Anything).Return(stolenResult)

	// one active found bike at cosine similarity ~0.82 to the stub embedding
	cursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.FoundBike)
		*arg = []models.FoundBike{
			{ID: foundID, Status: models.ReportStatusActive, ImageFeatures: []float64{0.82, 0.5724, 0}},
		}
	})
	cursor.On("Close", mock.Anything).Return(nil)
	foundConn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	foundResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.FoundBike)
		(*arg).ID = foundID
		(*arg).Status = models.ReportStatusActive
	})
	foundConn.On("FindOne", mock.Anything, mock.Anything).Return(foundResult)

	var created models.Match
	matchConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	matchConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertHelper, nil).Run(func(args mock.Arguments) {
		created = args.Get(1).(models.Match)
	})

	db.On("Collection", "stolenBikes").Return(stolenConn)
	db.On("Collection", "foundBikes").Return(foundConn)
	db.On("Collection", "matches").Return(matchConn)

	u := handlers.StolenBike{
		DB:         databases.NewStolenBikeDatabase(db),
		Matchmaker: newMatchmaker(db),
		Extractor:  stubExtractor{features: []float64{1, 0, 0}},
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateStolenBikeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"newMatches":1`)
	matchConn.AssertCalled(t, "InsertOne", mock.Anything, mock.Anything)
	assert.Equal(t, foundID, created.FoundBikeID)
	assert.Equal(t, models.MatchStatusPending, created.Status)
	assert.InDelta(t, 0.82, created.SimilarityScore, 0.001)
	assert.Equal(t, 82, matching.Percentage(created.SimilarityScore))
}

func TestStolenBike_DeleteStolenBikeHandlerSoftDeletes(t *testing.T) {
	id := primitive.NewObjectID()
	req, err := http.NewRequest("DELETE", "/api/v1/stolen-bike/"+id.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"stolen_bike_id": id.Hex()})

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}

	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	db.On("Collection", "stolenBikes").Return(conn)

	u := handlers.StolenBike{
		DB: databases.NewStolenBikeDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.DeleteStolenBikeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Stolen bike report removed successfully")
	conn.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
	conn.AssertNotCalled(t, "DeleteOne", mock.Anything, mock.Anything)
}

func TestStolenBike_UpdateStolenBikeHandlerIgnoresImmutableFields(t *testing.T) {
	id := primitive.NewObjectID()
	body, _ := json.Marshal(map[string]interface{}{
		"imageFeatures": []float64{9, 9, 9},
		"ownerId":       "someone-else",
	})
	req, err := http.NewRequest("PUT", "/api/v1/stolen-bike/"+id.Hex(), bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"stolen_bike_id": id.Hex()})

	u := handlers.StolenBike{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UpdateStolenBikeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "no updatable fields provided")
}

func TestStolenBike_UpdateStolenBikeHandlerInvalidStatus(t *testing.T) {
	id := primitive.NewObjectID()
	body, _ := json.Marshal(map[string]interface{}{
		"status": "vanished",
	})
	req, err := http.NewRequest("PUT", "/api/v1/stolen-bike/"+id.Hex(), bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"stolen_bike_id": id.Hex()})

	u := handlers.StolenBike{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UpdateStolenBikeHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid report status")
}
