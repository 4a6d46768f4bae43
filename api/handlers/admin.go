package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/api"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/config"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/models"
)

// Admin represents the moderation handler
type Admin struct {
	SDB databases.StolenBikeDatabase
	FDB databases.FoundBikeDatabase
}

type moderatorTokenRequest struct {
	Password string `json:"password"`
}

// ModeratorTokenHandler exchanges the shared moderator password for a JWT
func (h Admin) ModeratorTokenHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req moderatorTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	moderatorPassword := os.Getenv("MODERATOR_PASSWORD")
	if moderatorPassword == "" {
		config.ErrorStatus("server misconfigured", http.StatusInternalServerError, w, fmt.Errorf("MODERATOR_PASSWORD not set"))
		return
	}

	given := sha256.Sum256([]byte(req.Password))
	expected := sha256.Sum256([]byte(moderatorPassword))
	if subtle.ConstantTimeCompare(given[:], expected[:]) != 1 {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, fmt.Errorf("moderator password mismatch"))
		return
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		config.ErrorStatus("server misconfigured", http.StatusInternalServerError, w, fmt.Errorf("JWT_SECRET not set"))
		return
	}

	claims := jwt.MapClaims{
		"scope": "moderator",
		"typ":   "access",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		config.ErrorStatus("token generation failed", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"token": signed})
}

// verifyModeratorToken checks the Authorization bearer JWT and its scope
func verifyModeratorToken(r *http.Request) error {
	reqToken := r.Header.Get("Authorization")
	splitToken := strings.Split(reqToken, "Bearer ")
	if len(splitToken) != 2 {
		return fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(splitToken[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["scope"] != "moderator" {
		return fmt.Errorf("token missing moderator scope")
	}
	return nil
}

// RemoveReportHandler soft-removes a reported listing. Moderators use this to
// take down spam or abusive reports without destroying the record.
func (h Admin) RemoveReportHandler(w http.ResponseWriter, r *http.Request) {
	if err := verifyModeratorToken(r); err != nil {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
		return
	}

	reportKind := mux.Vars(r)["report_kind"]
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	set := bson.M{"$set": bson.M{
		"status":    models.ReportStatusRemoved,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now().UTC()),
	}}

	switch reportKind {
	case "stolen":
		if _, err := h.SDB.FindOne(ctx, bson.M{"_id": rID}); err != nil {
			config.ErrorStatus("failed to get stolen bike report by ID", http.StatusNotFound, w, err)
			return
		}
		if err := h.SDB.UpdateOne(ctx, bson.M{"_id": rID}, set); err != nil {
			config.ErrorStatus("failed to remove stolen bike report", http.StatusInternalServerError, w, err)
			return
		}
	case "found":
		if _, err := h.FDB.FindOne(ctx, bson.M{"_id": rID}); err != nil {
			config.ErrorStatus("failed to get found bike report by ID", http.StatusNotFound, w, err)
			return
		}
		if err := h.FDB.UpdateOne(ctx, bson.M{"_id": rID}, set); err != nil {
			config.ErrorStatus("failed to remove found bike report", http.StatusInternalServerError, w, err)
			return
		}
	default:
		config.ErrorStatus("invalid report kind", http.StatusBadRequest, w, fmt.Errorf("report kind must be stolen or found, got %q", reportKind))
		return
	}

	zap.S().Infow("report removed by moderator", "reportKind", reportKind, "reportId", reportID)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Report removed successfully"})
}
