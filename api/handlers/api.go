package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/api"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/config"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/matching"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/models"
)

// requestTimeout bounds every /api/v1 request end to end; it sits above the
// per-query timeout so a single slow query trips first
const requestTimeout = 30 * time.Second

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Extractor matching.Extractor
	DBHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.DBHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	mm := Matchmaker{
		SDB:       databases.NewStolenBikeDatabase(a.DBHelper),
		FDB:       databases.NewFoundBikeDatabase(a.DBHelper),
		MDB:       databases.NewMatchDatabase(a.DBHelper),
		Threshold: a.Config.MatchThreshold,
	}

	u := User{DB: databases.NewUserDatabase(a.DBHelper)}
	sb := StolenBike{DB: databases.NewStolenBikeDatabase(a.DBHelper), Matchmaker: mm, Extractor: a.Extractor}
	fb := FoundBike{DB: databases.NewFoundBikeDatabase(a.DBHelper), Matchmaker: mm, Extractor: a.Extractor}
	match := Match{DB: databases.NewMatchDatabase(a.DBHelper), Matchmaker: mm}
	photo := Photo{}
	cloudinaryHandler := CloudinaryHandler{}
	admin := Admin{SDB: databases.NewStolenBikeDatabase(a.DBHelper), FDB: databases.NewFoundBikeDatabase(a.DBHelper)}
	chat := NewChatHub(databases.NewMatchDatabase(a.DBHelper))

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(requestTimeout))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/check-user", http.HandlerFunc(u.UserCheckEmailHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")

	apiCreate.Handle("/stolen-bike", api.Middleware(http.HandlerFunc(sb.CreateStolenBikeHandler))).Methods("POST")
	apiCreate.Handle("/stolen-bike/{stolen_bike_id}", api.Middleware(http.HandlerFunc(sb.StolenBikeByIDHandler))).Methods("GET")
	apiCreate.Handle("/stolen-bike/{stolen_bike_id}", api.Middleware(http.HandlerFunc(sb.UpdateStolenBikeHandler))).Methods("PUT")
	apiCreate.Handle("/stolen-bike/{stolen_bike_id}", api.Middleware(http.HandlerFunc(sb.DeleteStolenBikeHandler))).Methods("DELETE")
	apiCreate.Handle("/stolen-bikes", api.Middleware(http.HandlerFunc(sb.StolenBikesHandler))).Methods("GET")
	apiCreate.Handle("/stolen-bikes/user/{user_id}", api.Middleware(http.HandlerFunc(sb.StolenBikesByUserIDHandler))).Methods("GET")

	apiCreate.Handle("/found-bike", api.Middleware(http.HandlerFunc(fb.CreateFoundBikeHandler))).Methods("POST")
	apiCreate.Handle("/found-bike/{found_bike_id}", api.Middleware(http.HandlerFunc(fb.FoundBikeByIDHandler))).Methods("GET")
	apiCreate.Handle("/found-bike/{found_bike_id}", api.Middleware(http.HandlerFunc(fb.UpdateFoundBikeHandler))).Methods("PUT")
	apiCreate.Handle("/found-bike/{found_bike_id}", api.Middleware(http.HandlerFunc(fb.DeleteFoundBikeHandler))).Methods("DELETE")
	apiCreate.Handle("/found-bikes", api.Middleware(http.HandlerFunc(fb.FoundBikesHandler))).Methods("GET")
	apiCreate.Handle("/found-bikes/user/{user_id}", api.Middleware(http.HandlerFunc(fb.FoundBikesByUserIDHandler))).Methods("GET")

	apiCreate.Handle("/matches/candidates/{report_kind}/{report_id}", api.Middleware(http.HandlerFunc(match.CandidatesHandler))).Methods("GET")
	apiCreate.Handle("/match", api.Middleware(http.HandlerFunc(match.CreateMatchHandler))).Methods("POST")
	apiCreate.Handle("/match/{match_id}", api.Middleware(http.HandlerFunc(match.MatchByIDHandler))).Methods("GET")
	apiCreate.Handle("/match/{match_id}/status", api.Middleware(http.HandlerFunc(match.UpdateMatchStatusHandler))).Methods("PUT")
	apiCreate.Handle("/matches", api.Middleware(http.HandlerFunc(match.MatchesHandler))).Methods("GET")

	apiCreate.Handle("/photos/upload", api.Middleware(http.HandlerFunc(photo.UploadPhotoHandler))).Methods("POST")
	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	apiCreate.Handle("/admin/moderator-token", http.HandlerFunc(admin.ModeratorTokenHandler)).Methods("POST")
	apiCreate.Handle("/admin/{report_kind}/{report_id}/remove", http.HandlerFunc(admin.RemoveReportHandler)).Methods("POST")

	// match chat rooms
	r.HandleFunc("/ws/chat", chat.HandleChat)

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.DBHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("bike-finder-api has connected to the database")

	if a.Extractor == nil {
		a.Extractor = matching.NewRemoteExtractor(a.Config.EmbedderURL)
	}

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
