package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/api/handlers"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/api/scheduler"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/config"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	a.Initialize() //initialize database and router

	mm := handlers.Matchmaker{
		SDB:       databases.NewStolenBikeDatabase(a.DBHelper),
		FDB:       databases.NewFoundBikeDatabase(a.DBHelper),
		MDB:       databases.NewMatchDatabase(a.DBHelper),
		Threshold: a.Config.MatchThreshold,
	}
	s := scheduler.NewScheduler(mm, databases.NewJobLockDatabase(a.DBHelper))
	s.Start()
	defer s.Stop()

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	zap.S().Infow("bike-finder-api is up and running",
		"port", port,
		"url", baseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
