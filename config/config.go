package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// DefaultMatchThreshold is the minimum similarity required before two reports
// are surfaced as a candidate match
const DefaultMatchThreshold = 0.6

// Config holds the project config values
type Config struct {
	URL            string
	DatabaseName   string
	BaseURL        string
	Port           string
	EmbedderURL    string
	MatchThreshold float64
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:            os.Getenv("DB_URI"),
		DatabaseName:   os.Getenv("DB_NAME"),
		BaseURL:        os.Getenv("BASE_URL"),
		Port:           os.Getenv("PORT"),
		EmbedderURL:    os.Getenv("EMBEDDER_URL"),
		MatchThreshold: matchThreshold(),
	}

}

func matchThreshold() float64 {
	v := os.Getenv("MATCH_THRESHOLD")
	if v == "" {
		return DefaultMatchThreshold
	}
	t, err := strconv.ParseFloat(v, 64)
	if err != nil || t <= 0 || t > 1 {
		zap.S().Warnf("invalid MATCH_THRESHOLD %q, using default of %v", v, DefaultMatchThreshold)
		return DefaultMatchThreshold
	}
	return t
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
}
