package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, DefaultMatchThreshold, conf.MatchThreshold)
}

func TestNewMatchThresholdOverride(t *testing.T) {
	os.Setenv("MATCH_THRESHOLD", "0.75")
	defer os.Unsetenv("MATCH_THRESHOLD")
	conf := New()

	assert.Equal(t, 0.75, conf.MatchThreshold)
}

func TestNewMatchThresholdInvalid(t *testing.T) {
	os.Setenv("MATCH_THRESHOLD", "nope")
	defer os.Unsetenv("MATCH_THRESHOLD")
	conf := New()

	assert.Equal(t, DefaultMatchThreshold, conf.MatchThreshold)
}

func TestErrorStatus(t *testing.T) {

	ErrorStatus("error it borked", http.StatusBadRequest, httptest.NewRecorder(), errors.New("bad request"))
	assert.True(t, true)
}
