package config_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/changebag/causeconnect-api/config"
)

func TestNewReadsEnvironment(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://localhost:27017")
	os.Setenv("DB_NAME", "causeconnect-test")
	os.Setenv("BASE_URL", "https://changebag.org")
	os.Setenv("PORT", "8080")
	defer func() {
		os.Unsetenv("DB_URI")
		os.Unsetenv("DB_NAME")
		os.Unsetenv("BASE_URL")
		os.Unsetenv("PORT")
	}()

	c := config.New()

	assert.Equal(t, "mongodb://localhost:27017", c.URL)
	assert.Equal(t, "causeconnect-test", c.DatabaseName)
	assert.Equal(t, "https://changebag.org", c.BaseURL)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "https://changebag.org", config.BaseURL())
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()

	config.ErrorStatus("failed to get cause by ID", http.StatusNotFound, rr, errors.New("mongo: no documents in result"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t,
		`{"Response": {"Message": "failed to get cause by ID", "Error": "mongo: no documents in result"}}`,
		rr.Body.String())
}
