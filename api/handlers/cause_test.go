package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"

	"github.com/changebag/causeconnect-api/api/handlers"
	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/databases/mocks"
	"github.com/changebag/causeconnect-api/models"
)

func TestCause_CauseByIDHandlerBadID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/cause/1234", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"cause_id": "1234"})

	c := handlers.Cause{
		DB:   databases.NewCauseDatabase(&MockDatabaseHelper{}),
		SDB:  databases.NewSponsorshipDatabase(&MockDatabaseHelper{}),
		CLDB: databases.NewClaimDatabase(&MockDatabaseHelper{}),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CauseByIDHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "failed to get objectID from Hex", Error: "the provided hex string is not a valid ObjectID"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestCause_CreateCauseHandlerMissingFields(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/cause", strings.NewReader(`{"title": "Clean Water"}`))
	if err != nil {
		t.Fatal(err)
	}

	c := handlers.Cause{
		DB: databases.NewCauseDatabase(&MockDatabaseHelper{}),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CreateCauseHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	if !strings.Contains(rr.Body.String(), "missing: description, targetAmount, creator") {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
}

func TestCause_CausesHandlerEmpty(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/causes", nil)
	if err != nil {
		t.Fatal(err)
	}

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).On("Decode", mock.Anything).Return(nil)
	conn.(*mocks.CollectionHelper).On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.(*MockDatabaseHelper).On("Collection", "causes").Return(conn)

	c := handlers.Cause{
		DB: databases.NewCauseDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CausesHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	if rr.Body.String() != `[]` {
		t.Errorf("handler returned unexpected body: got %v want []", rr.Body.String())
	}
}

func TestCause_CauseInventoryHandlerFindError(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/cause/608cafe595eb9dc05379b7f4/inventory", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"cause_id": "608cafe595eb9dc05379b7f4"})

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}

	conn.(*mocks.CollectionHelper).On("Find", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))
	db.(*MockDatabaseHelper).On("Collection", "sponsorships").Return(conn)

	c := handlers.Cause{
		DB:   databases.NewCauseDatabase(db),
		SDB:  databases.NewSponsorshipDatabase(db),
		CLDB: databases.NewClaimDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CauseInventoryHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusInternalServerError {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusInternalServerError)
	}
}
