package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/changebag/causeconnect-api/api/handlers"
	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/databases/mocks"
	"github.com/changebag/causeconnect-api/models"
)

func TestAdmin_AdminLoginHandlerMissingFields(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/admin/login", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}

	admin := handlers.Admin{
		ADB: databases.NewAdminDatabase(&MockDatabaseHelper{}),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(admin.AdminLoginHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	assert.Contains(t, rr.Body.String(), "missing: email, password")
}

func TestAdmin_AdminLoginHandlerUnknownEmail(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/admin/login", strings.NewReader(`{"email": "nobody@changebag.org", "password": "hunter2"}`))
	if err != nil {
		t.Fatal(err)
	}

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	singleResultHelper = &mocks.SingleResultHelper{}

	singleResultHelper.(*mocks.SingleResultHelper).On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))
	conn.(*mocks.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*MockDatabaseHelper).On("Collection", "admin_users").Return(conn)

	admin := handlers.Admin{
		ADB: databases.NewAdminDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(admin.AdminLoginHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusUnauthorized {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
	}

	// the same error for unknown email and wrong password
	assert.Contains(t, rr.Body.String(), "invalid email or password")
}

func TestAdmin_ApproveCauseHandlerNotPending(t *testing.T) {
	req, err := http.NewRequest("PUT", "/api/v1/admin/cause/608cafe595eb9dc05379b7f4/approve", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"cause_id": "608cafe595eb9dc05379b7f4"})

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	singleResultHelper = &mocks.SingleResultHelper{}

	singleResultHelper.(*mocks.SingleResultHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Cause)
		(*arg).Status = models.CauseStatusApproved
	})
	conn.(*mocks.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*MockDatabaseHelper).On("Collection", "causes").Return(conn)

	admin := handlers.Admin{
		CDB: databases.NewCauseDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(admin.ApproveCauseHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}

	assert.Contains(t, rr.Body.String(), "cause is not pending")
}
