package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/changebag/causeconnect-api/api/handlers"
	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/databases/mocks"
	"github.com/changebag/causeconnect-api/models"
)

func TestWaitlist_JoinWaitlistHandlerMissingFields(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/waitlist", strings.NewReader(`{"causeId": "608cafe595eb9dc05379b7f4"}`))
	if err != nil {
		t.Fatal(err)
	}

	wl := handlers.Waitlist{
		DB: databases.NewWaitlistDatabase(&MockDatabaseHelper{}),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wl.JoinWaitlistHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	assert.Contains(t, rr.Body.String(), "missing: email, fullName")
}

func waitlistFindOneReturning(db *MockDatabaseHelper, set func(*models.WaitlistEntry)) {
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.WaitlistEntry)
		set(*arg)
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "waitlist").Return(conn)
}

func TestWaitlist_ValidateMagicLinkHandlerExpired(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/waitlist/validate/some-token", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"token": "some-token"})

	expired := time.Now().Add(-time.Hour)
	db := &MockDatabaseHelper{}
	waitlistFindOneReturning(db, func(e *models.WaitlistEntry) {
		e.Status = models.WaitlistStatusNotified
		e.MagicLinkExpires = &expired
	})

	wl := handlers.Waitlist{
		DB: databases.NewWaitlistDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wl.ValidateMagicLinkHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
	}

	assert.Contains(t, rr.Body.String(), "magic link is invalid or expired")
}

func TestWaitlist_ValidateMagicLinkHandlerValid(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/waitlist/validate/some-token", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"token": "some-token"})

	expires := time.Now().Add(time.Hour)
	db := &MockDatabaseHelper{}
	waitlistFindOneReturning(db, func(e *models.WaitlistEntry) {
		e.Status = models.WaitlistStatusNotified
		e.Email = "sam@example.com"
		e.FullName = "Sam Lee"
		e.Position = 3
		e.MagicLinkExpires = &expires
	})

	wl := handlers.Waitlist{
		DB: databases.NewWaitlistDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wl.ValidateMagicLinkHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	assert.Contains(t, rr.Body.String(), `"valid":true`)
	assert.Contains(t, rr.Body.String(), `"position":3`)
}

func TestWaitlist_MarkWaitlistClaimedHandlerAlreadyClaimed(t *testing.T) {
	req, err := http.NewRequest("PUT", "/api/v1/admin/waitlist/608cafe595eb9dc05379b7f4/claimed", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"waitlist_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	waitlistFindOneReturning(db, func(e *models.WaitlistEntry) {
		e.Status = models.WaitlistStatusClaimed
	})

	wl := handlers.Waitlist{
		DB: databases.NewWaitlistDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wl.MarkWaitlistClaimedHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}
}
