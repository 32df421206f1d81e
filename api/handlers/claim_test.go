package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/changebag/causeconnect-api/api/handlers"
	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/databases/mocks"
	"github.com/changebag/causeconnect-api/models"
)

func TestClaim_CreateClaimHandlerMissingFields(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/claim", strings.NewReader(`{"email": "sam@example.com"}`))
	if err != nil {
		t.Fatal(err)
	}

	c := handlers.Claim{
		DB: databases.NewClaimDatabase(&MockDatabaseHelper{}),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CreateClaimHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	assert.Contains(t, rr.Body.String(), "missing: causeId, fullName, phone, address, city, postalCode")
}

func claimFindOneReturning(db *MockDatabaseHelper, set func(*models.Claim)) {
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Claim)
		set(*arg)
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "claims").Return(conn)
}

func TestClaim_UpdateClaimStatusHandlerBackwardMove(t *testing.T) {
	req, err := http.NewRequest("PUT", "/api/v1/admin/claim/608cafe595eb9dc05379b7f4/status", strings.NewReader(`{"status": "verified"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"claim_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	claimFindOneReturning(db, func(c *models.Claim) {
		c.Status = models.ClaimStatusShipped
	})

	c := handlers.Claim{
		DB: databases.NewClaimDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.UpdateClaimStatusHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}

	assert.Contains(t, rr.Body.String(), "cannot move claim from shipped back to verified")
}

func TestClaim_UpdateClaimStatusHandlerTerminal(t *testing.T) {
	req, err := http.NewRequest("PUT", "/api/v1/admin/claim/608cafe595eb9dc05379b7f4/status", strings.NewReader(`{"status": "cancelled"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"claim_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	claimFindOneReturning(db, func(c *models.Claim) {
		c.Status = models.ClaimStatusDelivered
	})

	c := handlers.Claim{
		DB: databases.NewClaimDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.UpdateClaimStatusHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}

	assert.Contains(t, rr.Body.String(), "claim is delivered and cannot change status")
}

func claimStatusUpdateCapturing(db *MockDatabaseHelper, set func(*models.Claim), captured *bson.M) {
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Claim)
		set(*arg)
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil).Run(func(args mock.Arguments) {
		*captured = args.Get(2).(bson.M)
	})
	db.On("Collection", "claims").Return(conn)
}

func TestClaim_UpdateClaimStatusHandlerShippedSetsShippingDate(t *testing.T) {
	req, err := http.NewRequest("PUT", "/api/v1/admin/claim/608cafe595eb9dc05379b7f4/status", strings.NewReader(`{"status": "shipped"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"claim_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	var update bson.M
	claimStatusUpdateCapturing(db, func(c *models.Claim) {
		c.Status = models.ClaimStatusVerified
	}, &update)

	c := handlers.Claim{
		DB: databases.NewClaimDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.UpdateClaimStatusHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	set := update["$set"].(bson.M)
	assert.Equal(t, models.ClaimStatusShipped, set["status"])
	assert.Contains(t, set, "shippingDate")
	assert.NotContains(t, set, "deliveryDate")
}

func TestClaim_UpdateClaimStatusHandlerDeliveredSetsDeliveryDate(t *testing.T) {
	req, err := http.NewRequest("PUT", "/api/v1/admin/claim/608cafe595eb9dc05379b7f4/status", strings.NewReader(`{"status": "delivered"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"claim_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	var update bson.M
	claimStatusUpdateCapturing(db, func(c *models.Claim) {
		c.Status = models.ClaimStatusShipped
	}, &update)

	c := handlers.Claim{
		DB: databases.NewClaimDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.UpdateClaimStatusHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	set := update["$set"].(bson.M)
	assert.Equal(t, models.ClaimStatusDelivered, set["status"])
	assert.Contains(t, set, "deliveryDate")
	assert.NotContains(t, set, "shippingDate")
}

func TestClaim_UpdateClaimStatusHandlerQueryDeadline(t *testing.T) {
	req, err := http.NewRequest("PUT", "/api/v1/admin/claim/608cafe595eb9dc05379b7f4/status", strings.NewReader(`{"status": "shipped"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"claim_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Claim)
		(*arg).Status = models.ClaimStatusVerified
	})

	var hasDeadline bool
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, hasDeadline = ctx.Deadline()
	})
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)
	db.On("Collection", "claims").Return(conn)

	c := handlers.Claim{
		DB: databases.NewClaimDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.UpdateClaimStatusHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	assert.True(t, hasDeadline, "database calls should run under the query timeout")
}

func TestClaim_VerifyQrClaimHandlerWrongSource(t *testing.T) {
	req, err := http.NewRequest("PUT", "/api/v1/admin/claim/608cafe595eb9dc05379b7f4/verify-qr", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"claim_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	claimFindOneReturning(db, func(c *models.Claim) {
		c.Status = models.ClaimStatusPending
		c.Source = models.ClaimSourceDirect
	})

	c := handlers.Claim{
		DB: databases.NewClaimDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.VerifyQrClaimHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}

	assert.Contains(t, rr.Body.String(), "claim was not made via QR code")
}

func TestClaim_VerifyClaimOTPHandlerMissingCode(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/claim/608cafe595eb9dc05379b7f4/verify-otp", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"claim_id": "608cafe595eb9dc05379b7f4"})

	c := handlers.Claim{
		DB: databases.NewClaimDatabase(&MockDatabaseHelper{}),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.VerifyClaimOTPHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	assert.Contains(t, rr.Body.String(), "missing: code")
}
