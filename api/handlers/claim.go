package handlers

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/changebag/causeconnect-api/api"
	"github.com/changebag/causeconnect-api/config"
	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/models"
	templates "github.com/changebag/causeconnect-api/templates/html"
)

// Claim exported for testing purposes
type Claim struct {
	DB  databases.ClaimDatabase
	CDB databases.CauseDatabase
	SDB databases.SponsorshipDatabase
	Hub *EventHub
}

const otpTTL = 10 * time.Minute

// statusRank orders the fulfillment pipeline. Transitions may only move
// forward; cancelled is reachable from any non-terminal state.
var statusRank = map[string]int{
	models.ClaimStatusPending:   0,
	models.ClaimStatusVerified:  1,
	models.ClaimStatusShipped:   2,
	models.ClaimStatusDelivered: 3,
}

type createClaimRequest struct {
	CauseID       string `json:"causeId"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	Source        string `json:"source"`
	QRCodeScanned bool   `json:"qrCodeScanned"`
}

// CreateClaimHandler registers a tote claim against a cause. One claim per
// (cause, email); availability is checked against live inventory.
func (c Claim) CreateClaimHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var req createClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	missing := missingFields([]requiredField{
		{"causeId", req.CauseID == ""},
		{"fullName", req.FullName == ""},
		{"email", req.Email == ""},
		{"phone", req.Phone == ""},
		{"address", req.Address == ""},
		{"city", req.City == ""},
		{"postalCode", req.PostalCode == ""},
	})
	if len(missing) > 0 {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w, missingFieldsError(missing))
		return
	}

	causeID, err := primitive.ObjectIDFromHex(req.CauseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	if _, err := c.CDB.FindOne(ctx, bson.M{"_id": causeID}); err != nil {
		config.ErrorStatus("failed to get cause by ID", http.StatusNotFound, w, err)
		return
	}

	// friendly pre-check; the unique index is the real guard
	if existing, err := c.DB.FindOne(ctx, bson.M{"causeId": causeID, "email": req.Email}); err == nil && existing != nil {
		config.ErrorStatus("you have already claimed a tote for this cause", http.StatusConflict, w,
			fmt.Errorf("claim exists for email %s", req.Email))
		return
	}

	inv, err := loadInventory(ctx, c.SDB, c.DB, causeID)
	if err != nil {
		config.ErrorStatus("failed to load inventory", http.StatusInternalServerError, w, err)
		return
	}
	if inv.AvailableTotes <= 0 {
		config.ErrorStatus("no totes available for this cause", http.StatusConflict, w,
			fmt.Errorf("available totes is %d", inv.AvailableTotes))
		return
	}

	source := req.Source
	if source == "" {
		source = models.ClaimSourceDirect
	}

	now := time.Now()
	claim := models.Claim{
		CauseID:       causeID,
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Source:        source,
		QRCodeScanned: req.QRCodeScanned,
		Status:        models.ClaimStatusPending,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	res, err := c.DB.InsertOne(ctx, claim)
	if err != nil {
		if databases.IsDuplicateKeyError(err) {
			config.ErrorStatus("you have already claimed a tote for this cause", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to create claim", http.StatusInternalServerError, w, err)
		return
	}

	c.Hub.Broadcast(Event{
		Type:    "claim.created",
		CauseID: causeID.Hex(),
	})

	b, err := json.Marshal(map[string]interface{}{
		"_id":    res.Decode(),
		"status": claim.Status,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ClaimsHandler returns claims newest-first, optionally filtered by cause
// and status, with paging metadata
func (c Claim) ClaimsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	limit := getLimit(r)
	page := getPage(r)

	filter := bson.M{}
	if causeID := r.URL.Query().Get("causeId"); causeID != "" {
		cID, err := primitive.ObjectIDFromHex(causeID)
		if err != nil {
			config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
			return
		}
		filter["causeId"] = cID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	total, err := c.DB.CountDocuments(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to count claims", http.StatusInternalServerError, w, err)
		return
	}

	opts := databases.PaginatedOpts(limit, page)
	opts.SetSort(bson.M{"createdAt": -1})
	dbResp, err := c.DB.Find(ctx, filter, opts)
	if err != nil {
		config.ErrorStatus("failed to get claims", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Claim{}
	}

	pages := int(total) / int(*opts.Limit)
	if int(total)%int(*opts.Limit) != 0 {
		pages++
	}

	b, err := json.Marshal(models.ClaimListResponse{
		Claims: dbResp,
		Total:  total,
		Page:   int(*opts.Skip)/int(*opts.Limit) + 1,
		Pages:  pages,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateClaimStatusHandler moves a claim through the fulfillment pipeline.
// Backward moves are rejected; cancellation is allowed from any non-terminal
// state.
func (c Claim) UpdateClaimStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	claimID := mux.Vars(r)["claim_id"]

	cID, err := primitive.ObjectIDFromHex(claimID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	claim, err := c.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get claim by ID", http.StatusNotFound, w, err)
		return
	}

	if err := validateClaimTransition(claim.Status, body.Status); err != nil {
		config.ErrorStatus("invalid status transition", http.StatusConflict, w, err)
		return
	}

	now := time.Now()
	set := bson.M{
		"status":    body.Status,
		"updatedAt": now,
	}
	switch body.Status {
	case models.ClaimStatusVerified:
		set["emailVerified"] = true
	case models.ClaimStatusShipped:
		set["shippingDate"] = now
	case models.ClaimStatusDelivered:
		set["deliveryDate"] = now
	}

	_, err = c.DB.UpdateOne(ctx, bson.M{"_id": cID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update claim status", http.StatusInternalServerError, w, err)
		return
	}

	c.Hub.Broadcast(Event{
		Type:    "claim." + body.Status,
		ID:      cID.Hex(),
		CauseID: claim.CauseID.Hex(),
	})

	claim.Status = body.Status
	b, err := json.Marshal(claim)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func validateClaimTransition(from, to string) error {
	if from == to {
		return fmt.Errorf("claim is already %s", from)
	}
	if from == models.ClaimStatusDelivered || from == models.ClaimStatusCancelled {
		return fmt.Errorf("claim is %s and cannot change status", from)
	}
	if to == models.ClaimStatusCancelled {
		return nil
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return fmt.Errorf("unknown claim status %q", from)
	}
	toRank, ok := statusRank[to]
	if !ok {
		return fmt.Errorf("unknown claim status %q", to)
	}
	if toRank <= fromRank {
		return fmt.Errorf("cannot move claim from %s back to %s", from, to)
	}
	return nil
}

// VerifyQrClaimHandler verifies a QR-sourced claim on the spot, skipping the
// OTP email step
func (c Claim) VerifyQrClaimHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	claimID := mux.Vars(r)["claim_id"]

	cID, err := primitive.ObjectIDFromHex(claimID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	claim, err := c.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get claim by ID", http.StatusNotFound, w, err)
		return
	}
	if claim.Source != models.ClaimSourceQR && !claim.QRCodeScanned {
		config.ErrorStatus("claim was not made via QR code", http.StatusConflict, w,
			fmt.Errorf("claim source is %s", claim.Source))
		return
	}
	if claim.Status != models.ClaimStatusPending {
		config.ErrorStatus("claim is not pending", http.StatusConflict, w,
			fmt.Errorf("current status is %s", claim.Status))
		return
	}

	now := time.Now()
	_, err = c.DB.UpdateOne(ctx,
		bson.M{"_id": cID},
		bson.M{"$set": bson.M{
			"status":        models.ClaimStatusVerified,
			"emailVerified": true,
			"updatedAt":     now,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to verify claim", http.StatusInternalServerError, w, err)
		return
	}

	c.Hub.Broadcast(Event{
		Type:    "claim.verified",
		ID:      cID.Hex(),
		CauseID: claim.CauseID.Hex(),
	})

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "verified"}`))
}

// SendClaimOTPHandler generates a 6 digit code, stores it with a short TTL
// and emails it to the claimant
func (c Claim) SendClaimOTPHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	claimID := mux.Vars(r)["claim_id"]

	cID, err := primitive.ObjectIDFromHex(claimID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	claim, err := c.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get claim by ID", http.StatusNotFound, w, err)
		return
	}
	if claim.Status != models.ClaimStatusPending {
		config.ErrorStatus("claim is not pending", http.StatusConflict, w,
			fmt.Errorf("current status is %s", claim.Status))
		return
	}

	code, err := generateOTP()
	if err != nil {
		config.ErrorStatus("failed to generate OTP", http.StatusInternalServerError, w, err)
		return
	}
	expires := time.Now().Add(otpTTL)

	_, err = c.DB.UpdateOne(ctx,
		bson.M{"_id": cID},
		bson.M{"$set": bson.M{
			"otpCode":      code,
			"otpExpiresAt": expires,
			"updatedAt":    time.Now(),
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to store OTP", http.StatusInternalServerError, w, err)
		return
	}

	go func() {
		subject, plain, html := templates.ClaimOTPEmail(claim.FullName, code)
		if err := sendEmail(claim.Email, subject, plain, html); err != nil {
			logEmailFailure("claim-otp", claim.Email, err)
		}
	}()

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"sent": true}`))
}

// VerifyClaimOTPHandler checks the submitted code against the stored one and
// promotes the claim to verified
func (c Claim) VerifyClaimOTPHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	claimID := mux.Vars(r)["claim_id"]

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.Code == "" {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w, missingFieldsError([]string{"code"}))
		return
	}

	cID, err := primitive.ObjectIDFromHex(claimID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	claim, err := c.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get claim by ID", http.StatusNotFound, w, err)
		return
	}
	if claim.OTPCode == "" || claim.OTPExpiresAt == nil {
		config.ErrorStatus("no OTP issued for this claim", http.StatusBadRequest, w,
			fmt.Errorf("claim %s has no active OTP", cID.Hex()))
		return
	}
	if time.Now().After(*claim.OTPExpiresAt) {
		config.ErrorStatus("OTP has expired", http.StatusBadRequest, w,
			fmt.Errorf("OTP expired at %s", claim.OTPExpiresAt.Format(time.RFC3339)))
		return
	}
	if claim.OTPCode != body.Code {
		config.ErrorStatus("invalid OTP code", http.StatusBadRequest, w,
			fmt.Errorf("OTP mismatch for claim %s", cID.Hex()))
		return
	}

	now := time.Now()
	_, err = c.DB.UpdateOne(ctx,
		bson.M{"_id": cID},
		bson.M{
			"$set": bson.M{
				"status":        models.ClaimStatusVerified,
				"emailVerified": true,
				"updatedAt":     now,
			},
			"$unset": bson.M{"otpCode": "", "otpExpiresAt": ""},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to verify claim", http.StatusInternalServerError, w, err)
		return
	}

	c.Hub.Broadcast(Event{
		Type:    "claim.verified",
		ID:      cID.Hex(),
		CauseID: claim.CauseID.Hex(),
	})

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "verified"}`))
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
