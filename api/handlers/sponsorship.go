package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/changebag/causeconnect-api/api"
	"github.com/changebag/causeconnect-api/config"
	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/models"
	templates "github.com/changebag/causeconnect-api/templates/html"
)

// Sponsorship exported for testing purposes
type Sponsorship struct {
	DB  databases.SponsorshipDatabase
	CDB databases.CauseDatabase
	WDB databases.WaitlistDatabase
	Hub *EventHub
}

// rawDistributionLocation accepts both the flat location shape and the
// legacy nested one where "name" is itself an object carrying the fields
type rawDistributionLocation struct {
	Name          json.RawMessage `json:"name"`
	Address       string          `json:"address"`
	ContactPerson string          `json:"contactPerson"`
	Phone         string          `json:"phone"`
	Location      string          `json:"location"`
	TotesCount    int             `json:"totesCount"`
}

type createSponsorshipRequest struct {
	Cause                 string                    `json:"cause"`
	SelectedCause         string                    `json:"selectedCause"`
	Sponsor               string                    `json:"sponsor"`
	OrganizationName      string                    `json:"organizationName"`
	ContactName           string                    `json:"contactName"`
	Email                 string                    `json:"email"`
	Phone                 string                    `json:"phone"`
	ToteQuantity          int                       `json:"toteQuantity"`
	NumberOfTotes         int                       `json:"numberOfTotes"`
	UnitPrice             float64                   `json:"unitPrice"`
	TotalAmount           float64                   `json:"totalAmount"`
	Message               string                    `json:"message"`
	LogoURL               string                    `json:"logoUrl"`
	LogoPosition          *models.LogoPosition      `json:"logoPosition"`
	Demographics          *models.Demographics      `json:"demographics"`
	DistributionType      string                    `json:"distributionType"`
	SelectedCities        []string                  `json:"selectedCities"`
	DistributionLocations []rawDistributionLocation `json:"distributionLocations"`
	DistributionStartDate *time.Time                `json:"distributionStartDate"`
	DistributionEndDate   *time.Time                `json:"distributionEndDate"`
}

// flattenLocations converts either input shape to the canonical flat one
func flattenLocations(raw []rawDistributionLocation) []models.DistributionLocation {
	out := make([]models.DistributionLocation, 0, len(raw))
	for _, rl := range raw {
		loc := models.DistributionLocation{
			Address:       rl.Address,
			ContactPerson: rl.ContactPerson,
			Phone:         rl.Phone,
			Location:      rl.Location,
			TotesCount:    rl.TotesCount,
		}

		var name string
		if err := json.Unmarshal(rl.Name, &name); err == nil {
			loc.Name = name
		} else {
			// nested shape: name carries the whole location object
			var nested models.DistributionLocation
			if err := json.Unmarshal(rl.Name, &nested); err == nil {
				loc.Name = nested.Name
				if nested.Address != "" {
					loc.Address = nested.Address
				}
				if nested.ContactPerson != "" {
					loc.ContactPerson = nested.ContactPerson
				}
				if nested.Phone != "" {
					loc.Phone = nested.Phone
				}
				if nested.Location != "" {
					loc.Location = nested.Location
				}
				if nested.TotesCount != 0 {
					loc.TotesCount = nested.TotesCount
				}
			}
		}
		out = append(out, loc)
	}
	return out
}

// CreateSponsorshipHandler validates and stores a sponsorship submission in
// pending state. Field aliases from older wizard versions are reconciled
// before validation so both spellings land set and equal.
func (s Sponsorship) CreateSponsorshipHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var req createSponsorshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	// reconcile field aliases
	if req.Cause == "" {
		req.Cause = req.SelectedCause
	}
	if req.ToteQuantity == 0 {
		req.ToteQuantity = req.NumberOfTotes
	}
	req.NumberOfTotes = req.ToteQuantity

	missing := missingFields([]requiredField{
		{"cause", req.Cause == ""},
		{"organizationName", req.OrganizationName == ""},
		{"contactName", req.ContactName == ""},
		{"email", req.Email == ""},
		{"phone", req.Phone == ""},
		{"toteQuantity", req.ToteQuantity <= 0},
		{"unitPrice", req.UnitPrice <= 0},
		{"distributionType", req.DistributionType == ""},
		{"selectedCities", len(req.SelectedCities) == 0},
		{"distributionStartDate", req.DistributionStartDate == nil},
		{"distributionEndDate", req.DistributionEndDate == nil},
		{"distributionLocations", req.DistributionType == models.DistributionTypePhysical && len(req.DistributionLocations) == 0},
	})
	if len(missing) > 0 {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w, missingFieldsError(missing))
		return
	}

	causeID, err := primitive.ObjectIDFromHex(req.Cause)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	if _, err := s.CDB.FindOne(ctx, bson.M{"_id": causeID}); err != nil {
		config.ErrorStatus("failed to get cause by ID", http.StatusNotFound, w, err)
		return
	}

	if req.TotalAmount == 0 {
		req.TotalAmount = float64(req.ToteQuantity) * req.UnitPrice
	}

	// defaults for optional wizard fields
	logoPosition := models.LogoPosition{X: 0, Y: 0, Scale: 1, Angle: 0}
	if req.LogoPosition != nil {
		logoPosition = *req.LogoPosition
	}
	demographics := models.Demographics{AgeGroups: []string{}}
	if req.Demographics != nil {
		demographics = *req.Demographics
		if demographics.AgeGroups == nil {
			demographics.AgeGroups = []string{}
		}
	}
	logoURL := req.LogoURL
	if logoURL == "" || logoURL == "null" || logoURL == "undefined" {
		logoURL = models.DefaultLogoURL
	}

	now := time.Now()
	sponsorship := models.Sponsorship{
		Cause:                 causeID,
		Sponsor:               req.Sponsor,
		OrganizationName:      req.OrganizationName,
		ContactName:           req.ContactName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		ToteQuantity:          req.ToteQuantity,
		NumberOfTotes:         req.NumberOfTotes,
		UnitPrice:             req.UnitPrice,
		TotalAmount:           req.TotalAmount,
		Message:               req.Message,
		LogoURL:               logoURL,
		LogoPosition:          logoPosition,
		Demographics:          demographics,
		DistributionType:      req.DistributionType,
		SelectedCities:        req.SelectedCities,
		DistributionLocations: flattenLocations(req.DistributionLocations),
		DistributionStartDate: req.DistributionStartDate,
		DistributionEndDate:   req.DistributionEndDate,
		Status:                models.SponsorshipStatusPending,
		IsOnline:              req.DistributionType == models.DistributionTypeOnline,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	res, err := s.DB.InsertOne(ctx, sponsorship)
	if err != nil {
		config.ErrorStatus("failed to create sponsorship", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"_id":         res.Decode(),
		"status":      sponsorship.Status,
		"totalAmount": sponsorship.TotalAmount,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// SponsorshipByIDHandler returns a sponsorship by ID
func (s Sponsorship) SponsorshipByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sponsorshipID := mux.Vars(r)["sponsorship_id"]

	sID, err := primitive.ObjectIDFromHex(sponsorshipID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := s.DB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get sponsorship by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SponsorshipsHandler returns sponsorships filtered by status, paginated
func (s Sponsorship) SponsorshipsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	limit := getLimit(r)
	page := getPage(r)

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	dbResp, err := s.DB.Find(ctx, filter, databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get sponsorships", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Sponsorship{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ApproveSponsorshipHandler transitions a pending sponsorship to approved,
// recomputes the cause amount and kicks off the best-effort side effects
func (s Sponsorship) ApproveSponsorshipHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sponsorshipID := mux.Vars(r)["sponsorship_id"]

	sID, err := primitive.ObjectIDFromHex(sponsorshipID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	sponsorship, err := s.DB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get sponsorship by ID", http.StatusNotFound, w, err)
		return
	}
	if sponsorship.Status != models.SponsorshipStatusPending {
		config.ErrorStatus("sponsorship is not pending", http.StatusConflict, w,
			fmt.Errorf("current status is %s", sponsorship.Status))
		return
	}

	now := time.Now()
	adminID := api.AdminIDFromContext(r.Context())
	_, err = s.DB.UpdateOne(ctx,
		bson.M{"_id": sID, "status": models.SponsorshipStatusPending},
		bson.M{"$set": bson.M{
			"status":     models.SponsorshipStatusApproved,
			"approvedBy": adminID,
			"approvedAt": now,
			"updatedAt":  now,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to approve sponsorship", http.StatusInternalServerError, w, err)
		return
	}

	if err := recomputeCauseAmount(ctx, s.CDB, s.DB, sponsorship.Cause); err != nil {
		zap.S().Errorw("failed to recompute cause amount after approval",
			"cause", sponsorship.Cause.Hex(),
			"error", err)
	}

	cause, err := s.CDB.FindOne(ctx, bson.M{"_id": sponsorship.Cause})
	causeTitle := ""
	if err == nil {
		causeTitle = cause.Title
	}

	// best-effort side effects: never fail the approval if these break
	go func() {
		subject, plain, html := templates.SponsorshipApprovedEmail(sponsorship.ContactName, causeTitle, sponsorship.ToteQuantity)
		if err := sendEmail(sponsorship.Email, subject, plain, html); err != nil {
			logEmailFailure("sponsorship-approved", sponsorship.Email, err)
		}
	}()
	go notifyWaitlistMembers(s.WDB, sponsorship.Cause, causeTitle)
	s.Hub.Broadcast(Event{
		Type:    "sponsorship.approved",
		ID:      sID.Hex(),
		CauseID: sponsorship.Cause.Hex(),
	})

	sponsorship.Status = models.SponsorshipStatusApproved
	sponsorship.ApprovedBy = adminID
	sponsorship.ApprovedAt = &now

	b, err := json.Marshal(sponsorship)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RejectSponsorshipHandler transitions a pending sponsorship to rejected and
// emails the sponsor a logo reupload link
func (s Sponsorship) RejectSponsorshipHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sponsorshipID := mux.Vars(r)["sponsorship_id"]

	sID, err := primitive.ObjectIDFromHex(sponsorshipID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.Reason == "" {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w, missingFieldsError([]string{"reason"}))
		return
	}

	sponsorship, err := s.DB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get sponsorship by ID", http.StatusNotFound, w, err)
		return
	}
	if sponsorship.Status != models.SponsorshipStatusPending {
		config.ErrorStatus("sponsorship is not pending", http.StatusConflict, w,
			fmt.Errorf("current status is %s", sponsorship.Status))
		return
	}

	now := time.Now()
	_, err = s.DB.UpdateOne(ctx,
		bson.M{"_id": sID},
		bson.M{"$set": bson.M{
			"status":          models.SponsorshipStatusRejected,
			"rejectionReason": body.Reason,
			"updatedAt":       now,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to reject sponsorship", http.StatusInternalServerError, w, err)
		return
	}

	if err := recomputeCauseAmount(ctx, s.CDB, s.DB, sponsorship.Cause); err != nil {
		zap.S().Errorw("failed to recompute cause amount after rejection",
			"cause", sponsorship.Cause.Hex(),
			"error", err)
	}

	cause, err := s.CDB.FindOne(ctx, bson.M{"_id": sponsorship.Cause})
	causeTitle := ""
	if err == nil {
		causeTitle = cause.Title
	}
	reuploadLink := fmt.Sprintf("%s/sponsorship/%s/reupload", config.BaseURL(), sID.Hex())

	go func() {
		subject, plain, html := templates.SponsorshipRejectedEmail(sponsorship.ContactName, causeTitle, body.Reason, reuploadLink)
		if err := sendEmail(sponsorship.Email, subject, plain, html); err != nil {
			logEmailFailure("sponsorship-rejected", sponsorship.Email, err)
		}
	}()

	sponsorship.Status = models.SponsorshipStatusRejected
	sponsorship.RejectionReason = body.Reason

	b, err := json.Marshal(sponsorship)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReuploadLogoHandler revives a rejected sponsorship back to pending with a
// fresh logo
func (s Sponsorship) ReuploadLogoHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sponsorshipID := mux.Vars(r)["sponsorship_id"]

	sID, err := primitive.ObjectIDFromHex(sponsorshipID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		LogoURL string `json:"logoUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.LogoURL == "" {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w, missingFieldsError([]string{"logoUrl"}))
		return
	}

	sponsorship, err := s.DB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get sponsorship by ID", http.StatusNotFound, w, err)
		return
	}
	if sponsorship.Status != models.SponsorshipStatusRejected {
		config.ErrorStatus("sponsorship is not rejected", http.StatusConflict, w,
			fmt.Errorf("current status is %s", sponsorship.Status))
		return
	}

	_, err = s.DB.UpdateOne(ctx,
		bson.M{"_id": sID},
		bson.M{
			"$set": bson.M{
				"status":    models.SponsorshipStatusPending,
				"logoUrl":   body.LogoURL,
				"updatedAt": time.Now(),
			},
			"$unset": bson.M{"rejectionReason": ""},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to reupload logo", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "pending"}`))
}

// EndCampaignHandler transitions an approved sponsorship to completed and
// takes the campaign offline
func (s Sponsorship) EndCampaignHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sponsorshipID := mux.Vars(r)["sponsorship_id"]

	sID, err := primitive.ObjectIDFromHex(sponsorshipID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	sponsorship, err := s.DB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get sponsorship by ID", http.StatusNotFound, w, err)
		return
	}
	if sponsorship.Status != models.SponsorshipStatusApproved {
		config.ErrorStatus("only approved campaigns can be ended", http.StatusConflict, w,
			fmt.Errorf("current status is %s", sponsorship.Status))
		return
	}

	now := time.Now()
	adminID := api.AdminIDFromContext(r.Context())
	_, err = s.DB.UpdateOne(ctx,
		bson.M{"_id": sID, "status": models.SponsorshipStatusApproved},
		bson.M{"$set": bson.M{
			"status":    models.SponsorshipStatusCompleted,
			"isOnline":  false,
			"endedAt":   now,
			"endedBy":   adminID,
			"updatedAt": now,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to end campaign", http.StatusInternalServerError, w, err)
		return
	}

	if err := recomputeCauseAmount(ctx, s.CDB, s.DB, sponsorship.Cause); err != nil {
		zap.S().Errorw("failed to recompute cause amount after campaign end",
			"cause", sponsorship.Cause.Hex(),
			"error", err)
	}

	cause, err := s.CDB.FindOne(ctx, bson.M{"_id": sponsorship.Cause})
	causeTitle := ""
	if err == nil {
		causeTitle = cause.Title
	}

	go func() {
		subject, plain, html := templates.SponsorshipCompletedEmail(sponsorship.ContactName, causeTitle)
		if err := sendEmail(sponsorship.Email, subject, plain, html); err != nil {
			logEmailFailure("sponsorship-completed", sponsorship.Email, err)
		}
	}()
	s.Hub.Broadcast(Event{
		Type:    "sponsorship.completed",
		ID:      sID.Hex(),
		CauseID: sponsorship.Cause.Hex(),
	})

	sponsorship.Status = models.SponsorshipStatusCompleted
	sponsorship.IsOnline = false
	sponsorship.EndedAt = &now
	sponsorship.EndedBy = adminID

	b, err := json.Marshal(sponsorship)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteSponsorshipHandler removes a sponsorship and recomputes the cause
// amount it contributed to
func (s Sponsorship) DeleteSponsorshipHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sponsorshipID := mux.Vars(r)["sponsorship_id"]

	sID, err := primitive.ObjectIDFromHex(sponsorshipID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	sponsorship, err := s.DB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get sponsorship by ID", http.StatusNotFound, w, err)
		return
	}

	if err := s.DB.DeleteOne(ctx, bson.M{"_id": sID}); err != nil {
		config.ErrorStatus("failed to delete sponsorship", http.StatusInternalServerError, w, err)
		return
	}

	if err := recomputeCauseAmount(ctx, s.CDB, s.DB, sponsorship.Cause); err != nil {
		zap.S().Errorw("failed to recompute cause amount after delete",
			"cause", sponsorship.Cause.Hex(),
			"error", err)
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}
