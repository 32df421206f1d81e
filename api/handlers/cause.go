package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/changebag/causeconnect-api/api"
	"github.com/changebag/causeconnect-api/api/handlers/inventory"
	"github.com/changebag/causeconnect-api/config"
	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/models"
)

// Cause exported for testing purposes
type Cause struct {
	DB   databases.CauseDatabase
	SDB  databases.SponsorshipDatabase
	CLDB databases.ClaimDatabase
}

type createCauseRequest struct {
	Title                 string     `json:"title"`
	Description           string     `json:"description"`
	Category              string     `json:"category"`
	ImageURL              string     `json:"imageUrl"`
	TargetAmount          float64    `json:"targetAmount"`
	Creator               string     `json:"creator"`
	DistributionStartDate *time.Time `json:"distributionStartDate"`
	DistributionEndDate   *time.Time `json:"distributionEndDate"`
}

// CausesHandler returns all approved causes, paginated
func (c Cause) CausesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	limit := getLimit(r)
	page := getPage(r)

	dbResp, err := c.DB.Find(ctx, bson.M{"status": models.CauseStatusApproved},
		databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get causes", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Cause{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CauseByIDHandler returns a cause by ID along with its derived tote inventory
func (c Cause) CauseByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	causeID := mux.Vars(r)["cause_id"]

	zap.S().Debugf("cause_id: %v", causeID)

	cID, err := primitive.ObjectIDFromHex(causeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := c.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get cause by ID", http.StatusNotFound, w, err)
		return
	}

	inv, err := loadInventory(ctx, c.SDB, c.CLDB, cID)
	if err != nil {
		config.ErrorStatus("failed to compute tote inventory", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(models.CauseDetailResponse{
		Cause:          *dbResp,
		TotalTotes:     inv.TotalTotes,
		ClaimedTotes:   inv.ClaimedTotes,
		AvailableTotes: inv.AvailableTotes,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CauseInventoryHandler returns just the derived tote inventory for a cause
func (c Cause) CauseInventoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	causeID := mux.Vars(r)["cause_id"]

	cID, err := primitive.ObjectIDFromHex(causeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	inv, err := loadInventory(ctx, c.SDB, c.CLDB, cID)
	if err != nil {
		config.ErrorStatus("failed to compute tote inventory", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(inv)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateCauseHandler creates a new cause in pending state
func (c Cause) CreateCauseHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var req createCauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	missing := missingFields([]requiredField{
		{"title", req.Title == ""},
		{"description", req.Description == ""},
		{"targetAmount", req.TargetAmount <= 0},
		{"creator", req.Creator == ""},
	})
	if len(missing) > 0 {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w, missingFieldsError(missing))
		return
	}

	now := time.Now()
	cause := models.Cause{
		Title:                 req.Title,
		Description:           req.Description,
		Category:              req.Category,
		ImageURL:              req.ImageURL,
		TargetAmount:          req.TargetAmount,
		CurrentAmount:         0,
		Status:                models.CauseStatusPending,
		IsOnline:              false,
		Creator:               req.Creator,
		DistributionStartDate: req.DistributionStartDate,
		DistributionEndDate:   req.DistributionEndDate,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	res, err := c.DB.InsertOne(ctx, cause)
	if err != nil {
		config.ErrorStatus("failed to create cause", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{"_id": res.Decode(), "status": cause.Status})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// CausesByCreatorHandler returns all causes created by the given user
func (c Cause) CausesByCreatorHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	userID := mux.Vars(r)["user_id"]

	dbResp, err := c.DB.Find(ctx, bson.M{"creator": userID})
	if err != nil {
		config.ErrorStatus("failed to get causes by creator", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Cause{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteCauseHandler deletes a cause by ID
func (c Cause) DeleteCauseHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	causeID := mux.Vars(r)["cause_id"]

	cID, err := primitive.ObjectIDFromHex(causeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	if err := c.DB.DeleteOne(ctx, bson.M{"_id": cID}); err != nil {
		config.ErrorStatus("failed to delete cause", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}

// loadInventory fetches a cause's sponsorships and claims and derives the
// tote inventory from them
func loadInventory(ctx context.Context, sdb databases.SponsorshipDatabase, cldb databases.ClaimDatabase, causeID primitive.ObjectID) (inventory.Inventory, error) {
	sponsorships, err := sdb.Find(ctx, bson.M{"cause": causeID})
	if err != nil {
		return inventory.Inventory{}, err
	}
	claims, err := cldb.Find(ctx, bson.M{"causeId": causeID})
	if err != nil {
		return inventory.Inventory{}, err
	}
	return inventory.Compute(sponsorships, claims), nil
}

// recomputeCauseAmount recalculates a cause's currentAmount as the sum of
// totalAmount over its approved sponsorships. It runs after every sponsorship
// mutation so the stored amount can never drift for long.
func recomputeCauseAmount(ctx context.Context, cdb databases.CauseDatabase, sdb databases.SponsorshipDatabase, causeID primitive.ObjectID) error {
	sponsorships, err := sdb.Find(ctx, bson.M{
		"cause":  causeID,
		"status": models.SponsorshipStatusApproved,
	})
	if err != nil {
		return err
	}

	var total float64
	for _, s := range sponsorships {
		total += s.TotalAmount
	}

	_, err = cdb.UpdateOne(ctx,
		bson.M{"_id": causeID},
		bson.M{"$set": bson.M{"currentAmount": total, "updatedAt": time.Now()}},
	)
	return err
}
