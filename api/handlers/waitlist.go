package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
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

// Waitlist exported for testing purposes
type Waitlist struct {
	DB   databases.WaitlistDatabase
	CDB  databases.CauseDatabase
	SDB  databases.SponsorshipDatabase
	CLDB databases.ClaimDatabase
	CTR  databases.CounterDatabase
	Hub  *EventHub
}

type joinWaitlistRequest struct {
	CauseID     string `json:"causeId"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	NotifyEmail *bool  `json:"notifyEmail"`
}

// JoinWaitlistHandler appends a person to a cause waitlist. Positions come
// from an atomic per-cause counter so concurrent joins never collide.
func (wl Waitlist) JoinWaitlistHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var req joinWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	missing := missingFields([]requiredField{
		{"causeId", req.CauseID == ""},
		{"email", req.Email == ""},
		{"fullName", req.FullName == ""},
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
	if _, err := wl.CDB.FindOne(ctx, bson.M{"_id": causeID}); err != nil {
		config.ErrorStatus("failed to get cause by ID", http.StatusNotFound, w, err)
		return
	}

	if existing, err := wl.DB.FindOne(ctx, bson.M{"causeId": causeID, "email": req.Email}); err == nil && existing != nil {
		config.ErrorStatus("you are already on the waitlist for this cause", http.StatusConflict, w,
			fmt.Errorf("waitlist entry exists at position %d", existing.Position))
		return
	}

	position, err := wl.CTR.Next(ctx, databases.WaitlistScope(causeID.Hex()))
	if err != nil {
		config.ErrorStatus("failed to assign waitlist position", http.StatusInternalServerError, w, err)
		return
	}

	notify := true
	if req.NotifyEmail != nil {
		notify = *req.NotifyEmail
	}

	entry := models.WaitlistEntry{
		CauseID:     causeID,
		Email:       req.Email,
		FullName:    req.FullName,
		Phone:       req.Phone,
		Position:    position,
		Status:      models.WaitlistStatusWaiting,
		NotifyEmail: notify,
		CreatedAt:   time.Now(),
	}

	res, err := wl.DB.InsertOne(ctx, entry)
	if err != nil {
		if databases.IsDuplicateKeyError(err) {
			config.ErrorStatus("you are already on the waitlist for this cause", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to join waitlist", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"_id":      res.Decode(),
		"position": position,
		"status":   entry.Status,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// batch size for each pass over the waiting set; the sweep repeats until
// the set is drained, so this bounds memory, not how many get notified
const notifyBatchSize = 100

// notifyWaitlistMembers emails magic links to everyone still waiting on a
// cause, in position order. Runs after a sponsorship approval frees up
// inventory. Each entry is independent: a failed send is logged and the
// sweep continues.
func notifyWaitlistMembers(wdb databases.WaitlistDatabase, causeID primitive.ObjectID, causeTitle string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	for {
		// each marked entry leaves the waiting set, so re-reading the
		// first page walks the whole list
		opts := databases.PaginatedOpts(notifyBatchSize, 1)
		opts.SetSort(bson.M{"position": 1})
		entries, err := wdb.Find(ctx, bson.M{
			"causeId": causeID,
			"status":  models.WaitlistStatusWaiting,
		}, opts)
		if err != nil {
			zap.S().Errorw("failed to load waitlist for notification",
				"cause", causeID.Hex(),
				"error", err)
			return
		}
		if len(entries) == 0 {
			return
		}

		marked := 0
		for _, entry := range entries {
			token := uuid.New().String()
			now := time.Now()
			expires := now.Add(models.MagicLinkTTL)

			_, err := wdb.UpdateOne(ctx,
				bson.M{"_id": entry.ID, "status": models.WaitlistStatusWaiting},
				bson.M{"$set": bson.M{
					"status":           models.WaitlistStatusNotified,
					"magicLinkToken":   token,
					"magicLinkSentAt":  now,
					"magicLinkExpires": expires,
				}},
			)
			if err != nil {
				zap.S().Errorw("failed to mark waitlist entry notified",
					"entry", entry.ID.Hex(),
					"error", err)
				continue
			}
			marked++

			if !entry.NotifyEmail {
				continue
			}
			magicLink := fmt.Sprintf("%s/waitlist/claim?token=%s", config.BaseURL(), token)
			subject, plain, html := templates.WaitlistMagicLinkEmail(entry.FullName, causeTitle, magicLink)
			if err := sendEmail(entry.Email, subject, plain, html); err != nil {
				logEmailFailure("waitlist-magic-link", entry.Email, err)
			}
		}
		if marked == 0 {
			// nothing in the batch could be updated, re-reading would
			// return the same entries
			zap.S().Errorw("waitlist notification made no progress, giving up",
				"cause", causeID.Hex(),
				"remaining", len(entries))
			return
		}
		if len(entries) < notifyBatchSize {
			return
		}
	}
}

// findValidMagicLink resolves a token to its waitlist entry, enforcing the
// notified state and the expiry window
func (wl Waitlist) findValidMagicLink(ctx context.Context, token string) (*models.WaitlistEntry, error) {
	entry, err := wl.DB.FindOne(ctx, bson.M{
		"magicLinkToken": token,
		"status":         models.WaitlistStatusNotified,
	})
	if err != nil {
		return nil, fmt.Errorf("magic link not found: %w", err)
	}
	if entry.MagicLinkExpires == nil || time.Now().After(*entry.MagicLinkExpires) {
		return nil, fmt.Errorf("magic link expired")
	}
	return entry, nil
}

// ValidateMagicLinkHandler answers whether a magic link token is still good
// and returns the entry it belongs to
func (wl Waitlist) ValidateMagicLinkHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	token := mux.Vars(r)["token"]

	entry, err := wl.findValidMagicLink(ctx, token)
	if err != nil {
		config.ErrorStatus("magic link is invalid or expired", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"valid":    true,
		"causeId":  entry.CauseID.Hex(),
		"email":    entry.Email,
		"fullName": entry.FullName,
		"position": entry.Position,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type magicLinkClaimRequest struct {
	Token      string `json:"token"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// ClaimViaMagicLinkHandler converts a notified waitlist entry into a tote
// claim. The entry flips to claimed only after the claim insert succeeds, so
// a failed insert leaves the link usable.
func (wl Waitlist) ClaimViaMagicLinkHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var req magicLinkClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	missing := missingFields([]requiredField{
		{"token", req.Token == ""},
		{"address", req.Address == ""},
		{"city", req.City == ""},
		{"postalCode", req.PostalCode == ""},
	})
	if len(missing) > 0 {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w, missingFieldsError(missing))
		return
	}

	entry, err := wl.findValidMagicLink(ctx, req.Token)
	if err != nil {
		config.ErrorStatus("magic link is invalid or expired", http.StatusNotFound, w, err)
		return
	}

	inv, err := loadInventory(ctx, wl.SDB, wl.CLDB, entry.CauseID)
	if err != nil {
		config.ErrorStatus("failed to load inventory", http.StatusInternalServerError, w, err)
		return
	}
	if inv.AvailableTotes <= 0 {
		config.ErrorStatus("no totes available for this cause", http.StatusConflict, w,
			fmt.Errorf("available totes is %d", inv.AvailableTotes))
		return
	}

	now := time.Now()
	claim := models.Claim{
		CauseID:       entry.CauseID,
		Email:         entry.Email,
		FullName:      entry.FullName,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Source:        models.ClaimSourceMagicLink,
		Status:        models.ClaimStatusVerified,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	res, err := wl.CLDB.InsertOne(ctx, claim)
	if err != nil {
		if databases.IsDuplicateKeyError(err) {
			config.ErrorStatus("you have already claimed a tote for this cause", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to create claim", http.StatusInternalServerError, w, err)
		return
	}

	_, err = wl.DB.UpdateOne(ctx,
		bson.M{"_id": entry.ID},
		bson.M{"$set": bson.M{"status": models.WaitlistStatusClaimed}},
	)
	if err != nil {
		// the claim exists; the entry sweep will catch the stale status
		zap.S().Errorw("failed to mark waitlist entry claimed",
			"entry", entry.ID.Hex(),
			"error", err)
	}

	wl.Hub.Broadcast(Event{
		Type:    "claim.created",
		CauseID: entry.CauseID.Hex(),
	})

	b, err := json.Marshal(map[string]interface{}{
		"_id":    res.Decode(),
		"status": claim.Status,
		"source": claim.Source,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// WaitlistByCauseHandler returns a cause's waitlist in position order
func (wl Waitlist) WaitlistByCauseHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	causeID := mux.Vars(r)["cause_id"]

	cID, err := primitive.ObjectIDFromHex(causeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	opts := databases.PaginatedOpts(getLimit(r), getPage(r))
	opts.SetSort(bson.M{"position": 1})
	filter := bson.M{"causeId": cID}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	dbResp, err := wl.DB.Find(ctx, filter, opts)
	if err != nil {
		config.ErrorStatus("failed to get waitlist", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.WaitlistEntry{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MarkWaitlistClaimedHandler lets an admin manually resolve an entry, for
// claims that happened offline
func (wl Waitlist) MarkWaitlistClaimedHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	waitlistID := mux.Vars(r)["waitlist_id"]

	wID, err := primitive.ObjectIDFromHex(waitlistID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	entry, err := wl.DB.FindOne(ctx, bson.M{"_id": wID})
	if err != nil {
		config.ErrorStatus("failed to get waitlist entry by ID", http.StatusNotFound, w, err)
		return
	}
	if entry.Status == models.WaitlistStatusClaimed {
		config.ErrorStatus("waitlist entry is already claimed", http.StatusConflict, w,
			fmt.Errorf("current status is %s", entry.Status))
		return
	}

	_, err = wl.DB.UpdateOne(ctx,
		bson.M{"_id": wID},
		bson.M{"$set": bson.M{"status": models.WaitlistStatusClaimed}},
	)
	if err != nil {
		config.ErrorStatus("failed to update waitlist entry", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "claimed"}`))
}
