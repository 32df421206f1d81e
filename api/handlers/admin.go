package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/changebag/causeconnect-api/api"
	"github.com/changebag/causeconnect-api/config"
	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/models"
)

// Admin exported for testing purposes
type Admin struct {
	ADB  databases.AdminDatabase
	CDB  databases.CauseDatabase
	SDB  databases.SponsorshipDatabase
	CLDB databases.ClaimDatabase
	WDB  databases.WaitlistDatabase
}

const adminTokenTTL = 24 * time.Hour

// AdminLoginHandler exchanges admin credentials for a signed JWT
func (a Admin) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	missing := missingFields([]requiredField{
		{"email", body.Email == ""},
		{"password", body.Password == ""},
	})
	if len(missing) > 0 {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w, missingFieldsError(missing))
		return
	}

	admin, err := a.ADB.FindOne(ctx, bson.M{"email": body.Email, "active": true})
	if err != nil {
		config.ErrorStatus("invalid email or password", http.StatusUnauthorized, w,
			fmt.Errorf("no active admin for email"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(body.Password)); err != nil {
		config.ErrorStatus("invalid email or password", http.StatusUnauthorized, w, err)
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   admin.ID.Hex(),
		"email": admin.Email,
		"roles": admin.Roles,
		"scope": "admin",
		"typ":   "access",
		"iat":   now.Unix(),
		"exp":   now.Add(adminTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		config.ErrorStatus("failed to sign token", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"token":     signed,
		"expiresAt": now.Add(adminTokenTTL).Unix(),
		"email":     admin.Email,
		"roles":     admin.Roles,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type statusCount struct {
	Status string `bson:"_id" json:"status"`
	Count  int64  `bson:"count" json:"count"`
}

var countByStatusPipeline = []bson.M{
	{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
}

func statusCountsToMap(rows []statusCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out
}

// DashboardHandler aggregates per-status counts across the main collections
// for the admin overview
func (a Admin) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	causeCounts := map[string]int64{}
	for _, status := range []string{
		models.CauseStatusPending,
		models.CauseStatusApproved,
		models.CauseStatusCompleted,
		models.CauseStatusRejected,
	} {
		n, err := a.CDB.CountDocuments(ctx, bson.M{"status": status})
		if err != nil {
			config.ErrorStatus("failed to count causes", http.StatusInternalServerError, w, err)
			return
		}
		causeCounts[status] = n
	}

	cur, err := a.SDB.Aggregate(ctx, countByStatusPipeline)
	if err != nil {
		config.ErrorStatus("failed to aggregate sponsorships", http.StatusInternalServerError, w, err)
		return
	}
	var sponsorshipRows []statusCount
	if err := cur.Decode(&sponsorshipRows); err != nil {
		config.ErrorStatus("failed to decode sponsorship counts", http.StatusInternalServerError, w, err)
		return
	}

	cur, err = a.CLDB.Aggregate(ctx, countByStatusPipeline)
	if err != nil {
		config.ErrorStatus("failed to aggregate claims", http.StatusInternalServerError, w, err)
		return
	}
	var claimRows []statusCount
	if err := cur.Decode(&claimRows); err != nil {
		config.ErrorStatus("failed to decode claim counts", http.StatusInternalServerError, w, err)
		return
	}

	waiting, err := a.WDB.CountDocuments(ctx, bson.M{"status": models.WaitlistStatusWaiting})
	if err != nil {
		config.ErrorStatus("failed to count waitlist", http.StatusInternalServerError, w, err)
		return
	}
	notified, err := a.WDB.CountDocuments(ctx, bson.M{"status": models.WaitlistStatusNotified})
	if err != nil {
		config.ErrorStatus("failed to count waitlist", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"causes":       causeCounts,
		"sponsorships": statusCountsToMap(sponsorshipRows),
		"claims":       statusCountsToMap(claimRows),
		"waitlist": map[string]int64{
			"waiting":  waiting,
			"notified": notified,
		},
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ApproveCauseHandler makes a pending cause publicly visible
func (a Admin) ApproveCauseHandler(w http.ResponseWriter, r *http.Request) {
	a.setCauseStatus(w, r, models.CauseStatusApproved, "")
}

// RejectCauseHandler declines a pending cause with a reason
func (a Admin) RejectCauseHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	a.setCauseStatus(w, r, models.CauseStatusRejected, body.Reason)
}

func (a Admin) setCauseStatus(w http.ResponseWriter, r *http.Request, status, reason string) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	causeID := mux.Vars(r)["cause_id"]

	cID, err := primitive.ObjectIDFromHex(causeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	cause, err := a.CDB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get cause by ID", http.StatusNotFound, w, err)
		return
	}
	if cause.Status != models.CauseStatusPending {
		config.ErrorStatus("cause is not pending", http.StatusConflict, w,
			fmt.Errorf("current status is %s", cause.Status))
		return
	}

	set := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	if reason != "" {
		set["rejectionReason"] = reason
	}
	_, err = a.CDB.UpdateOne(ctx, bson.M{"_id": cID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update cause status", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
