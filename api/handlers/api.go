package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"

	"github.com/changebag/causeconnect-api/api"
	"github.com/changebag/causeconnect-api/api/scheduler"
	"github.com/changebag/causeconnect-api/config"
	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	Razorpay *razorpay.Client
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)
	r.Use(api.TimeoutMiddleware(30 * time.Second))

	hub := NewEventHub()

	cause := Cause{
		DB:   databases.NewCauseDatabase(a.dbHelper),
		SDB:  databases.NewSponsorshipDatabase(a.dbHelper),
		CLDB: databases.NewClaimDatabase(a.dbHelper),
	}
	sponsorship := Sponsorship{
		DB:  databases.NewSponsorshipDatabase(a.dbHelper),
		CDB: databases.NewCauseDatabase(a.dbHelper),
		WDB: databases.NewWaitlistDatabase(a.dbHelper),
		Hub: hub,
	}
	claim := Claim{
		DB:  databases.NewClaimDatabase(a.dbHelper),
		CDB: databases.NewCauseDatabase(a.dbHelper),
		SDB: databases.NewSponsorshipDatabase(a.dbHelper),
		Hub: hub,
	}
	waitlist := Waitlist{
		DB:   databases.NewWaitlistDatabase(a.dbHelper),
		CDB:  databases.NewCauseDatabase(a.dbHelper),
		SDB:  databases.NewSponsorshipDatabase(a.dbHelper),
		CLDB: databases.NewClaimDatabase(a.dbHelper),
		CTR:  databases.NewCounterDatabase(a.dbHelper),
		Hub:  hub,
	}
	payment := Payment{
		DB:  databases.NewPaymentDatabase(a.dbHelper),
		SDB: databases.NewSponsorshipDatabase(a.dbHelper),
		CDB: databases.NewCauseDatabase(a.dbHelper),
		CTR: databases.NewCounterDatabase(a.dbHelper),
		RZP: a.Razorpay,
	}
	admin := Admin{
		ADB:  databases.NewAdminDatabase(a.dbHelper),
		CDB:  databases.NewCauseDatabase(a.dbHelper),
		SDB:  databases.NewSponsorshipDatabase(a.dbHelper),
		CLDB: databases.NewClaimDatabase(a.dbHelper),
		WDB:  databases.NewWaitlistDatabase(a.dbHelper),
	}
	user := User{DB: databases.NewUserDatabase(a.dbHelper)}
	events := Events{Hub: hub}
	metrics := MetricsHandler{}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(user.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/check-user", http.HandlerFunc(user.UserCheckEmailHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(user.UserHandler))).Methods("GET")

	apiCreate.Handle("/causes", http.HandlerFunc(cause.CausesHandler)).Methods("GET")
	apiCreate.Handle("/cause/{cause_id}", http.HandlerFunc(cause.CauseByIDHandler)).Methods("GET")
	apiCreate.Handle("/cause/{cause_id}/inventory", http.HandlerFunc(cause.CauseInventoryHandler)).Methods("GET")
	apiCreate.Handle("/cause", api.Middleware(http.HandlerFunc(cause.CreateCauseHandler))).Methods("POST")
	apiCreate.Handle("/causes/user/{user_id}", api.Middleware(http.HandlerFunc(cause.CausesByCreatorHandler))).Methods("GET")
	apiCreate.Handle("/cause/{cause_id}", api.Middleware(http.HandlerFunc(cause.DeleteCauseHandler))).Methods("DELETE")

	apiCreate.Handle("/sponsorship", http.HandlerFunc(sponsorship.CreateSponsorshipHandler)).Methods("POST")
	apiCreate.Handle("/sponsorship/{sponsorship_id}", http.HandlerFunc(sponsorship.SponsorshipByIDHandler)).Methods("GET")
	apiCreate.Handle("/sponsorship/{sponsorship_id}/logo", http.HandlerFunc(sponsorship.ReuploadLogoHandler)).Methods("PUT")

	apiCreate.Handle("/claim", http.HandlerFunc(claim.CreateClaimHandler)).Methods("POST")
	apiCreate.Handle("/claim/{claim_id}/send-otp", http.HandlerFunc(claim.SendClaimOTPHandler)).Methods("POST")
	apiCreate.Handle("/claim/{claim_id}/verify-otp", http.HandlerFunc(claim.VerifyClaimOTPHandler)).Methods("POST")

	apiCreate.Handle("/waitlist", http.HandlerFunc(waitlist.JoinWaitlistHandler)).Methods("POST")
	apiCreate.Handle("/waitlist/validate/{token}", http.HandlerFunc(waitlist.ValidateMagicLinkHandler)).Methods("GET")
	apiCreate.Handle("/waitlist/claim", http.HandlerFunc(waitlist.ClaimViaMagicLinkHandler)).Methods("POST")

	apiCreate.Handle("/payment/order", http.HandlerFunc(payment.CreatePaymentOrderHandler)).Methods("POST")
	apiCreate.Handle("/payment/verify", http.HandlerFunc(payment.VerifyPaymentHandler)).Methods("POST")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	apiCreate.Handle("/admin/login", http.HandlerFunc(admin.AdminLoginHandler)).Methods("POST")
	apiCreate.Handle("/admin/dashboard", api.AdminMiddleware(http.HandlerFunc(admin.DashboardHandler))).Methods("GET")
	apiCreate.Handle("/admin/cause/{cause_id}/approve", api.AdminMiddleware(http.HandlerFunc(admin.ApproveCauseHandler))).Methods("PUT")
	apiCreate.Handle("/admin/cause/{cause_id}/reject", api.AdminMiddleware(http.HandlerFunc(admin.RejectCauseHandler))).Methods("PUT")
	apiCreate.Handle("/admin/sponsorships", api.AdminMiddleware(http.HandlerFunc(sponsorship.SponsorshipsHandler))).Methods("GET")
	apiCreate.Handle("/admin/sponsorship/{sponsorship_id}/approve", api.AdminMiddleware(http.HandlerFunc(sponsorship.ApproveSponsorshipHandler))).Methods("PUT")
	apiCreate.Handle("/admin/sponsorship/{sponsorship_id}/reject", api.AdminMiddleware(http.HandlerFunc(sponsorship.RejectSponsorshipHandler))).Methods("PUT")
	apiCreate.Handle("/admin/sponsorship/{sponsorship_id}/end", api.AdminMiddleware(http.HandlerFunc(sponsorship.EndCampaignHandler))).Methods("PUT")
	apiCreate.Handle("/admin/sponsorship/{sponsorship_id}", api.AdminMiddleware(http.HandlerFunc(sponsorship.DeleteSponsorshipHandler))).Methods("DELETE")
	apiCreate.Handle("/admin/claims", api.AdminMiddleware(http.HandlerFunc(claim.ClaimsHandler))).Methods("GET")
	apiCreate.Handle("/admin/claim/{claim_id}/status", api.AdminMiddleware(http.HandlerFunc(claim.UpdateClaimStatusHandler))).Methods("PUT")
	apiCreate.Handle("/admin/claim/{claim_id}/verify-qr", api.AdminMiddleware(http.HandlerFunc(claim.VerifyQrClaimHandler))).Methods("PUT")
	apiCreate.Handle("/admin/waitlist/{cause_id}", api.AdminMiddleware(http.HandlerFunc(waitlist.WaitlistByCauseHandler))).Methods("GET")
	apiCreate.Handle("/admin/waitlist/{waitlist_id}/claimed", api.AdminMiddleware(http.HandlerFunc(waitlist.MarkWaitlistClaimedHandler))).Methods("PUT")
	apiCreate.Handle("/admin/metrics", api.AdminMiddleware(http.HandlerFunc(metrics.RouteMetricsHandler))).Methods("GET")
	apiCreate.Handle("/admin/metrics/traces", api.AdminMiddleware(http.HandlerFunc(metrics.TracesHandler))).Methods("GET")
	apiCreate.Handle("/admin/events", api.AdminMiddleware(http.HandlerFunc(events.ServeWS))).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("causeconnect-api has connected to the database")

	// feed query timings into the per-request traces behind /admin/metrics
	databases.SetQueryObserver(func(ctx context.Context, operation, collection string, d time.Duration, err error) {
		trace := api.TraceFromContext(ctx)
		if trace == nil {
			return
		}
		q := api.DBQueryTrace{
			Operation:  operation,
			Collection: collection,
			Duration:   d,
			Timestamp:  time.Now(),
		}
		if err != nil {
			q.Error = err.Error()
		}
		trace.AddDBQuery(q)
	})

	if err := databases.EnsureIndexes(a.dbHelper); err != nil {
		zap.S().With(err).Error("failed to ensure indexes")
		return err
	}
	if err := databases.EnsureHeadAdmin(a.dbHelper); err != nil {
		zap.S().With(err).Error("failed to bootstrap head admin")
		return err
	}

	// initialize razorpay
	razorpayKey := os.Getenv("RAZORPAY_KEY_ID")
	razorpaySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if razorpayKey == "" || razorpaySecret == "" {
		return fmt.Errorf("razorpay keys are not set")
	}
	a.Razorpay = razorpay.NewClient(razorpayKey, razorpaySecret)

	// initialize api router
	a.initializeRoutes()

	// start background jobs
	s := scheduler.NewScheduler(
		databases.NewWaitlistDatabase(a.dbHelper),
		databases.NewCauseDatabase(a.dbHelper),
		databases.NewSponsorshipDatabase(a.dbHelper),
	)
	s.Start()

	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

// getPage returns the 1-based page query param, defaulting to 1
func getPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// getLimit returns the limit query param, defaulting to 10
func getLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		return 10
	}
	return limit
}
