package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/models"
)

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron *cron.Cron
	WDB  databases.WaitlistDatabase
	CDB  databases.CauseDatabase
	SDB  databases.SponsorshipDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	wDB databases.WaitlistDatabase,
	cDB databases.CauseDatabase,
	sDB databases.SponsorshipDatabase,
) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		WDB:  wDB,
		CDB:  cDB,
		SDB:  sDB,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Expire stale magic links at the top of every hour
	_, err := s.cron.AddFunc("0 * * * *", s.expireMagicLinks)
	if err != nil {
		zap.S().Errorw("failed to register magic link expiry job", "error", err)
	}

	// Reconcile cause funding totals daily at 4 AM UTC
	_, err = s.cron.AddFunc("0 4 * * *", s.reconcileCauseAmounts)
	if err != nil {
		zap.S().Errorw("failed to register cause reconciliation job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Background scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Background scheduler stopped")
}

// expireMagicLinks flips notified waitlist entries whose links have passed
// their 48 hour window to expired, so stale links stop validating and the
// admin view reflects reality
func (s *Scheduler) expireMagicLinks() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	filter := bson.M{
		"status":           models.WaitlistStatusNotified,
		"magicLinkExpires": bson.M{"$lt": now},
	}

	entries, err := s.WDB.Find(ctx, filter)
	if err != nil {
		zap.S().Errorw("failed to find expired magic links", "error", err)
		return
	}

	expired := 0
	for _, entry := range entries {
		_, err := s.WDB.UpdateOne(ctx,
			bson.M{"_id": entry.ID, "status": models.WaitlistStatusNotified},
			bson.M{"$set": bson.M{"status": models.WaitlistStatusExpired}},
		)
		if err != nil {
			zap.S().Errorw("failed to expire waitlist entry",
				"entry", entry.ID.Hex(),
				"error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		zap.S().Infow("Expired stale magic links", "count", expired)
	}
}

// reconcileCauseAmounts audits every cause's currentAmount against the sum
// of its approved sponsorships and repairs any drift. Drift should only
// appear if a recompute was lost mid-flight, so each repair is logged loudly.
func (s *Scheduler) reconcileCauseAmounts() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	zap.S().Info("Running cause amount reconciliation")

	causes, err := s.CDB.Find(ctx, bson.M{})
	if err != nil {
		zap.S().Errorw("failed to load causes for reconciliation", "error", err)
		return
	}

	repaired := 0
	for _, cause := range causes {
		sponsorships, err := s.SDB.Find(ctx, bson.M{
			"cause":  cause.ID,
			"status": models.SponsorshipStatusApproved,
		})
		if err != nil {
			zap.S().Errorw("failed to load sponsorships for reconciliation",
				"cause", cause.ID.Hex(),
				"error", err)
			continue
		}

		var total float64
		for _, sp := range sponsorships {
			total += sp.TotalAmount
		}

		if total == cause.CurrentAmount {
			continue
		}

		zap.S().Warnw("cause amount drifted from approved sponsorship total",
			"cause", cause.ID.Hex(),
			"stored", cause.CurrentAmount,
			"computed", total)

		_, err = s.CDB.UpdateOne(ctx,
			bson.M{"_id": cause.ID},
			bson.M{"$set": bson.M{
				"currentAmount": total,
				"updatedAt":     time.Now(),
			}},
		)
		if err != nil {
			zap.S().Errorw("failed to repair cause amount",
				"cause", cause.ID.Hex(),
				"error", err)
			continue
		}
		repaired++
	}

	zap.S().Infow("Cause amount reconciliation complete",
		"causesChecked", len(causes),
		"repaired", repaired)
}
