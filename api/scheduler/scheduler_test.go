package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/databases/mocks"
	"github.com/changebag/causeconnect-api/models"
)

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(nil, nil, nil)
	s.Start()
	s.Stop()
}

func TestExpireMagicLinks(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	past := time.Now().Add(-time.Hour)
	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.WaitlistEntry)
		*arg = []models.WaitlistEntry{
			{Status: models.WaitlistStatusNotified, MagicLinkExpires: &past},
		}
	})
	conn.On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)
	db.On("Collection", "waitlist").Return(conn)

	s := NewScheduler(databases.NewWaitlistDatabase(db), nil, nil)
	s.expireMagicLinks()

	conn.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileCauseAmountsRepairsDrift(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	causeConn := &mocks.CollectionHelper{}
	sponsorshipConn := &mocks.CollectionHelper{}
	causeCursor := &mocks.CursorHelper{}
	sponsorshipCursor := &mocks.CursorHelper{}

	causeCursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Cause)
		*arg = []models.Cause{
			{Title: "Clean Water", CurrentAmount: 1000},
		}
	})
	sponsorshipCursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Sponsorship)
		*arg = []models.Sponsorship{
			{Status: models.SponsorshipStatusApproved, TotalAmount: 2500},
			{Status: models.SponsorshipStatusApproved, TotalAmount: 2500},
		}
	})

	causeConn.On("Find", mock.Anything, mock.Anything).Return(causeCursor, nil)
	causeConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)
	sponsorshipConn.On("Find", mock.Anything, mock.Anything).Return(sponsorshipCursor, nil)

	db.On("Collection", "causes").Return(causeConn)
	db.On("Collection", "sponsorships").Return(sponsorshipConn)

	s := NewScheduler(nil, databases.NewCauseDatabase(db), databases.NewSponsorshipDatabase(db))
	s.reconcileCauseAmounts()

	// stored 1000 vs computed 5000 means the job must write the repair
	causeConn.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, causeConn.AssertNumberOfCalls(t, "UpdateOne", 1))
}
