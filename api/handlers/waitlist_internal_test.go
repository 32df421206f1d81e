package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/databases/mocks"
	"github.com/changebag/causeconnect-api/models"
)

func waitingEntries(n, startPosition int) []models.WaitlistEntry {
	entries := make([]models.WaitlistEntry, n)
	for i := range entries {
		entries[i] = models.WaitlistEntry{
			ID:       primitive.NewObjectID(),
			Position: startPosition + i,
			Status:   models.WaitlistStatusWaiting,
		}
	}
	return entries
}

func TestNotifyWaitlistMembersDrainsAllWaiting(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	// more waiting entries than a single batch holds
	batch1 := waitingEntries(notifyBatchSize, 1)
	batch2 := waitingEntries(50, notifyBatchSize+1)

	cur1 := &mocks.CursorHelper{}
	cur1.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		*(args.Get(0).(*[]models.WaitlistEntry)) = batch1
	})
	cur2 := &mocks.CursorHelper{}
	cur2.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		*(args.Get(0).(*[]models.WaitlistEntry)) = batch2
	})

	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cur1, nil).Once()
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cur2, nil).Once()

	marked := 0
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1}, nil).
		Run(func(args mock.Arguments) { marked++ })

	db.On("Collection", "waitlist").Return(conn)

	notifyWaitlistMembers(databases.NewWaitlistDatabase(db), primitive.NewObjectID(), "Clean Water")

	assert.Equal(t, len(batch1)+len(batch2), marked)
}

func TestNotifyWaitlistMembersStopsWhenNoProgress(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	batch := waitingEntries(3, 1)
	cur := &mocks.CursorHelper{}
	cur.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		*(args.Get(0).(*[]models.WaitlistEntry)) = batch
	})
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cur, nil)

	calls := 0
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, mongo.CommandError{Message: "update failed"}).
		Run(func(args mock.Arguments) { calls++ })

	db.On("Collection", "waitlist").Return(conn)

	notifyWaitlistMembers(databases.NewWaitlistDatabase(db), primitive.NewObjectID(), "Clean Water")

	// one attempt per entry, then the sweep gives up instead of spinning
	assert.Equal(t, len(batch), calls)
}
