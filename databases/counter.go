package databases

// go generate: mockery --name CounterDatabase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/changebag/causeconnect-api/models"
)

const counterName = "counters"

// CounterDatabase hands out per-scope sequence numbers backed by the
// counters collection. Increments are a single findOneAndUpdate with $inc
// and upsert, so concurrent callers can never observe the same value.
type CounterDatabase interface {
	Next(ctx context.Context, scope string) (int, error)
}

type counterDatabase struct {
	db DatabaseHelper
}

// NewCounterDatabase initializes a new instance of counter database with the provided db connection
func NewCounterDatabase(db DatabaseHelper) CounterDatabase {
	return &counterDatabase{
		db: db,
	}
}

func (c *counterDatabase) Next(ctx context.Context, scope string) (int, error) {
	after := options.After
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(after)

	var counter models.Counter
	err := c.db.Collection(counterName).FindOneAndUpdate(ctx,
		bson.M{"_id": scope},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Value, nil
}

// WaitlistScope returns the counter scope for a cause's waitlist positions
func WaitlistScope(causeID string) string {
	return fmt.Sprintf("waitlist:%s", causeID)
}

// InvoiceScope is the counter scope for invoice numbers
const InvoiceScope = "invoice"
