package databases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetQueryObserverForwardsOutcome(t *testing.T) {
	defer SetQueryObserver(nil)

	var (
		gotOp   string
		gotColl string
		gotDur  time.Duration
		gotErr  error
	)
	SetQueryObserver(func(ctx context.Context, operation, collection string, d time.Duration, err error) {
		gotOp = operation
		gotColl = collection
		gotDur = d
		gotErr = err
	})

	start := time.Now().Add(-5 * time.Millisecond)
	queryErr := errors.New("no documents")
	observeQuery(context.Background(), "findOne", "claims", start, queryErr)

	assert.Equal(t, "findOne", gotOp)
	assert.Equal(t, "claims", gotColl)
	assert.GreaterOrEqual(t, gotDur, 5*time.Millisecond)
	assert.Equal(t, queryErr, gotErr)
}

func TestObserveQueryWithoutObserver(t *testing.T) {
	SetQueryObserver(nil)

	// must be a no-op, not a panic
	observeQuery(context.Background(), "find", "causes", time.Now(), nil)
}
