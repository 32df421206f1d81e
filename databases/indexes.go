package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique indexes the lifecycle logic depends on.
// The (causeId, email) uniqueness on claims and waitlist is what turns a
// concurrent duplicate insert into a retriable conflict instead of two
// persisted documents, so this must run before the router starts serving.
func EnsureIndexes(db DatabaseHelper) error {
	ctx := context.Background()

	err := db.Collection(claimName).CreateIndexes(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "causeId", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_cause_email"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("created_desc"),
		},
	})
	if err != nil {
		return err
	}

	err = db.Collection(waitlistName).CreateIndexes(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "causeId", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_cause_email"),
		},
		{
			Keys:    bson.D{{Key: "causeId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_cause_position"),
		},
		{
			Keys:    bson.D{{Key: "magicLinkToken", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("magic_link_token"),
		},
	})
	if err != nil {
		return err
	}

	return db.Collection(sponsorshipName).CreateIndexes(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "cause", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("cause_status"),
		},
	})
}

// IsDuplicateKeyError reports whether err is a mongo unique index violation
func IsDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
