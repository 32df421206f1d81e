package databases

// go generate: mockery --name ClaimDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/changebag/causeconnect-api/models"
)

const claimName = "claims"

// ClaimDatabase contains the methods to use with the claims collection
type ClaimDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Claim, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Claim, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	Aggregate(context.Context, interface{}, ...*options.AggregateOptions) (CursorHelper, error)
}

type claimDatabase struct {
	db DatabaseHelper
}

// NewClaimDatabase initializes a new instance of claim database with the provided db connection
func NewClaimDatabase(db DatabaseHelper) ClaimDatabase {
	return &claimDatabase{
		db: db,
	}
}

func (c *claimDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Claim, error) {
	claim := &models.Claim{}
	err := c.db.Collection(claimName).FindOne(ctx, filter, opts...).Decode(&claim)
	if err != nil {
		return nil, err
	}
	return claim, nil
}

func (c *claimDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Claim, error) {
	var claims []models.Claim
	cur, err := c.db.Collection(claimName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *claimDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(claimName).InsertOne(ctx, document, opts...)
}

func (c *claimDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(claimName).UpdateOne(ctx, filter, update, opts...)
}

func (c *claimDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(claimName).CountDocuments(ctx, filter, opts...)
}

func (c *claimDatabase) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (CursorHelper, error) {
	return c.db.Collection(claimName).Aggregate(ctx, pipeline, opts...)
}
