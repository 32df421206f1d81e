package databases

// go generate: mockery --name CauseDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/changebag/causeconnect-api/models"
)

const causeName = "causes"

// CauseDatabase contains the methods to use with the causes collection
type CauseDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Cause, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Cause, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type causeDatabase struct {
	db DatabaseHelper
}

// NewCauseDatabase initializes a new instance of cause database with the provided db connection
func NewCauseDatabase(db DatabaseHelper) CauseDatabase {
	return &causeDatabase{
		db: db,
	}
}

func (c *causeDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Cause, error) {
	cause := &models.Cause{}
	err := c.db.Collection(causeName).FindOne(ctx, filter, opts...).Decode(&cause)
	if err != nil {
		return nil, err
	}
	return cause, nil
}

func (c *causeDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Cause, error) {
	var causes []models.Cause
	cur, err := c.db.Collection(causeName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&causes)
	if err != nil {
		return nil, err
	}
	return causes, nil
}

func (c *causeDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(causeName).InsertOne(ctx, document, opts...)
}

func (c *causeDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(causeName).UpdateOne(ctx, filter, update, opts...)
}

func (c *causeDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(causeName).DeleteOne(ctx, filter, opts...)
}

func (c *causeDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(causeName).CountDocuments(ctx, filter, opts...)
}
