package databases

// go generate: mockery --name WaitlistDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/changebag/causeconnect-api/models"
)

const waitlistName = "waitlist"

// WaitlistDatabase contains the methods to use with the waitlist collection
type WaitlistDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.WaitlistEntry, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.WaitlistEntry, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type waitlistDatabase struct {
	db DatabaseHelper
}

// NewWaitlistDatabase initializes a new instance of waitlist database with the provided db connection
func NewWaitlistDatabase(db DatabaseHelper) WaitlistDatabase {
	return &waitlistDatabase{
		db: db,
	}
}

func (w *waitlistDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.WaitlistEntry, error) {
	entry := &models.WaitlistEntry{}
	err := w.db.Collection(waitlistName).FindOne(ctx, filter, opts...).Decode(&entry)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (w *waitlistDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	cur, err := w.db.Collection(waitlistName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (w *waitlistDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return w.db.Collection(waitlistName).InsertOne(ctx, document, opts...)
}

func (w *waitlistDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return w.db.Collection(waitlistName).UpdateOne(ctx, filter, update, opts...)
}

func (w *waitlistDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return w.db.Collection(waitlistName).CountDocuments(ctx, filter, opts...)
}
