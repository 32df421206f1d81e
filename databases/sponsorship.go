package databases

// go generate: mockery --name SponsorshipDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/changebag/causeconnect-api/models"
)

const sponsorshipName = "sponsorships"

// SponsorshipDatabase contains the methods to use with the sponsorships collection
type SponsorshipDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Sponsorship, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Sponsorship, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	Aggregate(context.Context, interface{}, ...*options.AggregateOptions) (CursorHelper, error)
}

type sponsorshipDatabase struct {
	db DatabaseHelper
}

// NewSponsorshipDatabase initializes a new instance of sponsorship database with the provided db connection
func NewSponsorshipDatabase(db DatabaseHelper) SponsorshipDatabase {
	return &sponsorshipDatabase{
		db: db,
	}
}

func (s *sponsorshipDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Sponsorship, error) {
	sponsorship := &models.Sponsorship{}
	err := s.db.Collection(sponsorshipName).FindOne(ctx, filter, opts...).Decode(&sponsorship)
	if err != nil {
		return nil, err
	}
	return sponsorship, nil
}

func (s *sponsorshipDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Sponsorship, error) {
	var sponsorships []models.Sponsorship
	cur, err := s.db.Collection(sponsorshipName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&sponsorships)
	if err != nil {
		return nil, err
	}
	return sponsorships, nil
}

func (s *sponsorshipDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return s.db.Collection(sponsorshipName).InsertOne(ctx, document, opts...)
}

func (s *sponsorshipDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return s.db.Collection(sponsorshipName).UpdateOne(ctx, filter, update, opts...)
}

func (s *sponsorshipDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return s.db.Collection(sponsorshipName).DeleteOne(ctx, filter, opts...)
}

func (s *sponsorshipDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return s.db.Collection(sponsorshipName).CountDocuments(ctx, filter, opts...)
}

func (s *sponsorshipDatabase) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (CursorHelper, error) {
	return s.db.Collection(sponsorshipName).Aggregate(ctx, pipeline, opts...)
}
