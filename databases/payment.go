package databases

// go generate: mockery --name PaymentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/changebag/causeconnect-api/models"
)

const paymentName = "payments"

// PaymentDatabase contains the methods to use with the payments collection
type PaymentDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Payment, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Payment, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type paymentDatabase struct {
	db DatabaseHelper
}

// NewPaymentDatabase initializes a new instance of payment database with the provided db connection
func NewPaymentDatabase(db DatabaseHelper) PaymentDatabase {
	return &paymentDatabase{
		db: db,
	}
}

func (p *paymentDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Payment, error) {
	payment := &models.Payment{}
	err := p.db.Collection(paymentName).FindOne(ctx, filter, opts...).Decode(&payment)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (p *paymentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Payment, error) {
	var payments []models.Payment
	cur, err := p.db.Collection(paymentName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&payments)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (p *paymentDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return p.db.Collection(paymentName).InsertOne(ctx, document, opts...)
}

func (p *paymentDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return p.db.Collection(paymentName).UpdateOne(ctx, filter, update, opts...)
}
