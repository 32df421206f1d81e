package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/changebag/causeconnect-api/api"
	"github.com/changebag/causeconnect-api/config"
	"github.com/changebag/causeconnect-api/databases"
	"github.com/changebag/causeconnect-api/invoice"
	"github.com/changebag/causeconnect-api/models"
	templates "github.com/changebag/causeconnect-api/templates/html"
)

// Payment exported for testing purposes
type Payment struct {
	DB  databases.PaymentDatabase
	SDB databases.SponsorshipDatabase
	CDB databases.CauseDatabase
	CTR databases.CounterDatabase
	RZP *razorpay.Client
}

// CreatePaymentOrderHandler opens a razorpay order for a sponsorship's total
// amount and records it in created state
func (p Payment) CreatePaymentOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var body struct {
		SponsorshipID string `json:"sponsorshipId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.SponsorshipID == "" {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w, missingFieldsError([]string{"sponsorshipId"}))
		return
	}

	sID, err := primitive.ObjectIDFromHex(body.SponsorshipID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	sponsorship, err := p.SDB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get sponsorship by ID", http.StatusNotFound, w, err)
		return
	}

	// razorpay amounts are integer paise
	amountPaise := int64(math.Round(sponsorship.TotalAmount * 100))
	order, err := p.RZP.Order.Create(map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  fmt.Sprintf("sp_%s", sID.Hex()),
	}, nil)
	if err != nil {
		config.ErrorStatus("failed to create payment order", http.StatusBadGateway, w, err)
		return
	}

	orderID, _ := order["id"].(string)
	if orderID == "" {
		config.ErrorStatus("payment gateway returned no order id", http.StatusBadGateway, w,
			fmt.Errorf("unexpected order payload"))
		return
	}

	now := time.Now()
	payment := models.Payment{
		SponsorshipID: sID,
		OrderID:       orderID,
		Amount:        sponsorship.TotalAmount,
		Currency:      "INR",
		Status:        models.PaymentStatusCreated,
		Email:         sponsorship.Email,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := p.DB.InsertOne(ctx, payment); err != nil {
		config.ErrorStatus("failed to record payment", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"orderId":  orderID,
		"amount":   amountPaise,
		"currency": "INR",
		"key":      os.Getenv("RAZORPAY_KEY_ID"),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// verifyRazorpaySignature checks the checkout callback signature:
// HMAC-SHA256 over "<orderId>|<paymentId>" keyed with the API secret
func verifyRazorpaySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// VerifyPaymentHandler validates the checkout callback, confirms capture with
// razorpay and marks the payment captured. Invoice generation and mailing run
// in the background and never block the response.
func (p Payment) VerifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var body struct {
		OrderID   string `json:"razorpay_order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	missing := missingFields([]requiredField{
		{"razorpay_order_id", body.OrderID == ""},
		{"razorpay_payment_id", body.PaymentID == ""},
		{"razorpay_signature", body.Signature == ""},
	})
	if len(missing) > 0 {
		config.ErrorStatus("missing required fields", http.StatusBadRequest, w, missingFieldsError(missing))
		return
	}

	if !verifyRazorpaySignature(body.OrderID, body.PaymentID, body.Signature, os.Getenv("RAZORPAY_KEY_SECRET")) {
		config.ErrorStatus("payment signature verification failed", http.StatusBadRequest, w,
			fmt.Errorf("signature mismatch for order %s", body.OrderID))
		return
	}

	payment, err := p.DB.FindOne(ctx, bson.M{"orderId": body.OrderID})
	if err != nil {
		config.ErrorStatus("failed to get payment by order ID", http.StatusNotFound, w, err)
		return
	}

	rzpPayment, err := p.RZP.Payment.Fetch(body.PaymentID, nil, nil)
	if err != nil {
		config.ErrorStatus("failed to fetch payment from gateway", http.StatusBadGateway, w, err)
		return
	}
	if status, _ := rzpPayment["status"].(string); status != "captured" {
		_, uerr := p.DB.UpdateOne(ctx,
			bson.M{"_id": payment.ID},
			bson.M{"$set": bson.M{"status": models.PaymentStatusFailed, "updatedAt": time.Now()}},
		)
		if uerr != nil {
			zap.S().Errorw("failed to mark payment failed", "payment", payment.ID.Hex(), "error", uerr)
		}
		config.ErrorStatus("payment is not captured", http.StatusConflict, w,
			fmt.Errorf("gateway status is %q", status))
		return
	}

	_, err = p.DB.UpdateOne(ctx,
		bson.M{"_id": payment.ID},
		bson.M{"$set": bson.M{
			"status":    models.PaymentStatusCaptured,
			"paymentId": body.PaymentID,
			"updatedAt": time.Now(),
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to update payment", http.StatusInternalServerError, w, err)
		return
	}

	go p.issueInvoice(payment)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "captured"}`))
}

// issueInvoice assigns the next invoice number, renders the PDF and emails
// it. Every failure is logged and swallowed; the captured payment stands.
func (p Payment) issueInvoice(payment *models.Payment) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	seq, err := p.CTR.Next(ctx, databases.InvoiceScope)
	if err != nil {
		zap.S().Errorw("failed to assign invoice number", "payment", payment.ID.Hex(), "error", err)
		return
	}
	invoiceNumber := fmt.Sprintf("CB-%d-%06d", time.Now().Year(), seq)

	sponsorship, err := p.SDB.FindOne(ctx, bson.M{"_id": payment.SponsorshipID})
	if err != nil {
		zap.S().Errorw("failed to load sponsorship for invoice", "payment", payment.ID.Hex(), "error", err)
		return
	}
	causeTitle := ""
	if cause, err := p.CDB.FindOne(ctx, bson.M{"_id": sponsorship.Cause}); err == nil {
		causeTitle = cause.Title
	}

	pdf, err := invoice.Build(invoice.Data{
		InvoiceNumber:    invoiceNumber,
		IssuedAt:         time.Now(),
		OrganizationName: sponsorship.OrganizationName,
		ContactName:      sponsorship.ContactName,
		Email:            sponsorship.Email,
		CauseTitle:       causeTitle,
		ToteQuantity:     sponsorship.ToteQuantity,
		UnitPrice:        sponsorship.UnitPrice,
		Payment:          *payment,
	})
	if err != nil {
		zap.S().Errorw("failed to build invoice PDF", "payment", payment.ID.Hex(), "error", err)
		return
	}

	if _, err := p.DB.UpdateOne(ctx,
		bson.M{"_id": payment.ID},
		bson.M{"$set": bson.M{"invoiceNumber": invoiceNumber, "updatedAt": time.Now()}},
	); err != nil {
		zap.S().Errorw("failed to store invoice number", "payment", payment.ID.Hex(), "error", err)
	}

	subject, plain, html := templates.InvoiceEmail(invoiceNumber, payment.Amount, payment.Currency)
	filename := fmt.Sprintf("%s.pdf", invoiceNumber)
	if err := sendEmailWithPDF(payment.Email, subject, plain, html, filename, pdf); err != nil {
		logEmailFailure("payment-invoice", payment.Email, err)
	}
}
