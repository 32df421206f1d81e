package handlers

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const emailFromName = "ChangeBag"
const emailFromAddress = "no-reply@changebag.org"

// sendEmail delivers a single email through sendgrid. Callers treat delivery
// as best-effort: failures are returned so they can be logged, never to fail
// the request that triggered them.
func sendEmail(toEmail, subject, plain, html string) error {
	from := mail.NewEmail(emailFromName, emailFromAddress)
	to := mail.NewEmail("", toEmail)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	resp, err := client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

// sendEmailWithPDF delivers an email with a PDF attachment through sendgrid
func sendEmailWithPDF(toEmail, subject, plain, html, filename string, pdf []byte) error {
	from := mail.NewEmail(emailFromName, emailFromAddress)
	to := mail.NewEmail("", toEmail)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)

	attachment := mail.NewAttachment()
	attachment.SetContent(base64.StdEncoding.EncodeToString(pdf))
	attachment.SetType("application/pdf")
	attachment.SetFilename(filename)
	attachment.SetDisposition("attachment")
	msg.AddAttachment(attachment)

	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	resp, err := client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

// logEmailFailure records a failed best-effort send
func logEmailFailure(kind, toEmail string, err error) {
	zap.S().Errorw("failed to send email",
		"kind", kind,
		"to", toEmail,
		"error", err,
	)
}
