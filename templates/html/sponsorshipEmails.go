package templates

import "fmt"

// SponsorshipApprovedEmail returns subject, plain text and HTML for the
// sponsor approval notification
func SponsorshipApprovedEmail(contactName, causeTitle string, toteQuantity int) (string, string, string) {
	subject := "Your sponsorship has been approved"
	plain := fmt.Sprintf(`Hi %s,

Great news! Your sponsorship of %d totes for "%s" has been approved.

Your branded totes are now available for claiming, and everyone on the cause's waitlist has been notified.

Thank you for making a difference.

The ChangeBag Team`, contactName, toteQuantity, causeTitle)
	return subject, plain, RenderGenericEmail(subject, plain)
}

// SponsorshipRejectedEmail returns subject, plain text and HTML for the
// sponsor rejection notification, including the logo reupload link
func SponsorshipRejectedEmail(contactName, causeTitle, reason, reuploadLink string) (string, string, string) {
	subject := "Update on your sponsorship submission"
	plain := fmt.Sprintf(`Hi %s,

Unfortunately we could not approve your sponsorship for "%s" as submitted.

Reason: %s

You can upload a new logo and resubmit here:
%s

The ChangeBag Team`, contactName, causeTitle, reason, reuploadLink)
	return subject, plain, RenderGenericEmail(subject, plain)
}

// SponsorshipCompletedEmail returns subject, plain text and HTML for the
// campaign completion notification
func SponsorshipCompletedEmail(contactName, causeTitle string) (string, string, string) {
	subject := "Your campaign has ended"
	plain := fmt.Sprintf(`Hi %s,

Your sponsorship campaign for "%s" has ended. Thank you for supporting the cause. We'll share distribution results with you shortly.

The ChangeBag Team`, contactName, causeTitle)
	return subject, plain, RenderGenericEmail(subject, plain)
}

// WaitlistMagicLinkEmail returns subject, plain text and HTML for the
// waitlist notification carrying a time-limited magic link
func WaitlistMagicLinkEmail(fullName, causeTitle, magicLink string) (string, string, string) {
	subject := "Totes are now available: claim yours"
	plain := fmt.Sprintf(`Hi %s,

Good news! Totes for "%s" are now available and you're on the waitlist.

Claim yours using this link (valid for 48 hours):
%s

If you no longer want a tote, you can simply ignore this email.

The ChangeBag Team`, fullName, causeTitle, magicLink)
	return subject, plain, RenderGenericEmail(subject, plain)
}

// ClaimOTPEmail returns subject, plain text and HTML for the claim
// verification code email
func ClaimOTPEmail(fullName, code string) (string, string, string) {
	subject := "Your ChangeBag verification code"
	plain := fmt.Sprintf(`Hi %s,

Your verification code is: %s

It expires in 10 minutes. If you did not request this code, please ignore this email.

The ChangeBag Team`, fullName, code)
	return subject, plain, RenderGenericEmail(subject, plain)
}

// InvoiceEmail returns subject, plain text and HTML for the payment
// confirmation email the invoice PDF is attached to
func InvoiceEmail(invoiceNumber string, amount float64, currency string) (string, string, string) {
	subject := fmt.Sprintf("Payment received: invoice %s", invoiceNumber)
	plain := fmt.Sprintf(`Thank you for your sponsorship payment.

Amount: %.2f %s
Invoice: %s (attached as PDF)

The ChangeBag Team`, amount, currency, invoiceNumber)
	return subject, plain, RenderGenericEmail(subject, plain)
}
