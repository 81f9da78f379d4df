package services

import (
	"fmt"
	"time"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

const emailLayoutHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Noto Sans Thai", Helvetica, Arial, sans-serif; line-height: 1.6; color: #1f2937; background-color: #f0fdf4; margin: 0; padding: 20px; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #bbf7d0; border-radius: 8px; }
.header { font-size: 22px; font-weight: bold; color: #15803d; margin-bottom: 15px; }
.content { padding: 10px 20px; }
.amount { font-size: 28px; font-weight: bold; color: #15803d; }
.button { display: inline-block; padding: 10px 18px; background-color: #16a34a; color: #ffffff; border-radius: 6px; text-decoration: none; }
.footer { margin-top: 20px; font-size: 12px; color: #6b7280; text-align: center; }
p { margin-bottom: 1em; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">%s</div>
    <div class="content">
      %s
    </div>
    <div class="footer">
      © %d %s. All rights reserved.
    </div>
  </div>
</body>
</html>`

// EmailContent is a rendered message. BodyHTML is already escaped.
type EmailContent struct {
	Subject   string
	Heading   string
	BodyHTML  string
	PlainText string
}

// renderHTML wraps the body in the shared layout.
func (c EmailContent) renderHTML(org string) string {
	return fmt.Sprintf(emailLayoutHTML, utils.EscapeHTML(c.Heading), c.BodyHTML, time.Now().Year(), utils.EscapeHTML(org))
}

func esc(s string) string { return utils.EscapeHTML(s) }

func RegistrationApprovedEmail(projectName, firstName, loginURL string) EmailContent {
	return EmailContent{
		Subject: "Your " + projectName + " account is approved",
		Heading: "Welcome to " + projectName,
		BodyHTML: fmt.Sprintf(`<p>Hi %s,</p>
<p>The juristic office has approved your registration. You can now sign in to pay bills, book facilities and register visitors.</p>
<p><a class="button" href="%s">Sign in</a></p>`, esc(firstName), esc(loginURL)),
		PlainText: fmt.Sprintf("Hi %s, your %s account is approved. Sign in at %s", firstName, projectName, loginURL),
	}
}

func RegistrationRejectedEmail(projectName, firstName, reason string) EmailContent {
	return EmailContent{
		Subject: "Your " + projectName + " registration",
		Heading: "Registration not approved",
		BodyHTML: fmt.Sprintf(`<p>Hi %s,</p>
<p>Your registration could not be approved.</p>
<p><strong>Reason:</strong> %s</p>
<p>Please contact the juristic office if you believe this is a mistake.</p>`, esc(firstName), esc(reason)),
		PlainText: fmt.Sprintf("Hi %s, your %s registration was not approved. Reason: %s", firstName, projectName, reason),
	}
}

func BillIssuedEmail(b *models.Bill, houseNumber string) EmailContent {
	amount := utils.FormatCurrency(b.AmountSatang)
	due := b.DueDate.Format("2 Jan 2006")
	return EmailContent{
		Subject: fmt.Sprintf("New bill for %s (%s)", houseNumber, b.BillingPeriod),
		Heading: "New bill issued",
		BodyHTML: fmt.Sprintf(`<p>A new %s bill has been issued for house %s.</p>
<p class="amount">%s</p>
<p>%s</p>
<p>Due date: <strong>%s</strong></p>`, esc(string(b.Type)), esc(houseNumber), esc(amount), esc(b.Description), esc(due)),
		PlainText: fmt.Sprintf("New %s bill for house %s: %s due %s", b.Type, houseNumber, amount, due),
	}
}

func PaymentVerifiedEmail(b *models.Bill) EmailContent {
	amount := utils.FormatCurrency(b.AmountSatang)
	return EmailContent{
		Subject:   "Payment received for " + b.BillingPeriod,
		Heading:   "Payment verified",
		BodyHTML:  fmt.Sprintf(`<p>Thank you. Your payment of <strong>%s</strong> for %s has been verified.</p>`, esc(amount), esc(b.Description)),
		PlainText: fmt.Sprintf("Your payment of %s for %s has been verified.", amount, b.Description),
	}
}

func PaymentRejectedEmail(b *models.Bill, reason string) EmailContent {
	return EmailContent{
		Subject: "Payment could not be verified",
		Heading: "Payment rejected",
		BodyHTML: fmt.Sprintf(`<p>Your payment slip for %s (%s) could not be verified.</p>
<p><strong>Reason:</strong> %s</p>
<p>Please submit a new slip or contact the juristic office.</p>`, esc(b.Description), esc(utils.FormatCurrency(b.AmountSatang)), esc(reason)),
		PlainText: fmt.Sprintf("Your payment for %s was rejected: %s", b.Description, reason),
	}
}

func MaintenanceStatusEmail(m *models.MaintenanceRequest) EmailContent {
	body := fmt.Sprintf(`<p>Your request <strong>%s</strong> is now <strong>%s</strong>.</p>`, esc(m.Title), esc(string(m.Status)))
	plain := fmt.Sprintf("Your request %q is now %s.", m.Title, m.Status)
	if m.ResolutionNote != nil && *m.ResolutionNote != "" {
		body += fmt.Sprintf(`<p>Note from the office: %s</p>`, esc(*m.ResolutionNote))
		plain += " Note: " + *m.ResolutionNote
	}
	return EmailContent{
		Subject:   "Maintenance update: " + m.Title,
		Heading:   "Maintenance request updated",
		BodyHTML:  body,
		PlainText: plain,
	}
}

func BookingReviewedEmail(b *models.Booking, facilityName string, loc *time.Location) EmailContent {
	when := b.StartTime.In(loc).Format("Mon 2 Jan 2006 15:04") + " - " + b.EndTime.In(loc).Format("15:04")
	body := fmt.Sprintf(`<p>Your booking of <strong>%s</strong> on %s was <strong>%s</strong>.</p>`, esc(facilityName), esc(when), esc(string(b.Status)))
	if b.ReviewNote != nil && *b.ReviewNote != "" {
		body += fmt.Sprintf(`<p>Note: %s</p>`, esc(*b.ReviewNote))
	}
	return EmailContent{
		Subject:   fmt.Sprintf("Booking %s: %s", b.Status, facilityName),
		Heading:   "Booking " + string(b.Status),
		BodyHTML:  body,
		PlainText: fmt.Sprintf("Your booking of %s on %s was %s.", facilityName, when, b.Status),
	}
}

func TestEmail(org string) EmailContent {
	now := time.Now().UTC().Format(time.RFC1123)
	return EmailContent{
		Subject:   org + " test email",
		Heading:   "Email delivery works",
		BodyHTML:  fmt.Sprintf(`<p>This is a test message sent at %s.</p>`, esc(now)),
		PlainText: "This is a test message sent at " + now,
	}
}
