package services

import (
	"fmt"
	"html"

	"github.com/Govind-619/DomainDesk/models"
)

const renewalEmailSubject = "Project Renewal Confirmation"

// RenewalEmail renders the confirmation sent after a renewal is committed
func RenewalEmail(user *models.User, project *models.Project, record *models.RenewalRecord) (subject, text, htmlBody string) {
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	amount := formatAmount(record.Amount)
	expiry := record.NewEndDate.Format("02 Jan 2006")

	text = fmt.Sprintf("Dear %s,\n\n"+
		"Your payment of ₹%s for renewing project %q has been successful (Payment ID: %s). "+
		"The new domain expiry date is %s.\n\n"+
		"Best regards,\nDomainDesk Team",
		name, amount, project.Title, record.PaymentID, expiry)

	htmlBody = fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Project Renewal Confirmation</h2>
			<p>Dear %s,</p>
			<p>Your payment of ₹%s for renewing project <strong>%s</strong> has been successful (Payment ID: %s).</p>
			<p>The new domain expiry date is %s.</p>
			<p>Best regards,<br>DomainDesk Team</p>
		</div>
	`, html.EscapeString(name), amount, html.EscapeString(project.Title), html.EscapeString(record.PaymentID), expiry)

	return renewalEmailSubject, text, htmlBody
}
