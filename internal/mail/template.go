package mail

import (
	"fmt"
	"html"
	"strings"
)

type ConfirmationData struct {
	ApplicantName   string
	RequestID       string
	ServiceAddress  string
	MonthlyEstimate string
	DepositRequired string
	Notes           []string
	DocumentsStored []string
}

func ConfirmationTemplate(data ConfirmationData) string {
	var notes strings.Builder
	for _, note := range data.Notes {
		fmt.Fprintf(&notes, "<li>%s</li>", html.EscapeString(note))
	}

	documents := "None received"
	if len(data.DocumentsStored) > 0 {
		documents = html.EscapeString(strings.Join(data.DocumentsStored, ", "))
	}

	return fmt.Sprintf(`
		<html>
		<body>
			<h2>Water Service Request Received</h2>
			<p>Dear %s,</p>
			<p>We received your request for water, trash and recycling service at <strong>%s</strong>.</p>
			<p>Reference number: <strong>%s</strong></p>
			<p>Estimated monthly bill: <strong>$%s</strong><br>
			Deposit required: <strong>$%s</strong></p>
			<ul>%s</ul>
			<p>Documents received: %s</p>
			<p>Our staff will review your application and contact you about the next steps.</p>
			<br>
			<p>Thank you,<br>Utility Billing Office</p>
		</body>
		</html>
		`,
		html.EscapeString(data.ApplicantName),
		html.EscapeString(data.ServiceAddress),
		html.EscapeString(data.RequestID),
		html.EscapeString(data.MonthlyEstimate),
		html.EscapeString(data.DepositRequired),
		notes.String(),
		documents,
	)
}

func StatusChangedTemplate(applicantName, requestID, status string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<h2>Service Request Update</h2>
			<p>Dear %s,</p>
			<p>The status of service request <strong>%s</strong> is now <strong>%s</strong>.</p>
			<br>
			<p>Thank you,<br>Utility Billing Office</p>
		</body>
		</html>
		`,
		html.EscapeString(applicantName),
		html.EscapeString(requestID),
		html.EscapeString(strings.ReplaceAll(status, "_", " ")),
	)
}
