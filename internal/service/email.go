package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"assetdesk-backend/internal/logger"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)
	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "send", nil, "to", to)
	return nil
}

func (s *emailService) SendBorrowRequestNotification(ctx context.Context, adminEmail, adminName, requesterName, itemName string) error {
	subject := fmt.Sprintf("New Borrow Request: %s", itemName)
	plainText := fmt.Sprintf("%s has requested to borrow %s.", requesterName, itemName)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>New Borrow Request</h2>
				<p><strong>%s</strong> has requested to borrow <strong>%s</strong>.</p>
				<p>Sign in to review the request.</p>
			</body>
		</html>
	`, requesterName, itemName)
	return s.send(adminEmail, adminName, subject, plainText, htmlContent)
}

func (s *emailService) SendApprovalNotification(ctx context.Context, email, name, itemName string, endDate time.Time) error {
	due := endDate.Format("Jan 2, 2006")
	subject := fmt.Sprintf("Borrow Request Approved: %s", itemName)
	plainText := fmt.Sprintf("Your request to borrow %s was approved. Please return it by %s.", itemName, due)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Request Approved</h2>
				<p>Your request to borrow <strong>%s</strong> was approved.</p>
				<p>Please return it by <strong>%s</strong>.</p>
			</body>
		</html>
	`, itemName, due)
	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *emailService) SendRejectionNotification(ctx context.Context, email, name, itemName, reason string) error {
	if reason == "" {
		reason = "No reason provided"
	}
	subject := fmt.Sprintf("Borrow Request Rejected: %s", itemName)
	plainText := fmt.Sprintf("Your request to borrow %s was rejected. Reason: %s", itemName, reason)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Request Rejected</h2>
				<p>Your request to borrow <strong>%s</strong> was rejected.</p>
				<p>Reason: %s</p>
			</body>
		</html>
	`, itemName, reason)
	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *emailService) SendReturnConfirmation(ctx context.Context, email, name, itemName string) error {
	subject := fmt.Sprintf("Return Confirmed: %s", itemName)
	plainText := fmt.Sprintf("The return of %s has been recorded. Thank you.", itemName)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Return Confirmed</h2>
				<p>The return of <strong>%s</strong> has been recorded. Thank you.</p>
			</body>
		</html>
	`, itemName)
	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *emailService) SendOverdueReminder(ctx context.Context, email, name, itemName string, endDate time.Time) error {
	due := endDate.Format("Jan 2, 2006")
	subject := fmt.Sprintf("Overdue: %s", itemName)
	plainText := fmt.Sprintf("The item %s was due back on %s. Please return it as soon as possible.", itemName, due)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Item Overdue</h2>
				<p>The item <strong>%s</strong> was due back on <strong>%s</strong>.</p>
				<p>Please return it as soon as possible.</p>
			</body>
		</html>
	`, itemName, due)
	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *emailService) SendPasswordReset(ctx context.Context, email, name, resetURL string) error {
	subject := "Password Reset Request"
	plainText := fmt.Sprintf("You requested a password reset. Open this link to choose a new password: %s The link expires in 10 minutes.", resetURL)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Password Reset</h2>
				<p>You requested a password reset. Click the link below to choose a new password.</p>
				<p><a href="%s">Reset password</a></p>
				<p>The link expires in 10 minutes. If you did not request this, you can ignore this email.</p>
			</body>
		</html>
	`, resetURL)
	return s.send(email, name, subject, plainText, htmlContent)
}
