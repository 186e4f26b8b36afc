package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"coop-service/configs"
	"coop-service/internal/models"
	"coop-service/internal/repository"
)

// EmailSvc is an implementation of the service.EmailService interface
type EmailSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config *configs.Config
}

// NewEmailService creates a new EmailSvc
func NewEmailService(deps Dependencies) *EmailSvc {
	return &EmailSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: deps.Config,
	}
}

// SendApplicationApproved notifies a member that their pay-later application
// was approved, with the installment plan details
func (s *EmailSvc) SendApplicationApproved(ctx context.Context, userID int, application *models.PayLaterApplication, schedule *models.PaymentSchedule) error {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	// Skip if email is empty
	if user.Email == "" {
		return nil
	}

	subject := fmt.Sprintf("Pay Later Approved: %.2f", application.Amount)

	body := fmt.Sprintf(`
	<h2>Pay Later Application Approved</h2>
	<p>Dear %s %s,</p>

	<p>Your Pay Later application has been approved!</p>

	<table style="border-collapse: collapse; width: 100%%;">
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Application ID:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Amount:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Term:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%d months</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Monthly Payment:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>First Payment Date:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
	</table>

	<p>You can view your full payment schedule in the member portal.</p>

	<p>
	Best regards,<br>
	Your Cooperative Team
	</p>
	`,
		user.FirstName, user.LastName,
		application.ID,
		application.Amount,
		application.TermMonths,
		schedule.MonthlyPayment,
		schedule.FirstPaymentDate.Format("2006-01-02"),
	)

	if err := s.sendEmail(user.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Approval email sent to %s for application %d", user.Email, application.ID)

	return nil
}

// SendPaymentReceipt confirms a processed installment payment
func (s *EmailSvc) SendPaymentReceipt(ctx context.Context, userID int, installment *models.Installment) error {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	// Skip if email is empty
	if user.Email == "" {
		return nil
	}

	var paidOn string
	if installment.PaidOn != nil {
		paidOn = installment.PaidOn.Format("2006-01-02 15:04:05")
	}

	subject := fmt.Sprintf("Payment Received: %.2f", installment.TotalAmount)

	body := fmt.Sprintf(`
	<h2>Payment Receipt</h2>
	<p>Dear %s %s,</p>

	<p>We received your installment payment:</p>

	<table style="border-collapse: collapse; width: 100%%;">
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Installment:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">#%d</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Amount:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Paid On:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Transaction:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
	</table>

	<p>Thank you for paying on time.</p>

	<p>
	Best regards,<br>
	Your Cooperative Team
	</p>
	`,
		user.FirstName, user.LastName,
		installment.Number,
		installment.TotalAmount,
		paidOn,
		installment.TransactionRef,
	)

	if err := s.sendEmail(user.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Payment receipt sent to %s for installment %d", user.Email, installment.ID)

	return nil
}

// SendPaymentReminder reminds a member about an overdue installment
func (s *EmailSvc) SendPaymentReminder(ctx context.Context, userID int, installment *models.Installment) error {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	// Skip if email is empty
	if user.Email == "" {
		return nil
	}

	daysOverdue := int(time.Since(installment.DueDate).Hours() / 24)

	subject := fmt.Sprintf("OVERDUE Payment Reminder: Installment #%d", installment.Number)

	body := fmt.Sprintf(`
	<h2>Payment Reminder</h2>
	<p>Dear %s %s,</p>

	<p style="color: red; font-weight: bold;">
		Your installment payment is OVERDUE by %d days.
	</p>

	<table style="border-collapse: collapse; width: 100%%;">
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Installment:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">#%d</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Due Date:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Amount Due:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f</td>
		</tr>
	</table>

	<p>Please make the payment through the member portal as soon as possible.</p>

	<p>
	Best regards,<br>
	Your Cooperative Team
	</p>
	`,
		user.FirstName, user.LastName,
		daysOverdue,
		installment.Number,
		installment.DueDate.Format("2006-01-02"),
		installment.TotalAmount,
	)

	if err := s.sendEmail(user.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Payment reminder sent to %s for installment %d", user.Email, installment.ID)

	return nil
}

// sendEmail sends an email using the SMTP server
func (s *EmailSvc) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.Email.SenderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		s.config.Email.SMTPHost,
		s.config.Email.SMTPPort,
		s.config.Email.SMTPUser,
		s.config.Email.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
