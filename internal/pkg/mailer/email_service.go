package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendManualActionRequired(toEmail, serviceName, instructions string) error
	SendCancellationConfirmed(toEmail, serviceName string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendManualActionRequired tells the user a cancellation cannot be automated
// and what they need to do themselves.
func (s *emailService) SendManualActionRequired(toEmail, serviceName, instructions string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Action needed to cancel %s", serviceName))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Manual step required</h2>
			<p>We could not cancel your <strong>%s</strong> subscription automatically.</p>
			<p>%s</p>
			<p>We will keep watching your inbox for a confirmation from the provider.</p>
		</div>
	`, serviceName, instructions)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send manual action mail to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Manual action mail sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendCancellationConfirmed(toEmail, serviceName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("%s subscription cancelled", serviceName))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>You're all set</h2>
			<p>The provider confirmed the cancellation of your <strong>%s</strong> subscription.</p>
			<p>No further charges are expected for this service.</p>
		</div>
	`, serviceName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send confirmation mail to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Confirmation mail sent to %s\n", toEmail)
	return nil
}
