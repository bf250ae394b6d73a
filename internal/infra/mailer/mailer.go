// Package mailer sends the customer-facing reservation emails over SMTP.
package mailer

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"

	"casita-reservations/internal/pkg/config"
	"casita-reservations/internal/pkg/errs"
	"casita-reservations/internal/usecase/readmodel"

	"github.com/cenkalti/backoff/v4"
	mail "github.com/wneessen/go-mail"
)

const (
	subjectReceived  = "Reservation Request Received"
	subjectConfirmed = "Reservation Confirmed"
	subjectDenied    = "Reservation Denied"
)

var (
	receivedTmpl = template.Must(template.New("received").Parse(
		`Hello {{.Name}},<br><br>
We've received your reservation request for {{.Date}} at {{.Time}}.<br><br>
You will receive an email soon with your reservation confirmation.`))

	confirmedTmpl = template.Must(template.New("confirmed").Parse(
		`Hello {{.Name}},<br><br>
Your reservation has been confirmed. We look forward to seeing you at {{.Time}} on {{.Date}}.<br><br>`))

	deniedTmpl = template.Must(template.New("denied").Parse(
		`Hello {{.Name}},<br><br>
Sorry, we cannot take your reservation request for {{.Date}} at {{.Time}}.<br><br>
Reason: {{.Reason}}<br><br>
Click the button below to book a new time with your previous details:<br><br>
<a href="{{.RebookURL}}" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-align: center; text-decoration: none; display: inline-block; border-radius: 5px;">Book A New Time</a><br><br>
Please contact us if you have any questions.`))
)

type Mailer struct {
	client     *mail.Client
	sender     string
	maxRetries uint64
	logger     *slog.Logger
}

func NewMailer(cfg config.Config, logger *slog.Logger) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Mail.Host,
		mail.WithPort(cfg.Mail.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Mail.Username),
		mail.WithPassword(cfg.Mail.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build smtp client")
	}

	return &Mailer{
		client:     client,
		sender:     cfg.Mail.Sender,
		maxRetries: cfg.Approval.MaxSendRetries,
		logger:     logger,
	}, nil
}

func (m *Mailer) SendReceived(ctx context.Context, rm *readmodel.ReservationRM) error {
	body, err := render(receivedTmpl, map[string]string{
		"Name": rm.Name, "Date": rm.Date, "Time": rm.Time,
	})
	if err != nil {
		return err
	}
	return m.send(ctx, rm.Email, subjectReceived, body)
}

func (m *Mailer) SendConfirmed(ctx context.Context, rm *readmodel.ReservationRM) error {
	body, err := render(confirmedTmpl, map[string]string{
		"Name": rm.Name, "Date": rm.Date, "Time": rm.Time,
	})
	if err != nil {
		return err
	}
	return m.send(ctx, rm.Email, subjectConfirmed, body)
}

func (m *Mailer) SendDenied(ctx context.Context, rm *readmodel.ReservationRM, reason, rebookURL string) error {
	body, err := render(deniedTmpl, map[string]string{
		"Name": rm.Name, "Date": rm.Date, "Time": rm.Time,
		"Reason": reason, "RebookURL": rebookURL,
	})
	if err != nil {
		return err
	}
	return m.send(ctx, rm.Email, subjectDenied, body)
}

func (m *Mailer) send(ctx context.Context, recipient, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.sender); err != nil {
		return errs.Wrap(err, "invalid sender address")
	}
	if err := msg.To(recipient); err != nil {
		return errs.Wrap(err, "invalid recipient address")
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), m.maxRetries), ctx)
	err := backoff.Retry(func() error {
		return m.client.DialAndSendWithContext(ctx, msg)
	}, bo)
	if err != nil {
		return errs.Wrap(err, "failed to send email")
	}

	m.logger.Info("email sent", "recipient", recipient, "subject", subject)
	return nil
}

func render(tmpl *template.Template, data map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errs.Wrap(err, "failed to render email template")
	}
	return buf.String(), nil
}
