package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resendlabs/resend-go"
)

// Sender delivers a rendered message. Resend in production, a recorder in tests.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

type ResendSender struct {
	client   *resend.Client
	from     string
	fromName string
}

func NewResendSender(apiKey, from, fromName string) *ResendSender {
	return &ResendSender{
		client:   resend.NewClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

func (s *ResendSender) Send(_ context.Context, to, subject, html string) (string, error) {
	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	resp, err := s.client.Emails.Send(params)
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return resp.Id, nil
}

var rsvpTemplate = template.Must(template.New("rsvp").Parse(`<p>Olá {{.FullName}},</p>
<p>Sua presença foi confirmada.{{if .EventDate}} Nos vemos em {{.EventDate}}.{{end}}</p>
{{if .SiteURL}}<p>Lista de presentes: <a href="{{.SiteURL}}">{{.SiteURL}}</a></p>{{end}}`))

type RSVPConfirmation struct {
	FullName  string
	Email     string
	EventDate string
	SiteURL   string
}

type EmailService struct {
	sender Sender
}

func NewEmailService(sender Sender) *EmailService {
	return &EmailService{sender: sender}
}

// SendRSVPConfirmation renders and sends the RSVP confirmation message.
func (s *EmailService) SendRSVPConfirmation(ctx context.Context, data RSVPConfirmation) (string, error) {
	var buf bytes.Buffer
	if err := rsvpTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render rsvp template: %w", err)
	}
	return s.sender.Send(ctx, data.Email, "Presença confirmada", buf.String())
}
