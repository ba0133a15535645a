package notify

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const sendGridHost = "https://api.sendgrid.com"

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	To      string
	Subject string
	Body    string
	HTML    string
}

// Confirmation is what a patient is told after a booking is stored.
type Confirmation struct {
	Patient   string
	Treatment string
	Date      string
	Slot      string
}

var confirmationHTML = template.Must(template.New("confirmation").Parse(`
    <div>
    <p>{{.Patient}}</p>
    <p>{{.Treatment}}</p>
    <p>{{.Date}}</p>
    <p>{{.Slot}}</p>
    </div>
`))

// ConfirmationMessage renders the booking confirmation email.
func ConfirmationMessage(c Confirmation) (Message, error) {
	subject := fmt.Sprintf("Your appointment for %s is on %s at %s is confirmed", c.Treatment, c.Date, c.Slot)
	var html strings.Builder
	if err := confirmationHTML.Execute(&html, c); err != nil {
		return Message{}, err
	}
	return Message{To: c.Patient, Subject: subject, Body: subject, HTML: html.String()}, nil
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	ReplyTo   string
	// Host overrides the API host, for tests.
	Host string
}

type SendGridSender struct {
	client  *sendgrid.Client
	from    *mail.Email
	replyTo string
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	host := cfg.Host
	if host == "" {
		host = sendGridHost
	}
	req := sendgrid.GetRequest(cfg.APIKey, "/v3/mail/send", host)
	req.Method = "POST"
	return &SendGridSender{
		client:  &sendgrid.Client{Request: req},
		from:    mail.NewEmail(cfg.FromName, cfg.FromEmail),
		replyTo: cfg.ReplyTo,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	html := msg.HTML
	if html == "" {
		html = msg.Body
	}
	message := mail.NewSingleEmail(s.from, msg.Subject, mail.NewEmail("", msg.To), msg.Body, html)
	if s.replyTo != "" {
		message.SetReplyTo(mail.NewEmail("", s.replyTo))
	}
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender only logs. Used when mail is not configured.
type LogSender struct {
	Log *zap.Logger
}

func (l LogSender) Send(_ context.Context, msg Message) error {
	l.Log.Info("mail disabled, not sending", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// Dispatcher sends booking confirmations in the background. Outcomes are
// logged; nothing is returned to the caller and nothing is retried.
type Dispatcher struct {
	sender  Sender
	log     *zap.Logger
	timeout time.Duration
	done    func()
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{sender: sender, log: log, timeout: 15 * time.Second}
}

// OnDone registers fn to run after every dispatch finishes.
func (d *Dispatcher) OnDone(fn func()) *Dispatcher {
	d.done = fn
	return d
}

func (d *Dispatcher) Dispatch(c Confirmation) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if d.done != nil {
			defer d.done()
		}
		msg, err := ConfirmationMessage(c)
		if err != nil {
			d.log.Error("render confirmation", zap.Error(err))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.sender.Send(ctx, msg); err != nil {
			d.log.Error("booking confirmation not sent", zap.String("to", c.Patient), zap.Error(err))
			return
		}
		d.log.Info("booking confirmation sent", zap.String("to", c.Patient), zap.String("treatment", c.Treatment))
	}()
}

// Wait blocks until every dispatched confirmation has finished or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
