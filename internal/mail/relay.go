package mail

import (
	"context"
	"fmt"
	"sync"

	"github.com/eldtechnologies/folio/internal/metrics"
)

// ContactMessage is a validated contact form submission.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Body returns the text relayed to the site owner.
func (c ContactMessage) Body() string {
	return fmt.Sprintf("This message was sent by %s (%s):\n\n%s", c.Name, c.Email, c.Message)
}

// RelayConfig names the owner mailbox contact messages are delivered to.
type RelayConfig struct {
	Recipient     string
	RecipientName string
	FromName      string
}

// Relay serializes contact deliveries through a single Dispatcher.
type Relay struct {
	mu  sync.Mutex
	d   *Dispatcher
	cfg RelayConfig
}

// NewRelay wraps d. An empty Recipient defaults to the sender address.
func NewRelay(d *Dispatcher, cfg RelayConfig) *Relay {
	if cfg.Recipient == "" {
		cfg.Recipient = d.sender
	}
	if cfg.FromName == "" {
		cfg.FromName = "Your Portfolio Contact"
	}
	return &Relay{d: d, cfg: cfg}
}

// SendContact connects if needed, composes and sends one message, and
// closes the session afterwards.
func (r *Relay) SendContact(ctx context.Context, c ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.d.Connected() {
		if err := r.d.Connect(ctx); err != nil {
			metrics.ContactMessages.WithLabelValues("failed").Inc()
			return err
		}
	}

	r.d.Compose(r.cfg.Recipient, r.cfg.FromName, r.cfg.RecipientName, c.Subject, c.Body())
	if err := r.d.Send(ctx, true); err != nil {
		metrics.ContactMessages.WithLabelValues("failed").Inc()
		return err
	}

	metrics.ContactMessages.WithLabelValues("sent").Inc()
	return nil
}

// SendTest delivers a short message to target, used to verify relay settings.
func (r *Relay) SendTest(ctx context.Context, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.d.Connected() {
		if err := r.d.Connect(ctx); err != nil {
			return err
		}
	}
	r.d.Compose(target, r.cfg.FromName, "", "Relay test", "This is a test message from folio.")
	return r.d.Send(ctx, true)
}

// Close releases the underlying session.
func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.d.Close()
}
