package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/folio/internal/metrics"
)

// Dispatcher owns one relay session and at most one pending message.
// It is not safe for concurrent use; see Relay for a serialized wrapper.
type Dispatcher struct {
	dialer  Dialer
	sender  string
	secret  string
	conn    Conn
	pending *Message
	logger  zerolog.Logger
}

// NewDispatcher creates a dispatcher that authenticates as sender.
// It does not connect; the first Send or an explicit Connect does.
func NewDispatcher(dialer Dialer, sender, secret string, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		dialer: dialer,
		sender: sender,
		secret: secret,
		logger: logger.With().Str("component", "mail").Logger(),
	}
}

// Connect opens a new relay session, replacing any existing one.
func (d *Dispatcher) Connect(ctx context.Context) error {
	if d.sender == "" || d.secret == "" {
		return fmt.Errorf("%w: sender address and secret are required", ErrAuthentication)
	}

	_ = d.Close()

	conn, err := d.dialer.Dial(ctx, d.sender, d.secret)
	if err != nil {
		return err
	}
	d.conn = conn
	d.logger.Debug().Msg("relay session opened")
	return nil
}

// Connected reports whether a relay session is held.
func (d *Dispatcher) Connected() bool {
	return d.conn != nil
}

// Compose replaces the pending message.
func (d *Dispatcher) Compose(target, fromName, toName, subject, message string) {
	if d.pending != nil {
		d.logger.Debug().Str("message_id", d.pending.ID).Msg("discarding unsent message")
	}
	d.pending = newMessage(d.sender, fromName, target, toName, subject, message)
}

// Pending returns the message waiting to be sent, or nil.
func (d *Dispatcher) Pending() *Message {
	return d.pending
}

// Send transmits the pending message. If the session is missing or has
// been dropped, it reconnects once and resends; a second failure is
// reported as ErrDelivery. Any failure drops the session. When closeAfter
// is true the session is also closed after a successful send.
func (d *Dispatcher) Send(ctx context.Context, closeAfter bool) error {
	msg := d.pending
	if msg == nil {
		return ErrNoMessage
	}

	raw, err := msg.Render()
	if err != nil {
		return fmt.Errorf("render message: %w", err)
	}

	err = d.transmit(msg, raw)
	if errors.Is(err, ErrDisconnected) {
		metrics.RelayReconnects.Inc()
		d.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("relay session lost, reconnecting")

		if cerr := d.Connect(ctx); cerr != nil {
			return fmt.Errorf("%w: reconnect: %w (after %w)", ErrDelivery, cerr, err)
		}
		if rerr := d.transmit(msg, raw); rerr != nil {
			_ = d.Close()
			return fmt.Errorf("%w: resend: %w (after %w)", ErrDelivery, rerr, err)
		}
	} else if err != nil {
		// A rejected transaction may be left open on the relay; the next
		// Send starts from a fresh session.
		_ = d.Close()
		return err
	}

	d.logger.Info().
		Str("message_id", msg.ID).
		Str("to", msg.ToAddress).
		Msg("message sent")
	d.pending = nil

	if closeAfter {
		return d.Close()
	}
	return nil
}

func (d *Dispatcher) transmit(msg *Message, raw []byte) error {
	if d.conn == nil {
		return fmt.Errorf("%w: no open session", ErrDisconnected)
	}
	return d.conn.Send(msg.FromAddress, []string{msg.ToAddress}, bytes.NewReader(raw))
}

// Close releases the relay session. Calling it without a session is a no-op.
func (d *Dispatcher) Close() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	if err != nil {
		d.logger.Debug().Err(err).Msg("relay session close")
	}
	return nil
}
