package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

var (
	// ErrConnection means the relay could not be reached or the TLS upgrade failed.
	ErrConnection = errors.New("relay connection failed")
	// ErrAuthentication means the relay rejected the sender credentials.
	ErrAuthentication = errors.New("relay authentication failed")
	// ErrDisconnected means the transport session is no longer usable.
	ErrDisconnected = errors.New("relay session disconnected")
	// ErrDelivery means a send still failed after the single reconnect.
	ErrDelivery = errors.New("message delivery failed")
	// ErrNoMessage is returned by Send when nothing has been composed.
	ErrNoMessage = errors.New("no pending message")
)

// Conn is an authenticated session with a relay.
// Send must wrap ErrDisconnected when the session has gone away.
type Conn interface {
	Send(from string, to []string, msg io.Reader) error
	Close() error
}

// Dialer opens authenticated relay sessions.
// Dial must wrap ErrConnection or ErrAuthentication on failure.
type Dialer interface {
	Dial(ctx context.Context, username, secret string) (Conn, error)
}

const dialTimeout = 30 * time.Second

// SMTPDialer dials an SMTP relay, upgrading with STARTTLS and
// authenticating with SASL PLAIN.
type SMTPDialer struct {
	Host      string
	Port      int
	StartTLS  bool
	TLSConfig *tls.Config
}

// Addr returns the relay host:port.
func (d *SMTPDialer) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// Dial implements Dialer. ctx bounds the TCP dial, the STARTTLS
// handshake and authentication.
func (d *SMTPDialer) Dial(ctx context.Context, username, secret string) (Conn, error) {
	nd := net.Dialer{Timeout: dialTimeout}
	conn, err := nd.DialContext(ctx, "tcp", d.Addr())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnection, d.Addr(), err)
	}

	// Closing the socket unblocks the handshake if ctx ends first
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})

	c, err := d.handshake(conn, username, secret)
	if !stop() {
		if c != nil {
			c.Close()
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrConnection, d.Addr(), ctx.Err())
	}
	if err != nil {
		return nil, err
	}
	return &smtpConn{client: c}, nil
}

func (d *SMTPDialer) handshake(conn net.Conn, username, secret string) (*smtp.Client, error) {
	var c *smtp.Client
	if d.StartTLS {
		cfg := d.TLSConfig
		if cfg == nil {
			cfg = &tls.Config{ServerName: d.Host}
		}
		var err error
		c, err = smtp.NewClientStartTLS(conn, cfg)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: starttls: %w", ErrConnection, err)
		}
	} else {
		c = smtp.NewClient(conn)
	}

	if err := c.Auth(sasl.NewPlainClient("", username, secret)); err != nil {
		c.Close()
		var smtpErr *smtp.SMTPError
		if errors.As(err, &smtpErr) {
			return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
		}
		return nil, fmt.Errorf("%w: auth: %w", ErrConnection, err)
	}
	return c, nil
}

type smtpConn struct {
	client *smtp.Client
}

func (c *smtpConn) Send(from string, to []string, msg io.Reader) error {
	if err := c.client.SendMail(from, to, msg); err != nil {
		if isDisconnect(err) {
			return fmt.Errorf("%w: %w", ErrDisconnected, err)
		}
		return err
	}
	return nil
}

func (c *smtpConn) Close() error {
	if err := c.client.Quit(); err != nil {
		return c.client.Close()
	}
	return nil
}

// isDisconnect reports whether err means the relay dropped the session.
func isDisconnect(err error) bool {
	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		// 421: service not available, closing transmission channel
		return smtpErr.Code == 421
	}
	return false
}
