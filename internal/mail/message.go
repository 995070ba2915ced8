package mail

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/gomail.v2"
)

// Message is an outbound email held by a Dispatcher until it is sent.
type Message struct {
	ID          string
	FromAddress string
	FromName    string
	ToAddress   string
	ToName      string
	Subject     string
	Body        string
	Date        time.Time
}

// newMessage builds a message with a fresh ULID identifier.
func newMessage(from, fromName, to, toName, subject, body string) *Message {
	return &Message{
		ID:          ulid.Make().String(),
		FromAddress: from,
		FromName:    fromName,
		ToAddress:   to,
		ToName:      toName,
		Subject:     subject,
		Body:        body,
		Date:        time.Now(),
	}
}

// Render produces the RFC 5322 representation of the message.
func (m *Message) Render() ([]byte, error) {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.FromAddress, m.FromName)
	msg.SetAddressHeader("To", m.ToAddress, m.ToName)
	msg.SetHeader("Subject", m.Subject)
	msg.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", m.ID, domainOf(m.FromAddress)))
	msg.SetDateHeader("Date", m.Date)
	msg.SetBody("text/plain", m.Body)

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func domainOf(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 && i < len(address)-1 {
		return address[i+1:]
	}
	return "localhost"
}
