// Package mail sends the OTP emails through an SMTP relay. The mailbox
// credentials are read from the key-value store on every send and
// decrypted with the operator cipher, so rotating them needs no restart.
package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/connectpp/student-network/internal/model"
)

// Message is one outbound email. From is filled in by the sender when empty.
type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTML     string
}

// SecretStore returns the stored, still encrypted, value for name.
type SecretStore interface {
	Get(ctx context.Context, name string) (string, error)
}

// Decrypter turns a stored secret back into plain text.
type Decrypter interface {
	Decrypt(cipherText string) (string, error)
}

// Credentials of the outbound mailbox.
type Credentials struct {
	Address  string
	Password string
}

// SMTPSender delivers messages with go-mail.
type SMTPSender struct {
	Host     string
	Port     int
	FromName string

	secrets SecretStore
	cipher  Decrypter
	send    func(ctx context.Context, c Credentials, m *gomail.Msg) error
}

// NewSMTPSender returns a sender for host:port reading its credentials from secrets.
func NewSMTPSender(host string, port int, fromName string, secrets SecretStore, cipher Decrypter) *SMTPSender {
	s := &SMTPSender{Host: host, Port: port, FromName: fromName, secrets: secrets, cipher: cipher}
	s.send = s.dialAndSend
	return s
}

// Credentials loads and decrypts the mailbox address and password.
func (s *SMTPSender) Credentials(ctx context.Context) (Credentials, error) {
	addr, err := s.secret(ctx, model.AlertEmailAddressKey)
	if err != nil {
		return Credentials{}, err
	}
	pass, err := s.secret(ctx, model.AlertEmailPasswordKey)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Address: addr, Password: pass}, nil
}

func (s *SMTPSender) secret(ctx context.Context, name string) (string, error) {
	enc, err := s.secrets.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", name, err)
	}
	plain, err := s.cipher.Decrypt(enc)
	if err != nil {
		return "", fmt.Errorf("decrypt %s: %w", name, err)
	}
	return plain, nil
}

// Send delivers m. It blocks until the relay accepted or rejected it.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	creds, err := s.Credentials(ctx)
	if err != nil {
		return err
	}
	if m.From == "" {
		m.From = creds.Address
	}
	if m.FromName == "" {
		m.FromName = s.FromName
	}
	msg, err := Build(m)
	if err != nil {
		return err
	}
	if err := s.send(ctx, creds, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", m.To, err)
	}
	return nil
}

func (s *SMTPSender) dialAndSend(ctx context.Context, c Credentials, msg *gomail.Msg) error {
	client, err := gomail.NewClient(s.Host,
		gomail.WithPort(s.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthLogin),
		gomail.WithUsername(c.Address),
		gomail.WithPassword(c.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// Build converts m into a go-mail message.
func Build(m Message) (*gomail.Msg, error) {
	if m.To == "" {
		return nil, errors.New("mail: empty recipient")
	}
	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.FromName, m.From); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, m.HTML)
	return msg, nil
}
