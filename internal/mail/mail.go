// Package mail delivers invoice emails over SMTP with PDF attachments.
package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
)

// Attachment is one file carried by a message.
type Attachment struct {
	Filename string
	Data     []byte
}

// Message is an outgoing email. From may be an alias distinct from the
// authenticating account.
type Message struct {
	From        string
	To          string
	CC          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers messages through one SMTP endpoint using PLAIN auth
// (typically an app password). STARTTLS is negotiated by the transport.
type Sender struct {
	Host     string
	Port     string
	Account  string
	Password string
}

// Send encodes and submits the message. Recipients are To plus every CC.
func (s *Sender) Send(msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mail: no recipient")
	}
	raw, err := Encode(msg)
	if err != nil {
		return fmt.Errorf("mail: encode: %w", err)
	}
	recipients := append([]string{msg.To}, msg.CC...)
	addr := net.JoinHostPort(s.Host, s.Port)
	auth := smtp.PlainAuth("", s.Account, s.Password, s.Host)
	if err := smtp.SendMail(addr, auth, s.Account, recipients, raw); err != nil {
		return fmt.Errorf("mail: send via %s: %w", addr, err)
	}
	return nil
}

const boundary = "timebill-mixed-boundary"

// Encode renders the message as multipart/mixed MIME: a text body part
// followed by base64 PDF attachment parts.
func Encode(msg Message) ([]byte, error) {
	var buf bytes.Buffer

	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }
	header("From", msg.From)
	header("To", msg.To)
	if len(msg.CC) > 0 {
		header("Cc", strings.Join(msg.CC, ", "))
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("MIME-Version", "1.0")
	header("Content-Type", `multipart/mixed; boundary="`+boundary+`"`)
	buf.WriteString("\r\n")

	part := func(headers []string, body []byte) {
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		for _, h := range headers {
			buf.WriteString(h + "\r\n")
		}
		buf.WriteString("\r\n")
		buf.Write(body)
		buf.WriteString("\r\n")
	}

	part([]string{
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: 7bit",
	}, []byte(msg.Body))

	for _, att := range msg.Attachments {
		if att.Filename == "" {
			return nil, fmt.Errorf("attachment without filename")
		}
		encoded := base64.StdEncoding.EncodeToString(att.Data)
		part([]string{
			"Content-Type: application/pdf",
			"Content-Transfer-Encoding: base64",
			fmt.Sprintf("Content-Disposition: attachment; filename=%q", att.Filename),
		}, wrap76([]byte(encoded)))
	}

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes(), nil
}

// wrap76 folds base64 output at 76 columns per RFC 2045.
func wrap76(b []byte) []byte {
	var out bytes.Buffer
	for len(b) > 76 {
		out.Write(b[:76])
		out.WriteString("\r\n")
		b = b[76:]
	}
	out.Write(b)
	return out.Bytes()
}
