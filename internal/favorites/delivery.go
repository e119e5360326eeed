package favorites

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"echod/internal/errors"
)

// SMTPDeliverer sends documents as attachments through an SMTP relay.
type SMTPDeliverer struct {
	Addr     string    // relay host:port
	From     string    // envelope and header sender
	Auth     smtp.Auth // nil → unauthenticated
	Body     string    // plain-text body; empty → "See attached documents."
	FileName string    // printf pattern for attachment names, gets 1-based index

	// SendMail defaults to smtp.SendMail.  Tests replace it.
	SendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Send delivers attachments to recipient.  Any failure, including
// message assembly, is returned as *errors.DeliveryError.
func (d *SMTPDeliverer) Send(recipient, subject string, attachments [][]byte) error {
	msg, err := d.compose(recipient, subject, attachments)
	if err != nil {
		return &errors.DeliveryError{Recipient: recipient, Err: err}
	}

	send := d.SendMail
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(d.Addr, d.Auth, d.From, []string{recipient}, msg); err != nil {
		return &errors.DeliveryError{Recipient: recipient, Err: err}
	}
	return nil
}

func (d *SMTPDeliverer) compose(recipient, subject string, attachments [][]byte) ([]byte, error) {
	for _, v := range []string{d.From, recipient, subject} {
		if strings.ContainsAny(v, "\r\n") {
			return nil, fmt.Errorf("%w: %q", errors.ErrHeaderValue, v)
		}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", d.From)
	fmt.Fprintf(&buf, "To: %s\r\n", recipient)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	body := d.Body
	if body == "" {
		body = "See attached documents."
	}
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return nil, err
	}

	pattern := d.FileName
	if pattern == "" {
		pattern = "Favorites_%d.txt"
	}
	for i, doc := range attachments {
		name := fmt.Sprintf(pattern, i+1)
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"application/octet-stream"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", name)},
		})
		if err != nil {
			return nil, err
		}
		enc := base64.NewEncoder(base64.StdEncoding, part)
		if _, err := enc.Write(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
