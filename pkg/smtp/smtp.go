package smtp

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Attachment is a file sent along with a message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Sender delivers an already built message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Client is a mail client bound to one sender address.
type Client struct {
	sender Sender
	from   string
	domain string
}

func NewClient(sender Sender, from, domain string) *Client {
	return &Client{
		sender: sender,
		from:   from,
		domain: domain,
	}
}

// Send delivers an HTML email and returns its Message-ID.
func (c *Client) Send(to, subject, html string, attachments ...Attachment) (string, error) {
	msg := gomail.NewMessage()

	messageID := generateMessageID(c.domain)
	msg.SetHeader("Message-ID", messageID)
	msg.SetHeader("Date", time.Now().Format(time.RFC1123Z))
	msg.SetHeader("From", c.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	for _, a := range attachments {
		data := a.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {fmt.Sprintf("%s; name=%q", a.ContentType, a.Name)},
			}))
		}
		msg.Attach(a.Name, settings...)
	}

	if err := c.sender.DialAndSend(msg); err != nil {
		return "", err
	}
	return messageID, nil
}

func generateMessageID(domain string) string {
	if domain == "" {
		domain = "localhost"
	}
	return fmt.Sprintf("<%s@%s>", uuid.New().String(), domain)
}
