package gmailclient

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
)

// EmailInterval is the minimum gap between two sends, to stay under Gmail rate limits
const EmailInterval = 3 * time.Second

// SendEmail sends a plain-text message, waiting out the send interval if needed
func (c *Client) SendEmail(to, subject, body string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if wait := waitTime(c.lastSendTime, time.Now(), c.interval); wait > 0 {
		time.Sleep(wait)
	}

	gmailMessage := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(buildMessage(c.from, to, subject, body))),
	}

	if _, err := c.service.Users.Messages.Send("me", gmailMessage).Context(c.ctx).Do(); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	c.lastSendTime = time.Now()
	return nil
}

func waitTime(last, now time.Time, interval time.Duration) time.Duration {
	if last.IsZero() {
		return 0
	}
	elapsed := now.Sub(last)
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}

// buildMessage renders an RFC 2822 message. Header values are stripped of line breaks.
func buildMessage(from, to, subject, body string) string {
	clean := strings.NewReplacer("\r", "", "\n", " ")

	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", clean.Replace(from))
	}
	fmt.Fprintf(&b, "To: %s\r\n", clean.Replace(to))
	fmt.Fprintf(&b, "Subject: %s\r\n", clean.Replace(subject))
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(body)
	return b.String()
}
