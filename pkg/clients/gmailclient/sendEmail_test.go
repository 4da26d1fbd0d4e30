package gmailclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitTime(t *testing.T) {
	now := time.Date(2025, 8, 11, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Duration(0), waitTime(time.Time{}, now, EmailInterval), "first send never waits")
	assert.Equal(t, 2*time.Second, waitTime(now.Add(-time.Second), now, EmailInterval))
	assert.Equal(t, time.Duration(0), waitTime(now.Add(-EmailInterval), now, EmailInterval))
	assert.Equal(t, time.Duration(0), waitTime(now.Add(-time.Minute), now, EmailInterval))
}

func TestBuildMessage(t *testing.T) {
	got := buildMessage("rota@example.com", "manager@example.com", "Schedule rejected: 2025-08-11", "Body line")

	assert.Equal(t, "From: rota@example.com\r\n"+
		"To: manager@example.com\r\n"+
		"Subject: Schedule rejected: 2025-08-11\r\n"+
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n"+
		"Body line", got)
}

func TestBuildMessage_StripsHeaderInjection(t *testing.T) {
	got := buildMessage("", "a@example.com\r\nBcc: b@example.com", "hi", "")

	assert.NotContains(t, got, "From:")
	assert.Contains(t, got, "To: a@example.com Bcc: b@example.com\r\n")
}
