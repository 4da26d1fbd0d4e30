package gmailclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Client sends notification e-mails through the Gmail API as the authorized user
type Client struct {
	service      *gmail.Service
	ctx          context.Context
	from         string
	interval     time.Duration
	lastSendTime time.Time
	sendMutex    sync.Mutex
}

// NewClient creates a Gmail client from an already-authorized HTTP client.
// from may be empty, in which case Gmail fills in the account address.
func NewClient(ctx context.Context, httpClient *http.Client, from string) (*Client, error) {
	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &Client{
		service:  service,
		ctx:      ctx,
		from:     from,
		interval: EmailInterval,
	}, nil
}
