package gmailclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jakechorley/manpower/pkg/utils"
)

// Client sends email through the Gmail API as a single sender mailbox
type Client struct {
	service  *gmail.Service
	sender   string
	interval time.Duration

	sendMutex    sync.Mutex
	lastSendTime time.Time
}

// NewClient creates a Gmail client that sends as sender using the service
// account in credentialsFile
func NewClient(ctx context.Context, credentialsFile, sender string) (*Client, error) {
	httpClient, err := utils.ServiceAccountClient(ctx, credentialsFile, sender, gmail.GmailSendScope)
	if err != nil {
		return nil, err
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return newClient(service, sender), nil
}

func newClient(service *gmail.Service, sender string) *Client {
	return &Client{
		service:  service,
		sender:   sender,
		interval: EMAIL_INTERVAL,
	}
}
