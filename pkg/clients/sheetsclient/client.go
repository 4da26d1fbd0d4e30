package sheetsclient

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client reads the employee roster from a Google spreadsheet
type Client struct {
	service       *sheets.Service
	spreadsheetID string
	employeesTab  string
}

// NewClient creates a Sheets client from an already-authorized HTTP client
func NewClient(ctx context.Context, httpClient *http.Client, spreadsheetID, employeesTab string) (*Client, error) {
	service, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: spreadsheetID,
		employeesTab:  employeesTab,
	}, nil
}

// GetValues reads values from a spreadsheet range
func (c *Client) GetValues(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get values: %w", err)
	}

	return resp.Values, nil
}
