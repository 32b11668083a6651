package mothership

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"profilecrawler/internal/usecase"

	"go.uber.org/zap"
)

type payload struct {
	Source  string           `json:"source,omitempty"`
	Records []usecase.Record `json:"records"`
}

// Client posts crawl results to the mothership aggregation endpoint.
type Client struct {
	endpoint string
	source   string
	client   *http.Client
	logger   *zap.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger, rt http.RoundTripper) *Client {
	logger.Debug("new mothership client initialize", zap.String("endpoint", endpoint))
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout, Transport: rt},
		logger:   logger,
	}
}

// WithSource returns a copy of the client that tags every batch with the given seed.
func (c *Client) WithSource(source string) *Client {
	cp := *c
	cp.source = source
	return &cp
}

func (c *Client) Ingest(ctx context.Context, records []usecase.Record) error {
	if records == nil {
		records = []usecase.Record{}
	}
	raw, err := json.Marshal(payload{Source: c.source, Records: records})
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return &usecase.TransportError{Op: "ingest", URL: c.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("mothership unreachable", zap.String("endpoint", c.endpoint), zap.Error(err))
		return &usecase.TransportError{Op: "ingest", URL: c.endpoint, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("mothership rejected records", zap.Int("status", resp.StatusCode))
		return &usecase.RemoteRejectionError{Op: "ingest", URL: c.endpoint, StatusCode: resp.StatusCode}
	}
	c.logger.Info(fmt.Sprintf("delivered %d records to mothership", len(records)))
	return nil
}
