// Package backend talks to the segmentation backend: it downloads point cloud
// artifacts for a batch and submits plane extraction requests.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"point2ct/pkg/config"
	"point2ct/pkg/export"
	"point2ct/pkg/geometry"
	"point2ct/pkg/ply"
)

// maxErrorBody limits how much of an error response is kept.
const maxErrorBody = 4096

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Client is a backend API client.
type Client struct {
	cfg    config.Backend
	http   *http.Client
	logger *log.Logger
}

// New creates a client. A nil httpClient gets one with the configured timeout.
func New(cfg config.Backend, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// SetLogger enables request logging.
func (c *Client) SetLogger(l *log.Logger) { c.logger = l }

func (c *Client) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

func (c *Client) endpoint(parts ...string) string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	for _, p := range parts {
		base += "/" + strings.Trim(p, "/")
	}
	return base
}

// FetchText downloads an artifact of the batch as text.
func (c *Client) FetchText(ctx context.Context, batchID, filename string) (string, error) {
	if batchID == "" {
		return "", errors.New("batch id is required")
	}

	u := c.endpoint(c.cfg.ModelPath, url.PathEscape(batchID), url.PathEscape(filename))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchPointCloud downloads and parses a PLY artifact of the batch.
func (c *Client) FetchPointCloud(ctx context.Context, batchID, filename string) ([]geometry.OrientedPoint, error) {
	text, err := c.FetchText(ctx, batchID, filename)
	if err != nil {
		return nil, err
	}

	points, err := ply.Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", filename)
	}
	c.logf("Loaded %d points from %s/%s", len(points), batchID, filename)

	return points, nil
}

// SubmitPlane posts a plane extraction request and returns the raw response.
func (c *Client) SubmitPlane(ctx context.Context, p *export.Payload) ([]byte, error) {
	if p == nil {
		return nil, errors.New("payload is required")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.cfg.PlanePath), bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	c.logf("%s %s", req.Method, req.URL)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method: req.Method,
			URL:    req.URL.String(),
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	return body, nil
}
