// Package client talks to a remote TOON conversion service (see package
// server).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/paularlott/toon"
	"github.com/paularlott/toon/internal/buildinfo"
	"github.com/paularlott/toon/internal/roundtrip"
	"github.com/paularlott/toon/pool"
)

// AuthProvider supplies the Authorization header for each request.
type AuthProvider interface {
	GetAuthHeader() (string, error)
	Refresh() error
}

// Client calls a conversion service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       AuthProvider
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the pooled HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// New creates a client for the service at baseURL. auth may be nil.
func New(baseURL string, auth AuthProvider, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: pool.GetPool().GetHTTPClient(),
		auth:       auth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RemoteError is an error response from the service.
type RemoteError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *RemoteError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("remote %s (status %d, request %s): %s", e.Code, e.Status, e.RequestID, e.Message)
	}
	return fmt.Sprintf("remote %s (status %d): %s", e.Code, e.Status, e.Message)
}

// Is lets errors.Is match the codec sentinels for the corresponding remote
// codes.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case toon.ErrFormat:
		return e.Code == "FORMAT_ERROR"
	case toon.ErrUnsupportedStructure:
		return e.Code == "UNSUPPORTED_STRUCTURE"
	}
	return false
}

// Encode converts a JSON document to TOON on the server.
func (c *Client) Encode(ctx context.Context, jsonDoc []byte, opts *toon.EncodeOptions) (string, error) {
	q := url.Values{}
	if opts != nil {
		if opts.Delimiter != 0 {
			q.Set("delimiter", string(opts.Delimiter))
		}
		if opts.Indent != "" {
			q.Set("indent", strconv.Itoa(len(opts.Indent)))
		}
	}

	body, err := c.post(ctx, "/v1/encode", q, "application/json", jsonDoc)
	if err != nil {
		return "", fmt.Errorf("encode failed: %w", err)
	}
	return string(body), nil
}

// Decode converts TOON text to compact JSON on the server.
func (c *Client) Decode(ctx context.Context, text string, opts *toon.DecodeOptions) ([]byte, error) {
	q := url.Values{}
	if opts != nil {
		if opts.Delimiter != 0 {
			q.Set("delimiter", string(opts.Delimiter))
		}
		if opts.Strict {
			q.Set("strict", "true")
		}
	}

	body, err := c.post(ctx, "/v1/decode", q, "text/toon", []byte(text))
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return bytes.TrimRight(body, "\n"), nil
}

// Check asks the server to round-trip a JSON document.
func (c *Client) Check(ctx context.Context, jsonDoc []byte) (*roundtrip.Report, error) {
	body, err := c.post(ctx, "/v1/check", nil, "application/json", jsonDoc)
	if err != nil {
		return nil, fmt.Errorf("check failed: %w", err)
	}

	var report roundtrip.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode check report: %w", err)
	}
	return &report, nil
}

func (c *Client) post(ctx context.Context, path string, q url.Values, contentType string, payload []byte) ([]byte, error) {
	body, status, err := c.send(ctx, path, q, contentType, payload)
	if err != nil {
		return nil, err
	}

	// A rejected token may just be stale; refresh once and retry.
	if status == http.StatusUnauthorized && c.auth != nil {
		if err := c.auth.Refresh(); err != nil {
			return nil, fmt.Errorf("failed to refresh credentials: %w", err)
		}
		body, status, err = c.send(ctx, path, q, contentType, payload)
		if err != nil {
			return nil, err
		}
	}

	if status != http.StatusOK {
		return nil, parseRemoteError(status, body)
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, path string, q url.Values, contentType string, payload []byte) ([]byte, int, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("User-Agent", buildinfo.UserAgent())

	if c.auth != nil {
		authHeader, err := c.auth.GetAuthHeader()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to get auth header: %w", err)
		}
		httpReq.Header.Set("Authorization", authHeader)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, httpResp.StatusCode, nil
}

func parseRemoteError(status int, body []byte) error {
	var eb struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"requestId"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &eb); err != nil || eb.Error.Code == "" {
		return &RemoteError{Status: status, Code: "HTTP_" + strconv.Itoa(status), Message: strings.TrimSpace(string(body))}
	}
	return &RemoteError{
		Status:    status,
		Code:      eb.Error.Code,
		Message:   eb.Error.Message,
		RequestID: eb.Error.RequestID,
	}
}
