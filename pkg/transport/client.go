// Package transport ships captured frames to the remote biometric
// service. Each Send maps a flow to its fixed endpoint, issues exactly
// one request, and folds every failure mode into a Failure result so
// nothing raises past this boundary.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/irisauth/kiosk/internal/httpc"
	"github.com/irisauth/kiosk/internal/log"
	"github.com/irisauth/kiosk/pkg/capture"
)

// imageField is the multipart form field the remote reads the payload from.
const imageField = "iris_image"

// Client talks to the remote biometric service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger overrides the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpc.Client,
		logger:  log.With("component", "transport"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// serverResponse is the JSON body shared by all service endpoints.
type serverResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Error    string `json:"error"`
}

// Send ships one frame to the endpoint for flow and interprets the
// response. It issues exactly one request, never retries, and never
// returns an error: transport faults, malformed responses, and remote
// application errors all surface as a Failure result.
func (c *Client) Send(ctx context.Context, flow FlowKind, frame *capture.Frame) Result {
	if !flow.Valid() {
		c.logger.Error("send refused", "err", ErrUnknownFlow, "flow", string(flow))
		return failed(flow, "")
	}
	if frame == nil || len(frame.EncodedBytes) == 0 {
		c.logger.Error("send refused", "err", ErrNoFrame, "flow", string(flow))
		return failed(flow, "")
	}

	body, contentType, err := encodeFrame(frame)
	if err != nil {
		c.logger.Error("encode frame", "flow", string(flow), "err", err)
		return failed(flow, "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+flow.path(), body)
	if err != nil {
		c.logger.Error("build request", "flow", string(flow), "err", err)
		return failed(flow, "")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("send failed", "flow", string(flow), "err", err)
		return failed(flow, "")
	}
	defer resp.Body.Close()

	parsed, parseErr := decodeResponse(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info("send ok", "flow", string(flow),
			"status", resp.StatusCode, "frame", frame.ID)
		return Result{Outcome: Success, Message: parsed.Message, Flow: flow}
	}

	if parseErr != nil || parsed.Error == "" {
		// Non-2xx without a usable error message.
		c.logger.Warn("send rejected", "flow", string(flow),
			"status", resp.StatusCode, "parse_err", parseErr)
		return failed(flow, "")
	}

	c.logger.Info("send rejected", "flow", string(flow),
		"status", resp.StatusCode, "remote_err", parsed.Error)
	return failed(flow, parsed.Error)
}

// encodeFrame packages the frame bytes as a single multipart form field.
func encodeFrame(frame *capture.Frame) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(imageField, "iris.jpg")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(frame.EncodedBytes); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// decodeResponse parses the shared JSON body. An empty body decodes to
// the zero response, which is fine: 2xx with no body is still success.
func decodeResponse(r io.Reader) (serverResponse, error) {
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return serverResponse{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return serverResponse{}, nil
	}
	var parsed serverResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return serverResponse{}, fmt.Errorf("transport: decode response: %w", err)
	}
	return parsed, nil
}
