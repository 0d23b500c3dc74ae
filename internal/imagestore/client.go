package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fansite/forum/internal/forum"
	"github.com/fansite/forum/pkg/config"
	"github.com/fansite/forum/pkg/logging"
	"github.com/fansite/forum/pkg/telemetry"
)

// ErrDisabled is returned when no image store endpoint is configured
var ErrDisabled = errors.New("image store is not configured")

// Client talks to the external image store over HTTP
type Client struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
	logger  *zap.Logger
}

var _ forum.ImageStore = (*Client)(nil)

// New creates an image store client
func New(cfg *config.ImageStoreConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	base, err := url.Parse(cfg.URL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid image_store_url %q", cfg.URL)
	}

	logger := logging.WithComponent("image-store")

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 2
	httpClient.RetryWaitMin = 100 * time.Millisecond
	httpClient.RetryWaitMax = time.Second
	httpClient.Logger = leveledLogger{logger: logger.Sugar()}
	httpClient.HTTPClient.Timeout = cfg.Timeout
	httpClient.HTTPClient.Transport = otelhttp.NewTransport(httpClient.HTTPClient.Transport)

	logger.Info("Image store client initialized", zap.String("url", cfg.URL))

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		logger:  logger,
	}, nil
}

type uploadRequest struct {
	Image string `json:"image"`
}

type uploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Upload stores a base64 image and returns where it lives
func (c *Client) Upload(ctx context.Context, image string) (*forum.ImageRef, error) {
	ctx, span := telemetry.StartSpan(ctx, "imagestore.upload")
	defer span.End()

	body, err := json.Marshal(uploadRequest{Image: image})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upload: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/images", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError(resp)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if out.URL == "" || out.Key == "" {
		return nil, fmt.Errorf("upload response is missing url or key")
	}

	c.logger.Debug("Image uploaded", zap.String("key", out.Key))

	return &forum.ImageRef{URL: out.URL, Key: out.Key}, nil
}

// Delete removes an image. It reports false when the store had no such image.
func (c *Client) Delete(ctx context.Context, key string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "imagestore.delete")
	defer span.End()

	if key == "" {
		return false, fmt.Errorf("image key is required")
	}

	resp, err := c.do(ctx, http.MethodDelete, c.baseURL+"/images/"+url.PathEscape(key), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, statusError(resp)
	}
}

func (c *Client) do(ctx context.Context, method, target string, body []byte) (*http.Response, error) {
	var reader interface{}
	if body != nil {
		reader = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image store request failed: %w", err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("image store returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
}

// leveledLogger routes retryablehttp logs through zap
type leveledLogger struct {
	logger *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.logger.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.logger.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.logger.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.logger.Warnw(msg, kv...) }

// Disabled is the image store used when no endpoint is configured.
// Uploads fail; deletes are no-ops.
type Disabled struct{}

var _ forum.ImageStore = Disabled{}

// Upload always fails with ErrDisabled
func (Disabled) Upload(context.Context, string) (*forum.ImageRef, error) {
	return nil, ErrDisabled
}

// Delete reports that nothing was deleted
func (Disabled) Delete(context.Context, string) (bool, error) {
	return false, nil
}
