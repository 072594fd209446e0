// Package restconf is the transport to a switch's RESTCONF configuration
// tree. It executes ordered request batches and reads configuration
// subtrees; it never decides what to send.
package restconf

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	contentType = "application/yang-data+json"
	rootPath    = "/restconf/"
)

// Reader fetches configuration subtrees.
type Reader interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// Transport is what the reconciler needs from a device connection.
type Transport interface {
	Reader
	Edit(ctx context.Context, requests []Request) error
}

// Config describes how to reach one device.
type Config struct {
	Address            string
	Username           string
	Password           string
	InsecureSkipVerify bool
	CAFile             string
	Timeout            time.Duration
	RetryMax           int
}

// DefaultConfig returns transport defaults for an unnamed device.
func DefaultConfig() Config {
	return Config{
		Timeout:  30 * time.Second,
		RetryMax: 2,
	}
}

// Client talks RESTCONF over HTTP(S). Connection-level failures and
// 429/503 responses are retried; any other failure aborts.
type Client struct {
	base     string
	username string
	password string
	http     *retryablehttp.Client
}

// NewClient builds a client for cfg.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.Address), "/")
	if base == "" {
		return nil, fmt.Errorf("restconf: address required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}

	tlsCfg, err := tlsConfig(cfg)
	if err != nil {
		return nil, err
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = leveledLogger{logger: log.Logger.With().Str("component", "restconf").Str("device", base).Logger()}
	rc.HTTPClient.Timeout = cfg.Timeout
	if transport, ok := rc.HTTPClient.Transport.(*http.Transport); ok {
		transport.TLSClientConfig = tlsCfg
	}

	return &Client{
		base:     base,
		username: cfg.Username,
		password: cfg.Password,
		http:     rc,
	}, nil
}

func tlsConfig(cfg Config) (*tls.Config, error) {
	out := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // lab switches ship self-signed certs
	}
	if strings.TrimSpace(cfg.CAFile) == "" {
		return out, nil
	}
	pem, err := os.ReadFile(cfg.CAFile)
	if err != nil {
		return nil, fmt.Errorf("restconf: read ca file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("restconf: no certificates in %s", cfg.CAFile)
	}
	out.RootCAs = pool
	return out, nil
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true, nil
	}
	return false, nil
}

// Get reads the subtree at path. ErrNotFound is returned when the device
// has nothing configured there.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	code, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, &Error{Message: err.Error(), Method: "get", Path: path, err: err}
	}
	switch {
	case code == http.StatusNotFound:
		return nil, ErrNotFound
	case code == http.StatusNoContent:
		return nil, nil
	case code >= 300:
		e := errorFromBody(code, body)
		e.Method, e.Path = "get", path
		return nil, e
	}
	return body, nil
}

// Edit applies requests in order and stops at the first failure. The
// returned error is always an *Error identifying the failed request.
func (c *Client) Edit(ctx context.Context, requests []Request) error {
	for i, req := range requests {
		var payload []byte
		if req.Method == MethodPatch {
			data, err := json.Marshal(req.Data)
			if err != nil {
				return &Error{Message: err.Error(), Method: req.Method, Path: req.Path, Index: i, err: err}
			}
			payload = data
		}
		code, body, err := c.do(ctx, strings.ToUpper(string(req.Method)), req.Path, payload)
		if err != nil {
			return &Error{Message: err.Error(), Method: req.Method, Path: req.Path, Index: i, err: err}
		}
		if code >= 300 {
			e := errorFromBody(code, body)
			e.Method, e.Path, e.Index = req.Method, req.Path, i
			return e
		}
		log.Debug().
			Str("device", c.base).
			Str("method", string(req.Method)).
			Str("path", req.Path).
			Int("status", code).
			Msg("restconf.Client.Edit applied")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var body any
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", contentType)
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) url(path string) string {
	return c.base + rootPath + strings.TrimLeft(path, "/")
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger zerolog.Logger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.emit(l.logger.Error(), msg, kv) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.emit(l.logger.Debug(), msg, kv) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.emit(l.logger.Trace(), msg, kv) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.emit(l.logger.Warn(), msg, kv) }

func (l leveledLogger) emit(ev *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

// IsTransportError reports whether err came from the device transport.
func IsTransportError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
