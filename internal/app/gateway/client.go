// internal/app/gateway/client.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultAuthTimeout bounds login and registration calls.
const DefaultAuthTimeout = 10 * time.Second

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

// Config configures a Client.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:8081/api".
	BaseURL string
	// Timeout applies to every call except login/register. Zero means no
	// client-side limit beyond the caller's context.
	Timeout time.Duration
	// AuthTimeout applies to login and register. Zero means DefaultAuthTimeout.
	AuthTimeout time.Duration
	// HTTPClient overrides the transport; nil uses a fresh http.Client.
	HTTPClient *http.Client
}

// Client is the typed HTTP client for the classroom backend.
// It is safe for concurrent use.
type Client struct {
	base        *url.URL
	http        *http.Client
	timeout     time.Duration
	authTimeout time.Duration
	log         *zap.Logger
}

// New validates cfg and returns a Client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("gateway: base url %q must be an absolute http(s) URL", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	auth := cfg.AuthTimeout
	if auth <= 0 {
		auth = DefaultAuthTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:        u,
		http:        hc,
		timeout:     cfg.Timeout,
		authTimeout: auth,
		log:         logger,
	}, nil
}

// call describes one backend request.
type call struct {
	op       string
	method   string
	path     string
	query    url.Values
	body     any
	timeout  time.Duration
	fallback string
}

// do performs c and returns the parsed envelope when the backend reported
// success. Every failure comes back as *Error.
func (c *Client) do(ctx context.Context, cl call) (envelope, error) {
	timeout := cl.timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target := c.base.JoinPath(cl.path)
	if len(cl.query) > 0 {
		target.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return envelope{}, &Error{Kind: KindMalformed, Op: cl.op, Message: cl.fallback, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target.String(), body)
	if err != nil {
		return envelope{}, &Error{Kind: KindConnectivity, Op: cl.op, Message: MsgConnectivity, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend unreachable",
			zap.String("op", cl.op),
			zap.String("request_id", reqID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return envelope{}, &Error{Kind: KindConnectivity, Op: cl.op, Message: MsgConnectivity, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return envelope{}, &Error{Kind: KindConnectivity, Op: cl.op, Status: resp.StatusCode, Message: MsgConnectivity, Err: err}
	}

	c.log.Debug("backend call",
		zap.String("op", cl.op),
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID),
		zap.Duration("elapsed", time.Since(start)))

	env, ok := parseEnvelope(raw)
	if !ok {
		c.log.Warn("malformed backend response",
			zap.String("op", cl.op),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", reqID))
		return envelope{}, &Error{
			Kind:    KindMalformed,
			Op:      cl.op,
			Status:  resp.StatusCode,
			Message: cl.fallback,
			Err:     fmt.Errorf("status %d: response is not a success envelope", resp.StatusCode),
		}
	}
	if !env.Success || resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if msg == "" {
			msg = cl.fallback
		}
		return envelope{}, &Error{Kind: KindServer, Op: cl.op, Status: resp.StatusCode, Message: msg}
	}
	return env, nil
}

// decodeInto runs cl and decodes the first present payload path into out.
func (c *Client) decodeInto(ctx context.Context, cl call, out any, paths ...string) error {
	env, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	if err := env.decode(out, paths...); err != nil {
		return c.malformed(cl, err)
	}
	return nil
}

func (c *Client) malformed(cl call, err error) *Error {
	c.log.Warn("unexpected backend payload", zap.String("op", cl.op), zap.Error(err))
	return &Error{Kind: KindMalformed, Op: cl.op, Message: cl.fallback, Err: err}
}

func q(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}
