package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/lumera-stats/lumerawatch/pkg/utils"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single gateway call.
	DefaultTimeout = 15 * time.Second
	// HistoryTimeout bounds tx search calls, which are the slowest on public gateways.
	HistoryTimeout = 10 * time.Second
)

// Base selects which upstream a path is resolved against.
type Base int

const (
	// BaseREST is the cosmos-sdk REST gateway (LCD).
	BaseREST Base = iota
	// BaseRPC is the consensus-engine RPC endpoint.
	BaseRPC
)

// HTTPClient is a thin JSON client over the chain's REST gateway and consensus RPC.
// It keeps no state between calls beyond the underlying http.Client.
type HTTPClient struct {
	rest    string
	rpc     string
	origin  string
	timeout time.Duration
	client  *http.Client
	logger  *zap.Logger
}

// Opts is the set of options for a new HTTPClient.
type Opts struct {
	RESTEndpoint string
	RPCEndpoint  string
	// Origin, when set, is sent on every request and the response must allow it, as a browser would.
	Origin     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// FetchOpts tunes one FetchJSON call.
type FetchOpts struct {
	Timeout time.Duration
}

// NewHTTPWithOpts creates a new HTTPClient with the given options.
func NewHTTPWithOpts(o Opts) *HTTPClient {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	client := o.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		rest:    utils.TrimBase(o.RESTEndpoint),
		rpc:     utils.TrimBase(o.RPCEndpoint),
		origin:  o.Origin,
		timeout: o.Timeout,
		client:  client,
		logger:  logger,
	}
}

// RESTEndpoint returns the configured REST base.
func (c *HTTPClient) RESTEndpoint() string { return c.rest }

// RPCEndpoint returns the configured consensus RPC base.
func (c *HTTPClient) RPCEndpoint() string { return c.rpc }

func (c *HTTPClient) baseURL(b Base) string {
	if b == BaseRPC {
		return c.rpc
	}
	return c.rest
}

// FetchJSON issues a GET against base+path and decodes the JSON body into out.
// The call is bounded by a hard timeout; on expiry the request is aborted and a Timeout error returned.
// Every failure is a *GatewayError.
func (c *HTTPClient) FetchJSON(ctx context.Context, base Base, path string, opts FetchOpts, out any) error {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := c.baseURL(base) + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		// Malformed URL: nothing was sent, so it is a local failure rather than an endpoint one.
		return &GatewayError{Kind: KindNetworkUnreachable, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyTransport(ctx, url, err)
	}
	// From here on, always drain+close the body before returning.
	defer func() { _ = utils.DrainAndClose(resp.Body) }()

	if c.origin != "" && !corsAllows(resp.Header, c.origin) {
		return &GatewayError{Kind: KindCorsBlocked, Status: resp.StatusCode, URL: url}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GatewayError{Kind: KindHTTP, Status: resp.StatusCode, URL: url}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(ctx, err) {
			return &GatewayError{Kind: KindTimeout, URL: url, Err: err}
		}
		return &GatewayError{Kind: KindDecode, Status: resp.StatusCode, URL: url, Err: err}
	}
	return nil
}

func corsAllows(h http.Header, origin string) bool {
	allowed := strings.TrimSpace(h.Get("Access-Control-Allow-Origin"))
	return allowed == "*" || strings.EqualFold(allowed, origin)
}
