package rpc_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/lumera-stats/lumerawatch/pkg/rpc"
)

const (
	testREST = "http://rest.mock"
	testRPC  = "http://rpc.mock"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestRPCClient(handler http.Handler) *rpc.HTTPClient {
	return newTestRPCClientWithOpts(handler, rpc.Opts{})
}

func newTestRPCClientWithOpts(handler http.Handler, opts rpc.Opts) *rpc.HTTPClient {
	return newTestRPCClientWithTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		resp := rec.Result()
		if resp.Body == nil {
			resp.Body = http.NoBody
		}
		return resp, nil
	}), opts)
}

func newTestRPCClientWithTransport(rt http.RoundTripper, opts rpc.Opts) *rpc.HTTPClient {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RESTEndpoint == "" {
		opts.RESTEndpoint = testREST
	}
	if opts.RPCEndpoint == "" {
		opts.RPCEndpoint = testRPC
	}
	opts.HTTPClient = &http.Client{Transport: rt}
	return rpc.NewHTTPWithOpts(opts)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
