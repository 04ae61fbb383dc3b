package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumera-stats/lumerawatch/pkg/retry"
)

// NodeStatus is the subset of the consensus RPC /status answer used for connection checks.
type NodeStatus struct {
	Result struct {
		NodeInfo struct {
			Network string `json:"network"`
			Version string `json:"version"`
			Moniker string `json:"moniker"`
		} `json:"node_info"`
		SyncInfo struct {
			LatestBlockHeight flexUint `json:"latest_block_height"`
			LatestBlockTime   string   `json:"latest_block_time"`
			CatchingUp        bool     `json:"catching_up"`
		} `json:"sync_info"`
	} `json:"result"`
}

// Status queries the consensus RPC /status endpoint.
func (c *HTTPClient) Status(ctx context.Context) (*NodeStatus, error) {
	var out NodeStatus
	if err := c.FetchJSON(ctx, BaseRPC, rpcStatusPath, FetchOpts{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Probe checks that the RPC endpoint answers, retrying with backoff. On failure the returned
// error carries the diagnosis for the endpoint.
func (c *HTTPClient) Probe(ctx context.Context, cfg retry.Config) (*NodeStatus, error) {
	var st *NodeStatus
	err := retry.WithBackoff(ctx, cfg, c.logger, "rpc_probe", func() error {
		var err error
		st, err = c.Status(ctx)
		if errors.Is(err, ErrCorsBlocked) {
			// the same origin is refused on every attempt
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Diagnose(err, c.rpc), err)
	}
	return st, nil
}
