package rpc

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lumera-stats/lumerawatch/pkg/models"
)

// BalancesResponse represents the response from the bank balances endpoint.
type BalancesResponse struct {
	Balances []models.Coin `json:"balances"`
}

// DelegationsResponse represents the response from the delegations endpoint.
type DelegationsResponse struct {
	DelegationResponses []models.Delegation `json:"delegation_responses"`
}

// Balances returns every coin held by address. A missing balances field decodes as empty.
func (c *HTTPClient) Balances(ctx context.Context, address string) ([]models.Coin, error) {
	var out BalancesResponse
	if err := c.FetchJSON(ctx, BaseREST, fmt.Sprintf(balancesPath, url.PathEscape(address)), FetchOpts{}, &out); err != nil {
		return nil, err
	}
	if out.Balances == nil {
		return []models.Coin{}, nil
	}
	return out.Balances, nil
}

// Delegations returns the delegations made by address.
func (c *HTTPClient) Delegations(ctx context.Context, address string) ([]models.Delegation, error) {
	var out DelegationsResponse
	if err := c.FetchJSON(ctx, BaseREST, fmt.Sprintf(delegationsPath, url.PathEscape(address)), FetchOpts{}, &out); err != nil {
		return nil, err
	}
	if out.DelegationResponses == nil {
		return []models.Delegation{}, nil
	}
	return out.DelegationResponses, nil
}
