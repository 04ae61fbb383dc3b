package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lumera-stats/lumerawatch/pkg/models"
	"go.uber.org/zap"
)

// ValidatorStrategy is one way of listing validators. Strategies are tried in order and the first
// non-empty result wins.
type ValidatorStrategy struct {
	Name   string
	Base   Base
	Path   string
	Decode func(raw json.RawMessage) ([]models.Validator, error)
}

// ValidatorStrategies is the ordered fallback chain used by Validators.
var ValidatorStrategies = []ValidatorStrategy{
	{Name: "staking", Base: BaseREST, Path: validatorsPath, Decode: decodeStakingValidators},
	{Name: "legacy", Base: BaseREST, Path: legacyValidatorsPath, Decode: decodeLegacyValidators},
	{Name: "consensus", Base: BaseRPC, Path: rpcValidatorsPath, Decode: decodeConsensusValidators},
}

func decodeStakingValidators(raw json.RawMessage) ([]models.Validator, error) {
	var out struct {
		Validators []models.Validator `json:"validators"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out.Validators, nil
}

// decodeLegacyValidators reads either a `result` or a `validators` array.
func decodeLegacyValidators(raw json.RawMessage) ([]models.Validator, error) {
	var out struct {
		Result     json.RawMessage    `json:"result"`
		Validators []models.Validator `json:"validators"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if nonEmptyArray(out.Result) {
		var vals []models.Validator
		if err := json.Unmarshal(out.Result, &vals); err != nil {
			return nil, err
		}
		return vals, nil
	}
	return out.Validators, nil
}

// decodeConsensusValidators reads `result.validators` from the consensus RPC. Entries carry no
// bond status and therefore never count as bonded.
func decodeConsensusValidators(raw json.RawMessage) ([]models.Validator, error) {
	var out struct {
		Result struct {
			Validators []models.Validator `json:"validators"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out.Result.Validators, nil
}

// Validators lists validators using the first strategy that yields a non-empty list.
// Per-strategy failures are logged and the next strategy is tried. When every strategy is
// exhausted the returned error matches ErrNoValidatorsFound and wraps the individual failures.
func (c *HTTPClient) Validators(ctx context.Context) ([]models.Validator, error) {
	return c.validatorsWith(ctx, ValidatorStrategies)
}

func (c *HTTPClient) validatorsWith(ctx context.Context, strategies []ValidatorStrategy) ([]models.Validator, error) {
	errs := []error{ErrNoValidatorsFound}
	for _, s := range strategies {
		var raw json.RawMessage
		if err := c.FetchJSON(ctx, s.Base, s.Path, FetchOpts{}, &raw); err != nil {
			c.logger.Warn("validator strategy failed",
				zap.String("strategy", s.Name),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		vals, err := s.Decode(raw)
		if err != nil {
			c.logger.Warn("validator strategy returned malformed body",
				zap.String("strategy", s.Name),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, &GatewayError{Kind: KindDecode, Err: err}))
			continue
		}
		if len(vals) == 0 {
			c.logger.Debug("validator strategy returned no validators", zap.String("strategy", s.Name))
			continue
		}
		c.logger.Debug("validators listed",
			zap.String("strategy", s.Name),
			zap.Int("count", len(vals)))
		return vals, nil
	}
	return nil, errors.Join(errs...)
}
