package rpc

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/lumera-stats/lumerawatch/pkg/models"
)

// displayHashLen is the number of hex characters kept for a block-embedded tx identifier.
const displayHashLen = 64

// BlockResponse represents the response from the tendermint blocks endpoint.
// Only the fields the dashboard reads are mapped.
type BlockResponse struct {
	BlockID struct {
		Hash string `json:"hash"`
	} `json:"block_id"`
	Block struct {
		Header struct {
			Height          flexUint `json:"height"`
			Time            string   `json:"time"`
			Hash            string   `json:"hash"`
			LastCommitHash  string   `json:"last_commit_hash"`
			ProposerAddress string   `json:"proposer_address"`
			ChainID         string   `json:"chain_id"`
		} `json:"header"`
		Data struct {
			Txs []string `json:"txs"`
		} `json:"data"`
	} `json:"block"`
}

// ToBlockInfo converts a BlockResponse into a BlockInfo. requested is used when the header omits the height.
func (br *BlockResponse) ToBlockInfo(requested uint64) *models.BlockInfo {
	h := br.Block.Header
	height := uint64(h.Height)
	if height == 0 {
		height = requested
	}

	hash := br.BlockID.Hash
	if hash == "" {
		hash = h.LastCommitHash
	}
	if hash == "" {
		hash = h.Hash
	}

	blockTime, _ := time.Parse(time.RFC3339Nano, h.Time)

	txs := br.Block.Data.Txs
	block := &models.BlockInfo{
		Height:       height,
		Hash:         base64ToHex(hash),
		Time:         blockTime,
		NumTxs:       len(txs),
		Proposer:     base64ToHex(h.ProposerAddress),
		Transactions: make([]models.TransactionDetail, 0, len(txs)),
		RawTxs:       txs,
	}
	for idx, raw := range txs {
		block.Transactions = append(block.Transactions, models.TransactionDetail{
			Hash:      DisplayTxHash(raw, height, idx),
			Height:    height,
			Type:      string(MsgKindUnknown),
			Timestamp: blockTime,
			Status:    models.TxStatusSuccess,
		})
	}
	return block
}

// DisplayTxHash turns a base64 tx envelope into the hex display identifier used in block listings.
// It is the hex of the raw bytes truncated to 64 characters: a best-effort label, not the tx hash,
// and not guaranteed unique. Undecodable input yields "tx-<height>-<index>".
func DisplayTxHash(raw string, height uint64, idx int) string {
	bz, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(bz) == 0 {
		return fmt.Sprintf("tx-%d-%d", height, idx)
	}
	h := hex.EncodeToString(bz)
	if len(h) > displayHashLen {
		h = h[:displayHashLen]
	}
	return h
}

// TxHash computes the canonical transaction hash (uppercase hex SHA-256 of the envelope bytes).
func TxHash(raw string) (string, error) {
	bz, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("decode tx envelope: %w", err)
	}
	sum := sha256.Sum256(bz)
	return strings.ToUpper(hex.EncodeToString(sum[:])), nil
}

// base64ToHex renders base64 hashes/addresses as uppercase hex, leaving anything else untouched.
func base64ToHex(s string) string {
	if s == "" {
		return ""
	}
	bz, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return s
	}
	return strings.ToUpper(hex.EncodeToString(bz))
}

// LatestBlock returns the head block.
func (c *HTTPClient) LatestBlock(ctx context.Context) (*models.BlockInfo, error) {
	var out BlockResponse
	if err := c.FetchJSON(ctx, BaseREST, latestBlockPath, FetchOpts{}, &out); err != nil {
		return nil, err
	}
	return out.ToBlockInfo(0), nil
}

// LatestHeight returns the height of the chain head. A head without a height decodes as 0.
func (c *HTTPClient) LatestHeight(ctx context.Context) (uint64, error) {
	var out BlockResponse
	if err := c.FetchJSON(ctx, BaseREST, latestBlockPath, FetchOpts{}, &out); err != nil {
		return 0, err
	}
	return uint64(out.Block.Header.Height), nil
}

// BlockByHeight returns the block at the given height.
func (c *HTTPClient) BlockByHeight(ctx context.Context, height uint64) (*models.BlockInfo, error) {
	var out BlockResponse
	if err := c.FetchJSON(ctx, BaseREST, fmt.Sprintf(blockByHeightPath, height), FetchOpts{}, &out); err != nil {
		return nil, err
	}
	return out.ToBlockInfo(height), nil
}
