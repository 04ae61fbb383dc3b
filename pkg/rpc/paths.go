package rpc

// Gateway paths for the cosmos-sdk REST API and the consensus-engine RPC.
// All paths are consolidated here so endpoint shape changes touch a single file.

const (
	// Bank queries
	balancesPath = "/cosmos/bank/v1beta1/balances/%s?pagination.limit=1000"

	// Staking queries
	validatorsPath       = "/cosmos/staking/v1beta1/validators?status=" + BondStatusBondedQuery + "&pagination.limit=100"
	legacyValidatorsPath = "/staking/validators"
	delegationsPath      = "/cosmos/staking/v1beta1/delegations/%s"

	// Block queries
	latestBlockPath   = "/cosmos/base/tendermint/v1beta1/blocks/latest"
	blockByHeightPath = "/cosmos/base/tendermint/v1beta1/blocks/%d"

	// Transaction queries
	txsByEventsPath = "/cosmos/tx/v1beta1/txs?events=%s&order_by=ORDER_BY_DESC&pagination.limit=%d"
	txByHashPath    = "/cosmos/tx/v1beta1/txs/%s"

	// Consensus-engine queries (RPC base)
	rpcValidatorsPath = "/validators"
	rpcStatusPath     = "/status"
)

// BondStatusBondedQuery is the status filter used by the primary validator listing.
const BondStatusBondedQuery = "BOND_STATUS_BONDED"
