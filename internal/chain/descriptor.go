package chain

// Descriptor carries the full network metadata a wallet needs to register
// an unknown chain (EIP-3085 wallet_addEthereumChain payload shape).
type Descriptor struct {
	ChainID        int64  `json:"chain_id"`
	Name           string `json:"name"`
	RPCURL         string `json:"rpc_url"`
	ExplorerURL    string `json:"explorer_url"`
	CurrencyName   string `json:"currency_name"`
	CurrencySymbol string `json:"currency_symbol"`
}
