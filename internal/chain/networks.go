package chain

import (
	"fmt"
	"sort"
	"strings"
)

// knownNetworks are the EVM networks refcli ships presets for. The contract
// normally lives on BNB Smart Chain; the rest cover test deployments.
var knownNetworks = map[string]Descriptor{
	"bsc": {
		ChainID:        56,
		Name:           "BNB Smart Chain",
		RPCURL:         "https://bsc-dataseed.binance.org",
		ExplorerURL:    "https://bscscan.com",
		CurrencyName:   "BNB",
		CurrencySymbol: "BNB",
	},
	"bsc-testnet": {
		ChainID:        97,
		Name:           "BNB Smart Chain Testnet",
		RPCURL:         "https://data-seed-prebsc-1-s1.binance.org:8545",
		ExplorerURL:    "https://testnet.bscscan.com",
		CurrencyName:   "tBNB",
		CurrencySymbol: "tBNB",
	},
	"ethereum": {
		ChainID:        1,
		Name:           "Ethereum",
		RPCURL:         "https://eth.llamarpc.com",
		ExplorerURL:    "https://etherscan.io",
		CurrencyName:   "Ether",
		CurrencySymbol: "ETH",
	},
	"polygon": {
		ChainID:        137,
		Name:           "Polygon",
		RPCURL:         "https://polygon-rpc.com",
		ExplorerURL:    "https://polygonscan.com",
		CurrencyName:   "POL",
		CurrencySymbol: "POL",
	},
	"localhost": {
		ChainID:        31337,
		Name:           "Localhost",
		RPCURL:         "http://127.0.0.1:8545",
		ExplorerURL:    "",
		CurrencyName:   "Ether",
		CurrencySymbol: "ETH",
	},
}

// Network returns the preset descriptor for name.
func Network(name string) (Descriptor, error) {
	d, ok := knownNetworks[strings.ToLower(name)]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown network %q (known: %s)",
			name, strings.Join(NetworkNames(), ", "))
	}
	return d, nil
}

// NetworkNames lists the preset names, sorted.
func NetworkNames() []string {
	names := make([]string, 0, len(knownNetworks))
	for name := range knownNetworks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
