// Package config resolves the static environment the tool runs against:
// contract and token addresses, chain metadata, and fee policy. Loaded once
// at startup and never mutated.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"

	"github.com/refmatrix/refcli/internal/chain"
)

// Fatal configuration errors. Absence of either address is terminal: no
// connect or action is possible until the config is fixed.
var (
	ErrMissingContract = errors.New("matrix contract address is not configured")
	ErrMissingToken    = errors.New("fee token address is not configured")
)

const configFile = "config.json"

// Config holds all refcli configuration.
type Config struct {
	ContractAddress string `json:"contract_address"`
	TokenAddress    string `json:"token_address"`
	ChainID         int64  `json:"chain_id"`
	NetworkName     string `json:"network_name"`
	RPCURL          string `json:"rpc_url"`
	// BackupRPCURLs are probed when the primary endpoint is down.
	BackupRPCURLs []string `json:"backup_rpc_urls,omitempty"`
	ExplorerURL     string `json:"explorer_url"`
	CurrencyName    string `json:"currency_name"`
	CurrencySymbol  string `json:"currency_symbol"`
	AppName         string `json:"app_name"`

	// Fee policy, in whole token units.
	RegistrationFee int64 `json:"registration_fee"`
	// ApproveAmount is larger than the fee so repeated actions do not
	// each need a fresh approval; see DESIGN.md.
	ApproveAmount int64  `json:"approve_amount"`
	TokenDecimals int    `json:"token_decimals"`
	TokenSymbol   string `json:"token_symbol"`

	// TokenPriceID is the CoinGecko coin id used for fiat display; empty
	// disables pricing.
	TokenPriceID  string `json:"token_price_id,omitempty"`
	PriceCurrency string `json:"price_currency,omitempty"`

	// UserAgent is the hosting-environment string used for device
	// classification. Empty means desktop.
	UserAgent string `json:"user_agent,omitempty"`

	// internal: config dir path used for Save()
	configDir string
}

// Load reads config from dir (or creates defaults), then applies REFCLI_*
// environment overrides. dir defaults to ~/.refcli.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".refcli")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		cfg.configDir = dir
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Validate reports the fatal configuration errors.
func (c *Config) Validate() error {
	if c.ContractAddress == "" {
		return ErrMissingContract
	}
	if c.TokenAddress == "" {
		return ErrMissingToken
	}
	return nil
}

// Descriptor returns the network metadata used for wallet-side chain
// registration.
func (c *Config) Descriptor() chain.Descriptor {
	return chain.Descriptor{
		ChainID:        c.ChainID,
		Name:           c.NetworkName,
		RPCURL:         c.RPCURL,
		ExplorerURL:    c.ExplorerURL,
		CurrencyName:   c.CurrencyName,
		CurrencySymbol: c.CurrencySymbol,
	}
}

// ApplyNetwork points the config at a network descriptor. Contract and
// token addresses are deployment-specific and left as they are.
func (c *Config) ApplyNetwork(d chain.Descriptor) {
	c.ChainID = d.ChainID
	c.NetworkName = d.Name
	c.RPCURL = d.RPCURL
	c.ExplorerURL = d.ExplorerURL
	c.CurrencyName = d.CurrencyName
	c.CurrencySymbol = d.CurrencySymbol
}

// FeeRaw returns the registration fee scaled to the token's decimals.
func (c *Config) FeeRaw() *big.Int {
	return chain.Units(c.RegistrationFee, c.TokenDecimals)
}

// ApproveRaw returns the approval amount scaled to the token's decimals.
func (c *Config) ApproveRaw() *big.Int {
	return chain.Units(c.ApproveAmount, c.TokenDecimals)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		ChainID:         56,
		NetworkName:     "BNB Smart Chain",
		RPCURL:          "https://bsc-dataseed.binance.org",
		ExplorerURL:     "https://bscscan.com",
		CurrencyName:    "BNB",
		CurrencySymbol:  "BNB",
		AppName:         "refcli",
		RegistrationFee: 10,
		ApproveAmount:   100_000,
		TokenDecimals:   18,
		TokenSymbol:     "USDT",
		TokenPriceID:    "tether",
		PriceCurrency:   "usd",
		configDir:       dir,
	}
}

// envOverrides maps REFCLI_* variables onto string fields.
func (c *Config) applyEnv() {
	set := func(env string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	set("REFCLI_CONTRACT_ADDRESS", &c.ContractAddress)
	set("REFCLI_TOKEN_ADDRESS", &c.TokenAddress)
	set("REFCLI_RPC_URL", &c.RPCURL)
	set("REFCLI_EXPLORER_URL", &c.ExplorerURL)
	set("REFCLI_NETWORK_NAME", &c.NetworkName)
	set("REFCLI_TOKEN_SYMBOL", &c.TokenSymbol)
	set("REFCLI_TOKEN_PRICE_ID", &c.TokenPriceID)
	set("REFCLI_USER_AGENT", &c.UserAgent)

	if v := os.Getenv("REFCLI_CHAIN_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.ChainID = id
		}
	}
	if v := os.Getenv("REFCLI_TOKEN_DECIMALS"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			c.TokenDecimals = d
		}
	}
}
