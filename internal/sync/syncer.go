// Package sync pulls a published deployment manifest and applies it to the
// local configuration, so operators can repoint every client after a
// contract redeploy without hand-editing addresses.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/refmatrix/refcli/internal/config"
)

// Manifest is the structure of a published deployments.json.
type Manifest struct {
	ContractAddress string `json:"contract_address"`
	TokenAddress    string `json:"token_address"`
	TokenSymbol     string `json:"token_symbol,omitempty"`
	TokenDecimals   int    `json:"token_decimals,omitempty"`
	ChainID         int64  `json:"chain_id,omitempty"`
	NetworkName     string `json:"network_name,omitempty"`
	RPCURL          string `json:"rpc_url,omitempty"`
	ExplorerURL     string `json:"explorer_url,omitempty"`
}

// Syncer fetches manifests and applies them to the config.
type Syncer struct {
	cfg    *config.Config
	client *http.Client
}

// New creates a Syncer.
func New(cfg *config.Config) *Syncer {
	return &Syncer{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Run fetches the manifest from source, applies it, and persists the
// updated config. Optional manifest fields leave the current values alone.
func (s *Syncer) Run(ctx context.Context, source string) (*Manifest, error) {
	m, err := s.fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}
	if err := validate(m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	s.apply(m)
	if err := s.cfg.Save(); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}
	return m, nil
}

func (s *Syncer) fetch(ctx context.Context, source string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest source returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

func validate(m *Manifest) error {
	if !common.IsHexAddress(m.ContractAddress) {
		return fmt.Errorf("bad contract address %q", m.ContractAddress)
	}
	if !common.IsHexAddress(m.TokenAddress) {
		return fmt.Errorf("bad token address %q", m.TokenAddress)
	}
	return nil
}

func (s *Syncer) apply(m *Manifest) {
	s.cfg.ContractAddress = m.ContractAddress
	s.cfg.TokenAddress = m.TokenAddress
	if m.TokenSymbol != "" {
		s.cfg.TokenSymbol = m.TokenSymbol
	}
	if m.TokenDecimals > 0 {
		s.cfg.TokenDecimals = m.TokenDecimals
	}
	if m.ChainID > 0 {
		s.cfg.ChainID = m.ChainID
	}
	if m.NetworkName != "" {
		s.cfg.NetworkName = m.NetworkName
	}
	if m.RPCURL != "" {
		s.cfg.RPCURL = m.RPCURL
	}
	if m.ExplorerURL != "" {
		s.cfg.ExplorerURL = m.ExplorerURL
	}
}
