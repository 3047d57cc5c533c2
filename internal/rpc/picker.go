// Package rpc probes JSON-RPC endpoints and picks the best one to use for
// a session. The configured primary is preferred; backups only take over
// when the primary is down or stale.
package rpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/refmatrix/refcli/internal/chain"
)

// staleBlockThreshold is how many blocks behind the best endpoint a node
// may lag before it is considered unhealthy.
const staleBlockThreshold = 10

const probeTimeout = 5 * time.Second

// Endpoint is the probe result for one RPC URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool
}

// HealthCheck pings a single endpoint. A node is healthy when it responds
// within the probe timeout and, if bestBlock is non-zero, its head is
// within staleBlockThreshold of it.
func HealthCheck(ctx context.Context, url string, bestBlock uint64) Endpoint {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	latency, block, err := chain.NewClient(url).Ping(probeCtx)
	ep := Endpoint{
		URL:         url,
		Latency:     latency,
		BlockNumber: block,
		Healthy:     err == nil,
	}
	if err == nil && bestBlock > 0 && bestBlock > block && bestBlock-block > staleBlockThreshold {
		ep.Healthy = false
	}
	return ep
}

// Probe health-checks all urls in parallel, preserving input order.
func Probe(ctx context.Context, urls []string) []Endpoint {
	endpoints := make([]Endpoint, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			endpoints[i] = HealthCheck(ctx, url, 0)
		}(i, url)
	}
	wg.Wait()

	// Second pass: mark nodes lagging the best head as unhealthy.
	var best uint64
	for _, ep := range endpoints {
		if ep.Healthy && ep.BlockNumber > best {
			best = ep.BlockNumber
		}
	}
	for i := range endpoints {
		ep := &endpoints[i]
		if ep.Healthy && best > ep.BlockNumber && best-ep.BlockNumber > staleBlockThreshold {
			ep.Healthy = false
		}
	}
	return endpoints
}

// Pick probes primary plus backups and returns the URL to use: the primary
// when it is healthy, otherwise the lowest-latency healthy backup. With
// nothing healthy the primary comes back with an error so the caller can
// still report against it.
func Pick(ctx context.Context, primary string, backups []string) (string, error) {
	if len(backups) == 0 {
		return primary, nil
	}

	endpoints := Probe(ctx, append([]string{primary}, backups...))
	if endpoints[0].Healthy {
		return primary, nil
	}

	var pick *Endpoint
	for i := range endpoints[1:] {
		ep := &endpoints[i+1]
		if !ep.Healthy {
			continue
		}
		if pick == nil || ep.Latency < pick.Latency {
			pick = ep
		}
	}
	if pick == nil {
		return primary, fmt.Errorf("no healthy RPC endpoint among %d candidates", len(endpoints))
	}
	return pick.URL, nil
}
