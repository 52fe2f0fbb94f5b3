package rpc

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"
)

const (
	// probeTimeout bounds a single endpoint probe.
	probeTimeout = 5 * time.Second
	// maxParallelProbes caps concurrent dials.
	maxParallelProbes = 8
)

// Prober measures one endpoint: round-trip latency and its head block.
type Prober func(ctx context.Context, url string) (time.Duration, uint64, error)

// ProbeEVM dials url and asks for the latest block number.
func ProbeEVM(ctx context.Context, url string) (time.Duration, uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return 0, 0, err
	}
	defer client.Close()

	block, err := client.BlockNumber(ctx)
	if err != nil {
		return 0, 0, err
	}
	return time.Since(start), block, nil
}

// Benchmark probes all urls in parallel. The result keeps the input order so
// failover still sees the configured priority.
func Benchmark(ctx context.Context, urls []string, probe Prober) []Endpoint {
	endpoints := make([]Endpoint, len(urls))
	var g errgroup.Group
	g.SetLimit(maxParallelProbes)

	for i, url := range urls {
		g.Go(func() error {
			latency, block, err := probe(ctx, url)
			endpoints[i] = Endpoint{
				URL:         url,
				Latency:     latency,
				BlockNumber: block,
				Err:         err,
				Checked:     true,
			}
			// A failed probe marks the endpoint, it does not abort the others.
			return nil
		})
	}

	_ = g.Wait()
	return endpoints
}

// Selector picks one URL out of a network's RPC list. It remembers the
// fastest winner across calls so repeated selections skip the probe.
type Selector struct {
	picker *Picker
	probe  Prober
}

// NewSelector builds a Selector. A nil probe means ProbeEVM.
func NewSelector(algo Algorithm, probe Prober) *Selector {
	if probe == nil {
		probe = ProbeEVM
	}
	return &Selector{picker: NewPicker(algo), probe: probe}
}

// Select returns the best URL. A single candidate is returned without
// probing.
func (s *Selector) Select(ctx context.Context, urls []string) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}

	if url, ok := s.picker.Cached(); ok {
		for _, u := range urls {
			if u == url {
				return url, nil
			}
		}
	}

	winner, err := s.picker.Pick(Benchmark(ctx, urls, s.probe))
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
