// Copyright (c) 2021 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package simnet simulates the network layer below the scheduler: an
// in-memory set of blocks served with configurable latency and faults.
package simnet

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/uber-go/tally"

	"github.com/segfetch/segfetch/src/splitfetch/key"
	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/x/rand"
)

var transientCodes = []request.FailureCode{
	request.DataNotFound,
	request.RouteNotFound,
	request.RejectedOverload,
	request.TransferFailed,
	request.Timeout,
}

type networkMetrics struct {
	requests tally.Counter
	served   tally.Counter
	failures map[request.FailureCode]tally.Counter
}

func newNetworkMetrics(scope tally.Scope) networkMetrics {
	failures := make(map[request.FailureCode]tally.Counter)
	codes := append([]request.FailureCode{request.DecodeFailed}, transientCodes...)
	for _, code := range codes {
		failures[code] = scope.Tagged(map[string]string{"code": code.String()}).Counter("failures")
	}
	return networkMetrics{
		requests: scope.Counter("requests"),
		served:   scope.Counter("served"),
		failures: failures,
	}
}

// Network is a simulated network. Blocks inserted into it are served unless
// they are missing, undecodable or a transient failure is drawn.
type Network struct {
	sync.RWMutex

	blocks      map[key.Key][]byte
	missing     map[key.Key]struct{}
	undecodable map[key.Key]struct{}
	garbled     map[key.Key]struct{}
	requests    map[key.Key]int

	failureRate float64
	missingRate float64
	latency     time.Duration
	rng         rand.Source
	metrics     networkMetrics
}

// New creates an empty simulated network.
func New(opts Options) (*Network, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Network{
		blocks:      make(map[key.Key][]byte),
		missing:     make(map[key.Key]struct{}),
		undecodable: make(map[key.Key]struct{}),
		garbled:     make(map[key.Key]struct{}),
		requests:    make(map[key.Key]int),
		failureRate: opts.FailureRate(),
		missingRate: opts.MissingRate(),
		latency:     opts.Latency(),
		rng:         opts.RandSource(),
		metrics:     newNetworkMetrics(opts.InstrumentOptions().MetricsScope().SubScope("simnet")),
	}, nil
}

// Insert adds a block and returns its key. With a missing rate set, the
// block is lost with that probability, decided by its key.
func (n *Network) Insert(data []byte) key.Key {
	k := key.FromContent(data)
	n.Lock()
	n.blocks[k] = append([]byte(nil), data...)
	if lost(k, n.missingRate) {
		n.missing[k] = struct{}{}
	}
	n.Unlock()
	return k
}

// InsertAll adds blocks and returns their keys.
func (n *Network) InsertAll(blocks [][]byte) []key.Key {
	keys := make([]key.Key, 0, len(blocks))
	for _, b := range blocks {
		keys = append(keys, n.Insert(b))
	}
	return keys
}

// lost returns whether a key falls in the missing fraction of the key space.
func lost(k key.Key, rate float64) bool {
	if rate <= 0 {
		return false
	}
	return float64(xxhash.Sum64(k.Bytes())) < rate*math.MaxUint64
}

// MarkMissing makes a block unavailable.
func (n *Network) MarkMissing(k key.Key) {
	n.Lock()
	n.missing[k] = struct{}{}
	n.Unlock()
}

// MarkUndecodable makes requests for a block fail fatally.
func (n *Network) MarkUndecodable(k key.Key) {
	n.Lock()
	n.undecodable[k] = struct{}{}
	n.Unlock()
}

// MarkGarbled makes requests for a block return data that does not match
// its key.
func (n *Network) MarkGarbled(k key.Key) {
	n.Lock()
	n.garbled[k] = struct{}{}
	n.Unlock()
}

// Requests returns how often a block was requested.
func (n *Network) Requests(k key.Key) int {
	n.RLock()
	c := n.requests[k]
	n.RUnlock()
	return c
}

// Fetch serves a request for a block.
func (n *Network) Fetch(ctx context.Context, k key.Key) ([]byte, error) {
	n.metrics.requests.Inc(1)
	n.Lock()
	n.requests[k]++
	n.Unlock()

	if n.latency > 0 {
		timer := time.NewTimer(n.latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	n.RLock()
	data, ok := n.blocks[k]
	_, missing := n.missing[k]
	_, undecodable := n.undecodable[k]
	_, garbled := n.garbled[k]
	n.RUnlock()

	switch {
	case undecodable:
		return nil, n.fail(request.DecodeFailed)
	case !ok || missing:
		return nil, n.fail(request.DataNotFound)
	}
	if n.failureRate > 0 && n.rng.Float64() < n.failureRate {
		return nil, n.fail(transientCodes[n.rng.Intn(len(transientCodes))])
	}

	n.metrics.served.Inc(1)
	out := append([]byte(nil), data...)
	if garbled && len(out) > 0 {
		out[0] ^= 0xff
	}
	return out, nil
}

func (n *Network) fail(code request.FailureCode) error {
	n.metrics.failures[code].Inc(1)
	return request.NewFailure(code, nil)
}
