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

package object

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"

	"github.com/segfetch/segfetch/src/splitfetch/blockset"
	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/splitfetch/scheduler"
	"github.com/segfetch/segfetch/src/splitfetch/simnet"
	"github.com/segfetch/segfetch/src/x/instrument"
	"github.com/segfetch/segfetch/src/x/rand"
)

const (
	testBlockSize   = 64
	testSegmentSize = 16
)

type testNetwork struct {
	network   *simnet.Network
	scheduler *scheduler.Scheduler
	scope     tally.TestScope
	manifest  Manifest
	blocks    [][]byte
}

func testObject(t *testing.T, checkBlocks int) (Manifest, [][]byte) {
	content := make([]byte, 4096)
	for i := range content {
		content[i] = byte(i*31 + i/7)
	}
	manifest, blocks, err := SplitContent(content, testBlockSize, testSegmentSize, checkBlocks)
	require.NoError(t, err)
	return manifest, blocks
}

func newTestNetwork(
	t *testing.T,
	checkBlocks int,
	netOpts simnet.Options,
	datastore request.BlockSet,
) *testNetwork {
	scope := tally.NewTestScope("", nil)
	iOpts := instrument.NewTestOptions(scope)

	network, err := simnet.New(netOpts.
		SetRandSource(rand.NewSource(42)).
		SetInstrumentOptions(iOpts))
	require.NoError(t, err)

	manifest, blocks := testObject(t, checkBlocks)
	network.InsertAll(blocks)

	sched, err := scheduler.NewScheduler(network, scheduler.NewOptions().
		SetInstrumentOptions(iOpts).
		SetPollInterval(5*time.Millisecond).
		SetFetchTimeout(time.Second).
		SetDatastore(datastore))
	require.NoError(t, err)
	require.NoError(t, sched.Open())

	return &testNetwork{
		network:   network,
		scheduler: sched,
		scope:     scope,
		manifest:  manifest,
		blocks:    blocks,
	}
}

func (n *testNetwork) run(t *testing.T, opts Options) *Fetch {
	f, err := NewFetch(n.manifest, n.scheduler, opts.
		SetInstrumentOptions(instrument.NewTestOptions(n.scope)))
	require.NoError(t, err)
	require.NoError(t, f.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	select {
	case <-f.Done():
	case <-ctx.Done():
		require.FailNow(t, "fetch did not finish", "progress: %+v", f.Progress())
	}
	return f
}

func TestFetchOverLossyNetwork(t *testing.T) {
	defer leaktest.CheckTimeout(t, 5*time.Second)()

	n := newTestNetwork(t, 4, simnet.NewOptions().SetFailureRate(0.3), nil)
	defer func() { require.NoError(t, n.scheduler.Close()) }()

	sink := NewMemorySink()
	f := n.run(t, testOptions(n.scope).SetMaxRetries(20).SetBlockSink(sink))
	require.Equal(t, Succeeded, f.State())
	require.NoError(t, f.Err())

	progress := f.Progress()
	require.Equal(t, progress.Required, progress.Fetched)
	require.True(t, progress.GoingToNetwork)
	require.True(t, sink.Len() >= progress.Required)

	counters := n.scope.Snapshot().Counters()
	require.True(t, counters["simnet.requests+"].Value() > int64(progress.Required))
	require.Equal(t, int64(1), counters["fetch.succeeded+"].Value())
}

func TestFetchFailsOnUndecodableBlock(t *testing.T) {
	defer leaktest.CheckTimeout(t, 5*time.Second)()

	n := newTestNetwork(t, 0, simnet.NewOptions(), nil)
	defer func() { require.NoError(t, n.scheduler.Close()) }()

	// Without check blocks every block is needed.
	n.network.MarkUndecodable(n.manifest.Segments[1].Keys[3])

	f := n.run(t, testOptions(n.scope))
	require.Equal(t, Failed, f.State())
	outcome := request.Classify(f.Err())
	require.True(t, outcome.IsFatal())
	require.Equal(t, request.DecodeFailed, outcome.Code)
}

func TestFetchExhaustsRetriesOnMissingBlock(t *testing.T) {
	defer leaktest.CheckTimeout(t, 5*time.Second)()

	n := newTestNetwork(t, 0, simnet.NewOptions(), nil)
	defer func() { require.NoError(t, n.scheduler.Close()) }()

	missing := n.manifest.Segments[2].Keys[0]
	n.network.MarkMissing(missing)

	f := n.run(t, testOptions(n.scope).SetMaxRetries(3))
	require.Equal(t, Failed, f.State())
	require.Equal(t, ErrRetriesExhausted, f.Err())
	require.Equal(t, 3, n.network.Requests(missing))
	require.Equal(t, 1, f.Progress().Excluded)
}

func TestFetchWithFewRetries(t *testing.T) {
	for _, maxRetries := range []int{0, 1} {
		maxRetries := maxRetries
		t.Run(fmt.Sprintf("max retries %d", maxRetries), func(t *testing.T) {
			t.Run("healthy network", func(t *testing.T) {
				defer leaktest.CheckTimeout(t, 5*time.Second)()

				n := newTestNetwork(t, 2, simnet.NewOptions(), nil)
				defer func() { require.NoError(t, n.scheduler.Close()) }()

				f := n.run(t, testOptions(n.scope).SetMaxRetries(maxRetries))
				require.Equal(t, Succeeded, f.State())
				require.NoError(t, f.Err())
				require.Equal(t, 0, f.Progress().Excluded)
				for _, seg := range n.manifest.Segments {
					for _, k := range seg.Keys {
						require.True(t, n.network.Requests(k) <= 1)
					}
				}
			})

			t.Run("missing block", func(t *testing.T) {
				defer leaktest.CheckTimeout(t, 5*time.Second)()

				n := newTestNetwork(t, 0, simnet.NewOptions(), nil)
				defer func() { require.NoError(t, n.scheduler.Close()) }()

				missing := n.manifest.Segments[1].Keys[3]
				n.network.MarkMissing(missing)

				f := n.run(t, testOptions(n.scope).SetMaxRetries(maxRetries))
				require.Equal(t, Failed, f.State())
				require.Equal(t, ErrRetriesExhausted, f.Err())
				require.Equal(t, 1, n.network.Requests(missing))
				require.Equal(t, 1, f.Progress().Excluded)
			})
		})
	}
}

func TestFetchTakesLocalBlocksFirst(t *testing.T) {
	defer leaktest.CheckTimeout(t, 5*time.Second)()

	datastore, err := blockset.New(blockset.NewOptions())
	require.NoError(t, err)
	manifest, blocks := testObject(t, 2)
	numLocal := len(manifest.Segments[0].Keys)
	for _, b := range blocks[:numLocal] {
		datastore.Add(b)
	}

	n := newTestNetwork(t, 2, simnet.NewOptions(), datastore)
	defer func() { require.NoError(t, n.scheduler.Close()) }()

	f := n.run(t, testOptions(n.scope))
	require.Equal(t, Succeeded, f.State())
	for _, k := range manifest.Segments[0].Keys {
		require.Equal(t, 0, n.network.Requests(k))
	}
}

func TestLocalOnlyFetchDoesNotGoToNetwork(t *testing.T) {
	defer leaktest.CheckTimeout(t, 5*time.Second)()

	n := newTestNetwork(t, 2, simnet.NewOptions(), nil)
	defer func() { require.NoError(t, n.scheduler.Close()) }()

	f := n.run(t, testOptions(n.scope).SetLocalRequestOnly(true))
	require.Equal(t, Failed, f.State())
	require.Equal(t, ErrNotFoundLocally, f.Err())
	require.False(t, f.Progress().GoingToNetwork)
	for _, seg := range n.manifest.Segments {
		for _, k := range seg.Keys {
			require.Equal(t, 0, n.network.Requests(k))
		}
	}
}
