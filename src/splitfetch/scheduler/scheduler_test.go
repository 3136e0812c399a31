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

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/golang/mock/gomock"
	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"

	"github.com/segfetch/segfetch/src/splitfetch/blockset"
	"github.com/segfetch/segfetch/src/splitfetch/key"
	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/splitfetch/segment"
	xerrors "github.com/segfetch/segfetch/src/x/errors"
	"github.com/segfetch/segfetch/src/x/instrument"
	xsync "github.com/segfetch/segfetch/src/x/sync"
)

const testWait = 5 * time.Second

func newTestOptions(scope tally.Scope, maxInFlight int) Options {
	pool := xsync.NewWorkerPool(maxInFlight)
	pool.Init()
	return NewOptions().
		SetInstrumentOptions(instrument.NewTestOptions(scope)).
		SetWorkerPool(pool).
		SetMaxInFlight(maxInFlight).
		SetPollInterval(10 * time.Millisecond).
		SetFetchTimeout(time.Second)
}

func newTestScheduler(t *testing.T, transport Transport, opts Options) *Scheduler {
	s, err := NewScheduler(transport, opts)
	require.NoError(t, err)
	return s
}

func waitSuccesses(t *testing.T, src *fakeSource, n int) []int {
	var blocks []int
	for i := 0; i < n; i++ {
		select {
		case b := <-src.successes:
			blocks = append(blocks, b)
		case <-time.After(testWait):
			require.FailNow(t, "timed out waiting for block", "got %v", blocks)
		}
	}
	return blocks
}

func TestNewSchedulerInvalid(t *testing.T) {
	_, err := NewScheduler(nil, NewOptions())
	require.True(t, xerrors.IsInvalidParams(err))

	scope := tally.NewTestScope("", nil)
	_, err = NewScheduler(newFakeTransport(), newTestOptions(scope, 2).SetMaxInFlight(3))
	require.Equal(t, errInvalidMaxInFlight, err)

	_, err = NewScheduler(newFakeTransport(), newTestOptions(scope, 2).SetPollInterval(0))
	require.Equal(t, errInvalidPollInterval, err)
}

func TestOpenClose(t *testing.T) {
	defer leaktest.Check(t)()

	s := newTestScheduler(t, newFakeTransport(), newTestOptions(tally.NoopScope, 1))
	require.Equal(t, errSchedulerNotOpen, s.Close())
	require.NoError(t, s.Open())
	require.Equal(t, errSchedulerAlreadyOpen, s.Open())
	require.NoError(t, s.Close())
	require.Equal(t, errSchedulerNotOpen, s.Close())

	src := newFakeSource("obj", request.BulkSplitfilePriority, 1)
	require.Equal(t, errSchedulerClosed, s.Register(src, nil, false, true))
}

func TestRegisterChecksLocalStores(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scope := tally.NewTestScope("", nil)
	datastore, err := blockset.New(blockset.NewOptions().SetExpectedBlocks(16))
	require.NoError(t, err)

	src := newFakeSource("obj", request.BulkSplitfilePriority, 3)
	datastore.Add(src.data[0])

	blockSet := request.NewMockBlockSet(ctrl)
	blockSet.EXPECT().Get(src.keys[1]).Return(src.data[1], true)
	blockSet.EXPECT().Get(src.keys[2]).Return(nil, false)

	s := newTestScheduler(t, newFakeTransport(), newTestOptions(scope, 1).SetDatastore(datastore))
	require.NoError(t, s.Register(src, blockSet, true, false))

	require.Equal(t, []key.Key{src.keys[0], src.keys[1]}, src.foundLocally)
	require.Equal(t, []bool{true}, src.preRegisterCalls())
	require.True(t, s.IsRegistered(src))
	require.Equal(t, 1, s.NumRegistered())

	counters := scope.Snapshot().Counters()
	require.Equal(t, int64(2), counters["scheduler.found-locally+"].Value())
	require.Equal(t, int64(1), counters["scheduler.registered+"].Value())
	require.Equal(t, int64(1), counters["scheduler.registered-persistent+"].Value())
}

func TestRegisterRejectsCorruptLocalBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := newFakeSource("obj", request.BulkSplitfilePriority, 1)
	blockSet := request.NewMockBlockSet(ctrl)
	blockSet.EXPECT().Get(src.keys[0]).Return([]byte("corrupt"), true)

	s := newTestScheduler(t, newFakeTransport(), newTestOptions(tally.NoopScope, 1))
	require.NoError(t, s.Register(src, blockSet, false, false))
	require.Empty(t, src.foundLocally)
	require.Equal(t, []bool{true}, src.preRegisterCalls())
	require.True(t, s.IsRegistered(src))
}

func TestRegisterAllFoundLocally(t *testing.T) {
	datastore, err := blockset.New(blockset.NewOptions().SetExpectedBlocks(16))
	require.NoError(t, err)

	src := newFakeSource("obj", request.BulkSplitfilePriority, 2)
	datastore.Add(src.data[0])
	datastore.Add(src.data[1])

	s := newTestScheduler(t, newFakeTransport(), newTestOptions(tally.NoopScope, 1).SetDatastore(datastore))
	require.NoError(t, s.Register(src, nil, false, false))
	require.Equal(t, []bool{false}, src.preRegisterCalls())
	require.False(t, s.IsRegistered(src))
}

func TestRegisterLocalOnlySatisfied(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	src := newFakeSource("obj", request.BulkSplitfilePriority, 2)
	src.registerResult = request.LocalOnlySatisfied

	s := newTestScheduler(t, newFakeTransport(), newTestOptions(scope, 1))
	require.NoError(t, s.Register(src, nil, false, false))
	require.Equal(t, []bool{true}, src.preRegisterCalls())
	require.False(t, s.IsRegistered(src))

	counters := scope.Snapshot().Counters()
	require.Equal(t, int64(1), counters["scheduler.local-only+"].Value())
}

func TestRegisterSkipDatastoreCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := newFakeSource("obj", request.BulkSplitfilePriority, 2)
	s := newTestScheduler(t, newFakeTransport(), newTestOptions(tally.NoopScope, 1))

	// The block set is never consulted.
	require.NoError(t, s.Register(src, request.NewMockBlockSet(ctrl), false, true))
	require.Empty(t, src.preRegisterCalls())
	require.True(t, s.IsRegistered(src))

	// Registering again keeps a single registration.
	require.NoError(t, s.Register(src, nil, false, true))
	require.Equal(t, 1, s.NumRegistered())
}

func TestRegisterInvalidPriority(t *testing.T) {
	src := newFakeSource("obj", request.Priority(42), 1)
	s := newTestScheduler(t, newFakeTransport(), newTestOptions(tally.NoopScope, 1))
	err := s.Register(src, nil, false, true)
	require.True(t, xerrors.IsInvalidParams(err))
	require.False(t, s.IsRegistered(src))
}

func TestRegisterMovesPriority(t *testing.T) {
	src := newFakeSource("obj", request.BulkSplitfilePriority, 1)
	s := newTestScheduler(t, newFakeTransport(), newTestOptions(tally.NoopScope, 1))
	require.NoError(t, s.Register(src, nil, false, true))
	require.Len(t, s.queues[request.BulkSplitfilePriority], 1)

	src.priority = request.InteractivePriority
	require.NoError(t, s.Register(src, nil, false, true))
	require.Len(t, s.queues[request.BulkSplitfilePriority], 0)
	require.Len(t, s.queues[request.InteractivePriority], 1)
}

func TestUnregister(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	a := newFakeSource("a", request.BulkSplitfilePriority, 1)
	b := newFakeSource("b", request.BulkSplitfilePriority, 1)
	s := newTestScheduler(t, newFakeTransport(), newTestOptions(scope, 1))
	require.NoError(t, s.Register(a, nil, false, true))
	require.NoError(t, s.Register(b, nil, false, true))

	s.Unregister(a, request.BulkSplitfilePriority)
	require.False(t, s.IsRegistered(a))
	require.True(t, s.IsRegistered(b))
	require.Equal(t, []*registration{s.sources[b]}, s.queues[request.BulkSplitfilePriority])

	// Unknown sources are ignored.
	s.Unregister(a, request.BulkSplitfilePriority)

	counters := scope.Snapshot().Counters()
	require.Equal(t, int64(1), counters["scheduler.unregistered+"].Value())
}

func TestReduceWakeup(t *testing.T) {
	src := newFakeSource("obj", request.BulkSplitfilePriority, 1)
	s := newTestScheduler(t, newFakeTransport(), newTestOptions(tally.NoopScope, 1))
	require.NoError(t, s.Register(src, nil, false, true))

	now := time.Now()
	reg := s.sources[src]
	reg.wakeup = segment.Never

	s.ReduceWakeup(src, now.Add(time.Minute))
	require.Equal(t, now.Add(time.Minute), reg.wakeup)

	// Later wakeups never push it back.
	s.ReduceWakeup(src, now.Add(time.Hour))
	require.Equal(t, now.Add(time.Minute), reg.wakeup)

	s.ReduceWakeup(src, now.Add(time.Second))
	require.Equal(t, now.Add(time.Second), reg.wakeup)

	// Unregistered sources are ignored.
	s.ReduceWakeup(newFakeSource("other", request.BulkSplitfilePriority, 1), now)
}

func TestDispatchAllBlocks(t *testing.T) {
	defer leaktest.Check(t)()

	scope := tally.NewTestScope("", nil)
	src := newFakeSource("obj", request.BulkSplitfilePriority, 5)
	s := newTestScheduler(t, newFakeTransport(src), newTestOptions(scope, 2))
	require.NoError(t, s.Open())
	require.NoError(t, s.Register(src, nil, false, true))

	blocks := waitSuccesses(t, src, 5)
	require.ElementsMatch(t, []int{0, 1, 2, 3, 4}, blocks)
	require.NoError(t, s.Close())
	require.Equal(t, 0, s.NumInFlight())

	counters := scope.Snapshot().Counters()
	require.Equal(t, int64(5), counters["scheduler.dispatched+"].Value())
	require.Equal(t, int64(5), counters["scheduler.succeeded+"].Value())
}

func TestDispatchPriorityOrder(t *testing.T) {
	defer leaktest.Check(t)()

	bulk := newFakeSource("bulk", request.BulkSplitfilePriority, 1)
	interactive := newFakeSource("interactive", request.InteractivePriority, 2)
	transport := newFakeTransport(bulk, interactive)
	s := newTestScheduler(t, transport, newTestOptions(tally.NoopScope, 1))
	require.NoError(t, s.Register(bulk, nil, false, true))
	require.NoError(t, s.Register(interactive, nil, false, true))
	require.NoError(t, s.Open())

	waitSuccesses(t, interactive, 2)
	waitSuccesses(t, bulk, 1)
	require.NoError(t, s.Close())

	require.Equal(t, []key.Key{interactive.keys[0], interactive.keys[1], bulk.keys[0]},
		transport.requested())
}

func TestDispatchRoundRobin(t *testing.T) {
	defer leaktest.Check(t)()

	a := newFakeSource("a", request.BulkSplitfilePriority, 2)
	b := newFakeSource("b", request.BulkSplitfilePriority, 2)
	transport := newFakeTransport(a, b)
	s := newTestScheduler(t, transport, newTestOptions(tally.NoopScope, 1))
	require.NoError(t, s.Register(a, nil, false, true))
	require.NoError(t, s.Register(b, nil, false, true))
	require.NoError(t, s.Open())

	waitSuccesses(t, a, 2)
	waitSuccesses(t, b, 2)
	require.NoError(t, s.Close())

	require.Equal(t, []key.Key{a.keys[0], b.keys[0], a.keys[1], b.keys[1]},
		transport.requested())
}

func TestPausedNeverDispatched(t *testing.T) {
	defer leaktest.Check(t)()

	paused := newFakeSource("paused", request.PausedPriority, 1)
	bulk := newFakeSource("bulk", request.BulkSplitfilePriority, 1)
	transport := newFakeTransport(paused, bulk)
	s := newTestScheduler(t, transport, newTestOptions(tally.NoopScope, 1))
	require.NoError(t, s.Register(paused, nil, false, true))
	require.NoError(t, s.Register(bulk, nil, false, true))
	require.NoError(t, s.Open())

	waitSuccesses(t, bulk, 1)
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Close())
	require.Equal(t, []key.Key{bulk.keys[0]}, transport.requested())
}

func TestDispatchFailureDelivered(t *testing.T) {
	defer leaktest.Check(t)()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scope := tally.NewTestScope("", nil)
	src := newFakeSource("obj", request.BulkSplitfilePriority, 1)
	transport := NewMockTransport(ctrl)
	failure := request.NewFailure(request.RouteNotFound, nil)
	transport.EXPECT().Fetch(gomock.Any(), src.keys[0]).Return(nil, failure)

	s := newTestScheduler(t, transport, newTestOptions(scope, 1))
	require.NoError(t, s.Open())
	require.NoError(t, s.Register(src, nil, false, true))

	select {
	case err := <-src.failures:
		require.Equal(t, failure, err)
	case <-time.After(testWait):
		require.FailNow(t, "timed out waiting for failure")
	}
	require.NoError(t, s.Close())

	counters := scope.Snapshot().Counters()
	require.Equal(t, int64(1), counters["scheduler.failed+"].Value())
}

func TestDispatchTimeout(t *testing.T) {
	defer leaktest.Check(t)()

	src := newFakeSource("obj", request.BulkSplitfilePriority, 1)
	transport := newFakeTransport(src)
	transport.hold = make(chan struct{})
	s := newTestScheduler(t, transport,
		newTestOptions(tally.NoopScope, 1).SetFetchTimeout(20*time.Millisecond))
	require.NoError(t, s.Open())
	require.NoError(t, s.Register(src, nil, false, true))

	select {
	case err := <-src.failures:
		outcome := request.Classify(err)
		require.False(t, outcome.IsFatal())
		require.Equal(t, request.Timeout, outcome.Code)
	case <-time.After(testWait):
		require.FailNow(t, "timed out waiting for failure")
	}
	require.NoError(t, s.Close())
}

func TestCloseDropsOutstandingOutcomes(t *testing.T) {
	defer leaktest.Check(t)()

	src := newFakeSource("obj", request.BulkSplitfilePriority, 1)
	transport := newFakeTransport(src)
	transport.hold = make(chan struct{})
	s := newTestScheduler(t, transport, newTestOptions(tally.NoopScope, 1))
	require.NoError(t, s.Open())
	require.NoError(t, s.Register(src, nil, false, true))

	require.Eventually(t, func() bool {
		return s.NumInFlight() == 1
	}, testWait, time.Millisecond)
	require.NoError(t, s.Close())

	require.Equal(t, 0, s.NumInFlight())
	require.Len(t, src.failures, 0)
	require.Len(t, src.successes, 0)
}

func TestPrunesCancelledSources(t *testing.T) {
	defer leaktest.Check(t)()

	scope := tally.NewTestScope("", nil)
	src := newFakeSource("obj", request.BulkSplitfilePriority, 1)
	src.cancelled.Store(true)
	transport := newFakeTransport(src)
	s := newTestScheduler(t, transport, newTestOptions(scope, 1))
	require.NoError(t, s.Register(src, nil, false, true))
	require.NoError(t, s.Open())

	require.Eventually(t, func() bool {
		return s.NumRegistered() == 0
	}, testWait, time.Millisecond)
	require.NoError(t, s.Close())
	require.Empty(t, transport.requested())

	counters := scope.Snapshot().Counters()
	require.Equal(t, int64(1), counters["scheduler.pruned+"].Value())
}

func TestTransportSeesSpanContext(t *testing.T) {
	defer leaktest.Check(t)()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := newFakeSource("obj", request.BulkSplitfilePriority, 1)
	transport := NewMockTransport(ctrl)
	transport.EXPECT().Fetch(gomock.Any(), src.keys[0]).DoAndReturn(
		func(ctx context.Context, _ key.Key) ([]byte, error) {
			_, hasDeadline := ctx.Deadline()
			require.True(t, hasDeadline)
			require.NotNil(t, opentracing.SpanFromContext(ctx))
			return src.data[0], nil
		})

	s := newTestScheduler(t, transport, newTestOptions(tally.NoopScope, 1))
	require.NoError(t, s.Open())
	require.NoError(t, s.Register(src, nil, false, true))
	waitSuccesses(t, src, 1)
	require.NoError(t, s.Close())
}
