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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"github.com/willf/bitset"

	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/splitfetch/segment"
	xerrors "github.com/segfetch/segfetch/src/x/errors"
	"github.com/segfetch/segfetch/src/x/instrument"
	"github.com/segfetch/segfetch/src/x/rand"
	"github.com/segfetch/segfetch/src/x/retry"
)

var testContent = []byte("the quick brown fox jumps over the dog")

func testSegmentOptions() segment.Options {
	return segment.NewOptions().
		SetRandSource(rand.NewSource(1)).
		SetRetryOptions(retry.NewOptions().
			SetInitialBackoff(time.Millisecond).
			SetBackoffFactor(2).
			SetMaxBackoff(10 * time.Millisecond))
}

func testOptions(scope tally.Scope) Options {
	return NewOptions().
		SetInstrumentOptions(instrument.NewTestOptions(scope)).
		SetSegmentOptions(testSegmentOptions())
}

type testFetch struct {
	*Fetch

	scheduler *request.MockScheduler
	scope     tally.TestScope
	sink      *MemorySink
	blocks    [][][]byte
}

// newTestFetch splits testContent into two segments of three data blocks
// and one check block, the second segment holding the last two data blocks.
func newTestFetch(t *testing.T, ctrl *gomock.Controller, opts Options) *testFetch {
	manifest, blocks, err := SplitContent(testContent, 8, 3, 1)
	require.NoError(t, err)
	require.Len(t, manifest.Segments, 2)

	var bySegment [][][]byte
	i := 0
	for _, seg := range manifest.Segments {
		bySegment = append(bySegment, blocks[i:i+len(seg.Keys)])
		i += len(seg.Keys)
	}

	scope := tally.NewTestScope("", nil)
	sink := NewMemorySink()
	if opts == nil {
		opts = testOptions(scope)
	} else {
		opts = opts.SetInstrumentOptions(instrument.NewTestOptions(scope))
	}
	scheduler := request.NewMockScheduler(ctrl)
	f, err := NewFetch(manifest, scheduler, opts.SetBlockSink(sink))
	require.NoError(t, err)

	return &testFetch{
		Fetch:     f,
		scheduler: scheduler,
		scope:     scope,
		sink:      sink,
		blocks:    bySegment,
	}
}

func (f *testFetch) token(seg, block int) request.Token {
	return request.NewToken(segment.SegmentID{Object: f.ID(), Number: seg}, block)
}

func (f *testFetch) deliver(t *testing.T, seg, block int) {
	src := f.segments[seg].source
	require.NoError(t, src.OnSuccess(f.token(seg, block), f.blocks[seg][block]))
}

func TestNewFetchInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := NewFetch(Manifest{}, request.NewMockScheduler(ctrl), NewOptions())
	require.True(t, xerrors.IsInvalidParams(err))

	manifest, _, err := SplitContent(testContent, 8, 3, 1)
	require.NoError(t, err)
	_, err = NewFetch(manifest, request.NewMockScheduler(ctrl),
		NewOptions().SetPriority(request.Priority(99)))
	require.Equal(t, errInvalidPriority, err)
}

func TestStartRegistersSegments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newTestFetch(t, ctrl, nil)
	f.scheduler.EXPECT().Register(f.segments[0].source, nil, false, false).Return(nil)
	f.scheduler.EXPECT().Register(f.segments[1].source, nil, false, false).Return(nil)

	require.Equal(t, Pending, f.State())
	require.NoError(t, f.Start())
	require.Equal(t, Running, f.State())
	require.Equal(t, errFetchAlreadyStarted, f.Start())
}

func TestStartRegisterFailureFailsFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newTestFetch(t, ctrl, nil)
	errClosed := errors.New("scheduler closed")
	f.scheduler.EXPECT().Register(gomock.Any(), nil, false, false).Return(errClosed).Times(2)
	f.scheduler.EXPECT().Unregister(gomock.Any(), request.BulkSplitfilePriority).Times(2)

	err := f.Start()
	require.Error(t, err)
	multiErr, ok := err.(xerrors.MultiError)
	require.True(t, ok)
	require.Equal(t, []error{errClosed, errClosed}, multiErr.Errors())
	require.Equal(t, Failed, f.State())
	require.Error(t, f.Err())
}

func TestFetchSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newTestFetch(t, ctrl, nil)
	f.scheduler.EXPECT().Register(gomock.Any(), nil, false, false).Return(nil).Times(2)
	f.scheduler.EXPECT().Unregister(gomock.Any(), request.BulkSplitfilePriority).AnyTimes()

	var (
		mu     sync.Mutex
		events []ProgressEvent
	)
	f.AddListener(func(ev ProgressEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	require.NoError(t, f.Start())

	// The check block stands in for a missing data block.
	f.deliver(t, 0, 0)
	f.deliver(t, 0, 3)
	require.Equal(t, Running, f.State())
	f.deliver(t, 0, 2)
	require.True(t, f.segments[0].complete)
	require.Equal(t, Running, f.State())

	f.deliver(t, 1, 1)
	f.deliver(t, 1, 0)
	require.NoError(t, f.Wait(context.Background()))
	require.Equal(t, Succeeded, f.State())
	require.NoError(t, f.Err())

	data, ok := f.sink.Get(segment.SegmentID{Object: f.ID(), Number: 0}, 3)
	require.True(t, ok)
	require.Equal(t, f.blocks[0][3], data)
	require.Equal(t, 5, f.sink.Len())

	progress := f.Progress()
	require.Equal(t, 7, progress.Total)
	require.Equal(t, 5, progress.Required)
	require.Equal(t, 5, progress.Fetched)

	mu.Lock()
	last := events[len(events)-1]
	mu.Unlock()
	require.Equal(t, Succeeded, last.State)

	counters := f.scope.Snapshot().Counters()
	require.Equal(t, int64(1), counters["fetch.succeeded+"].Value())
	require.Equal(t, int64(5), counters["fetch.blocks-fetched+"].Value())
}

func TestFatalFailureAbortsAllSegments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newTestFetch(t, ctrl, nil)
	f.scheduler.EXPECT().Register(gomock.Any(), nil, false, false).Return(nil).Times(2)
	f.scheduler.EXPECT().Unregister(f.segments[0].source, request.BulkSplitfilePriority)
	f.scheduler.EXPECT().Unregister(f.segments[1].source, request.BulkSplitfilePriority)
	require.NoError(t, f.Start())

	_, ok := f.segments[1].source.ChooseKey()
	require.True(t, ok)

	fatal := request.NewFailure(request.DecodeFailed, errors.New("invalid content"))
	require.NoError(t, f.segments[0].source.OnFailure(fatal, f.token(0, 1)))

	require.Equal(t, Failed, f.State())
	require.Equal(t, fatal, f.Err())
	for _, seg := range f.segments {
		_, ok := seg.source.ChooseKey()
		require.False(t, ok)
		require.True(t, seg.source.IsCancelled())
	}

	// Later failures do not change the outcome.
	f.FailAbort(errors.New("another"))
	require.Equal(t, fatal, f.Err())
}

func TestRetriesExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scope := tally.NewTestScope("", nil)
	f := newTestFetch(t, ctrl, testOptions(scope).SetMaxRetries(1))
	f.scheduler.EXPECT().Register(gomock.Any(), nil, false, false).Return(nil).Times(2)
	f.scheduler.EXPECT().Unregister(gomock.Any(), request.BulkSplitfilePriority).Times(2)
	require.NoError(t, f.Start())

	transient := request.NewFailure(request.DataNotFound, nil)
	require.NoError(t, f.segments[0].source.OnFailure(transient, f.token(0, 0)))
	require.Equal(t, Running, f.State())
	require.Equal(t, 1, f.Progress().Excluded)

	require.NoError(t, f.segments[0].source.OnFailure(transient, f.token(0, 1)))
	require.Equal(t, Failed, f.State())
	require.Equal(t, ErrRetriesExhausted, f.Err())
}

func TestLocalOnlyNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scope := tally.NewTestScope("", nil)
	f := newTestFetch(t, ctrl, testOptions(scope).SetLocalRequestOnly(true))
	f.scheduler.EXPECT().Register(gomock.Any(), nil, false, false).DoAndReturn(
		func(src request.Source, _ request.BlockSet, _, _ bool) error {
			require.Equal(t, request.LocalOnlySatisfied, src.PreRegister(true))
			return nil
		}).Times(2)
	f.scheduler.EXPECT().Unregister(gomock.Any(), request.BulkSplitfilePriority).Times(2)

	require.NoError(t, f.Start())
	require.Equal(t, Failed, f.State())
	require.Equal(t, ErrNotFoundLocally, f.Err())
	require.False(t, f.Progress().GoingToNetwork)
}

func TestLocalOnlyFoundLocally(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scope := tally.NewTestScope("", nil)
	f := newTestFetch(t, ctrl, testOptions(scope).SetLocalRequestOnly(true))

	// Every block is found locally, so no segment goes through the
	// network path.
	f.scheduler.EXPECT().Register(gomock.Any(), nil, false, false).DoAndReturn(
		func(src request.Source, _ request.BlockSet, _, _ bool) error {
			seg := src.Segment().Number
			for i, k := range src.ListKeys() {
				require.NoError(t, src.OnFoundLocally(k, f.blocks[seg][i]))
			}
			return nil
		}).Times(2)
	f.scheduler.EXPECT().Unregister(gomock.Any(), request.BulkSplitfilePriority).AnyTimes()

	require.NoError(t, f.Start())
	require.Equal(t, Succeeded, f.State())
}

func TestGoingToNetworkProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newTestFetch(t, ctrl, nil)
	f.scheduler.EXPECT().Register(gomock.Any(), nil, false, false).DoAndReturn(
		func(src request.Source, _ request.BlockSet, _, _ bool) error {
			require.Equal(t, request.RegisterNormally, src.PreRegister(true))
			require.Equal(t, request.AlreadyChecked, src.PreRegister(true))
			return nil
		}).Times(2)

	var events []ProgressEvent
	f.AddListener(func(ev ProgressEvent) { events = append(events, ev) })
	require.NoError(t, f.Start())

	require.NotEmpty(t, events)
	require.True(t, events[len(events)-1].GoingToNetwork)
	require.True(t, f.Progress().GoingToNetwork)
	require.Equal(t, Running, f.State())
}

type storeFailingPersister struct {
	segment.Persister
}

func (p storeFailingPersister) Store(segment.SegmentID, *bitset.BitSet) error {
	return errors.New("disk full")
}

func TestStorageFailureFailsFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scope := tally.NewTestScope("", nil)
	segOpts := testSegmentOptions().
		SetPersister(storeFailingPersister{Persister: segment.NewMemoryPersister()})
	f := newTestFetch(t, ctrl, testOptions(scope).SetSegmentOptions(segOpts))
	f.scheduler.EXPECT().Register(gomock.Any(), nil, false, false).Return(nil).Times(2)
	f.scheduler.EXPECT().Unregister(gomock.Any(), request.BulkSplitfilePriority).Times(2)
	require.NoError(t, f.Start())

	f.deliver(t, 0, 0)
	require.Equal(t, Failed, f.State())
	require.True(t, xerrors.IsNonRetryableError(f.Err()))
	require.Equal(t, 0, f.sink.Len())
}

func TestCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newTestFetch(t, ctrl, nil)
	f.scheduler.EXPECT().Register(gomock.Any(), nil, false, false).Return(nil).Times(2)
	f.scheduler.EXPECT().Unregister(gomock.Any(), request.BulkSplitfilePriority).Times(2)
	require.NoError(t, f.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, f.Wait(ctx))

	f.Cancel()
	require.Equal(t, Cancelled, f.State())
	require.Equal(t, ErrCancelled, f.Wait(context.Background()))
	f.Cancel()
}

func TestSetPriority(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newTestFetch(t, ctrl, nil)
	f.scheduler.EXPECT().Register(gomock.Any(), nil, false, false).DoAndReturn(
		func(src request.Source, _ request.BlockSet, _, _ bool) error {
			src.PreRegister(true)
			return nil
		}).Times(2)
	require.NoError(t, f.Start())

	f.scheduler.EXPECT().Register(f.segments[0].source, nil, false, true).Return(nil)
	f.scheduler.EXPECT().Register(f.segments[1].source, nil, false, true).Return(nil)
	require.NoError(t, f.SetPriority(request.InteractivePriority))
	require.Equal(t, request.InteractivePriority, f.PriorityClass())
	require.Equal(t, request.InteractivePriority, f.segments[0].source.PriorityClass())

	// Unchanged priority does not reschedule.
	require.NoError(t, f.SetPriority(request.InteractivePriority))
	require.True(t, xerrors.IsInvalidParams(f.SetPriority(request.Priority(-1))))
}
