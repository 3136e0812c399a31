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
	"sync"

	"github.com/pborman/uuid"
	"github.com/uber-go/tally"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/segfetch/segfetch/src/splitfetch/fetcher"
	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/splitfetch/segment"
	xerrors "github.com/segfetch/segfetch/src/x/errors"
)

type fetchMetrics struct {
	started        tally.Counter
	succeeded      tally.Counter
	failed         tally.Counter
	cancelled      tally.Counter
	storageFailure tally.Counter
	blocks         tally.Counter
}

func newFetchMetrics(scope tally.Scope) fetchMetrics {
	return fetchMetrics{
		started:        scope.Counter("started"),
		succeeded:      scope.Counter("succeeded"),
		failed:         scope.Counter("failed"),
		cancelled:      scope.Counter("cancelled"),
		storageFailure: scope.Counter("storage-failures"),
		blocks:         scope.Counter("blocks-fetched"),
	}
}

type fetchSegment struct {
	storage  *segment.Storage
	source   *fetcher.SegmentSource
	required int
	// Guarded by the fetch lock.
	localChecked bool
	complete     bool
}

var _ request.Parent = (*Fetch)(nil)

// Fetch is the fetch of one object. It creates a request source per segment
// and is the parent the sources report to.
type Fetch struct {
	sync.RWMutex

	id       segment.ObjectID
	manifest Manifest
	segments []*fetchSegment
	sink     BlockSink
	blockSet request.BlockSet

	maxRetries     int
	localOnly      bool
	persistent     bool
	priority       *atomic.Int32
	terminal       *atomic.Bool
	goingToNetwork *atomic.Bool

	state     State
	err       error
	listeners []ProgressListener
	doneCh    chan struct{}

	logger  *zap.Logger
	metrics fetchMetrics
}

// NewFetch creates the fetch of the object described by a manifest. Its
// sources register with scheduler once started.
func NewFetch(manifest Manifest, scheduler request.Scheduler, opts Options) (*Fetch, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	id := segment.ObjectID(uuid.New())
	iOpts := opts.InstrumentOptions()
	f := &Fetch{
		id:             id,
		manifest:       manifest,
		sink:           opts.BlockSink(),
		blockSet:       opts.BlockSet(),
		maxRetries:     opts.MaxRetries(),
		localOnly:      opts.LocalRequestOnly(),
		persistent:     opts.Persistent(),
		priority:       atomic.NewInt32(int32(opts.Priority())),
		terminal:       atomic.NewBool(false),
		goingToNetwork: atomic.NewBool(false),
		doneCh:         make(chan struct{}),
		logger: iOpts.Logger().With(
			zap.String("object", string(id)),
			zap.String("root", manifest.Root.Short())),
		metrics: newFetchMetrics(iOpts.MetricsScope().SubScope("fetch")),
	}

	segOpts := opts.SegmentOptions()
	sourceOpts := fetcher.NewOptions().
		SetClockOptions(opts.ClockOptions()).
		SetInstrumentOptions(iOpts)
	for i, sm := range manifest.Segments {
		sid := segment.SegmentID{Object: id, Number: i}
		storage, err := segment.NewStorage(sid, len(sm.Keys), segOpts)
		if err != nil {
			return nil, err
		}
		directory := segment.NewKeyDirectory(sid, sm.Keys, segOpts.Persister(), f)
		source, err := fetcher.NewSegmentSource(storage, directory, f, scheduler, sourceOpts)
		if err != nil {
			return nil, err
		}
		f.segments = append(f.segments, &fetchSegment{
			storage:  storage,
			source:   source,
			required: sm.Required,
		})
	}
	return f, nil
}

// ID returns the identifier of the fetch.
func (f *Fetch) ID() segment.ObjectID {
	return f.id
}

// Manifest returns the manifest of the fetched object.
func (f *Fetch) Manifest() Manifest {
	return f.manifest
}

// AddListener registers a listener for progress events.
func (f *Fetch) AddListener(l ProgressListener) {
	f.Lock()
	f.listeners = append(f.listeners, l)
	f.Unlock()
}

// Start schedules all segments. Blocks found in local stores are taken
// before any request goes to the network.
func (f *Fetch) Start() error {
	f.Lock()
	if f.state != Pending {
		f.Unlock()
		return errFetchAlreadyStarted
	}
	f.state = Running
	f.Unlock()

	f.metrics.started.Inc(1)
	f.logger.Info("fetch started",
		zap.Int("segments", len(f.segments)),
		zap.Int("blocks", f.manifest.NumBlocks()),
		zap.Stringer("priority", f.PriorityClass()))

	multiErr := xerrors.NewMultiError()
	for _, seg := range f.segments {
		if f.HasTerminalState() {
			break
		}
		if err := seg.source.Schedule(false); err != nil {
			multiErr = multiErr.Add(err)
		}
	}
	if err := multiErr.FinalError(); err != nil {
		f.FailAbort(xerrors.Wrap(err, "scheduling segments"))
		return err
	}
	f.checkProgress()
	return nil
}

// Cancel stops the fetch.
func (f *Fetch) Cancel() {
	f.finish(Cancelled, ErrCancelled)
}

// Wait waits for the fetch to finish and returns its error.
func (f *Fetch) Wait(ctx context.Context) error {
	select {
	case <-f.doneCh:
		return f.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed when the fetch finishes.
func (f *Fetch) Done() <-chan struct{} {
	return f.doneCh
}

// State returns the state of the fetch.
func (f *Fetch) State() State {
	f.RLock()
	s := f.state
	f.RUnlock()
	return s
}

// Err returns why the fetch failed or was cancelled.
func (f *Fetch) Err() error {
	f.RLock()
	err := f.err
	f.RUnlock()
	return err
}

// SetPriority changes the priority class of the fetch and moves its
// registered segments.
func (f *Fetch) SetPriority(p request.Priority) error {
	if !p.Valid() {
		return xerrors.NewInvalidParamsError(fmt.Errorf("invalid priority %d", p))
	}
	if f.priority.Swap(int32(p)) == int32(p) {
		return nil
	}
	if f.localOnly {
		return nil
	}

	f.RLock()
	if f.state != Running {
		f.RUnlock()
		return nil
	}
	queued := make([]*fetcher.SegmentSource, 0, len(f.segments))
	for _, seg := range f.segments {
		if !seg.complete && seg.source.HasQueued() {
			queued = append(queued, seg.source)
		}
	}
	f.RUnlock()

	for _, source := range queued {
		if err := source.Reschedule(false); err != nil {
			return err
		}
	}
	return nil
}

// Progress returns the current progress of the fetch.
func (f *Fetch) Progress() ProgressEvent {
	ev := ProgressEvent{
		GoingToNetwork: f.goingToNetwork.Load(),
		State:          f.State(),
	}
	for _, seg := range f.segments {
		ev.Total += seg.storage.NumBlocks()
		ev.Required += seg.required
		fetched := seg.storage.CountFetchedKeys()
		if fetched > seg.required {
			fetched = seg.required
		}
		ev.Fetched += fetched
		ev.Excluded += seg.storage.CountExcludedKeys()
	}
	return ev
}

// FailAbort fails the fetch.
func (f *Fetch) FailAbort(err error) {
	f.finish(Failed, err)
}

// PriorityClass returns the priority of the fetch.
func (f *Fetch) PriorityClass() request.Priority {
	return request.Priority(f.priority.Load())
}

// IsLocalRequestOnly returns whether the fetch may only use local stores.
func (f *Fetch) IsLocalRequestOnly() bool {
	return f.localOnly
}

// NotifyGoingToNetwork records that requests are going to the network.
func (f *Fetch) NotifyGoingToNetwork() {
	if f.goingToNetwork.CAS(false, true) {
		f.logger.Info("fetch going to network")
	}
}

// NotifyClientsOfProgress re-evaluates the fetch and publishes progress.
func (f *Fetch) NotifyClientsOfProgress() {
	f.checkProgress()
}

// ReportStorageFailure fails the fetch with a local storage fault.
func (f *Fetch) ReportStorageFailure(err error) {
	f.metrics.storageFailure.Inc(1)
	f.finish(Failed, xerrors.NewNonRetryableError(xerrors.Wrap(err, "local storage failure")))
}

// HasTerminalState returns whether the fetch has finished.
func (f *Fetch) HasTerminalState() bool {
	return f.terminal.Load()
}

// MaxRetries returns the failures after which a block is excluded.
func (f *Fetch) MaxRetries() int {
	return f.maxRetries
}

// FinishedCheckingDatastoreLocalOnly records that a segment of a local-only
// fetch has been checked against local stores.
func (f *Fetch) FinishedCheckingDatastoreLocalOnly(id segment.SegmentID) {
	if id.Object != f.id || id.Number < 0 || id.Number >= len(f.segments) {
		f.logger.Error("local check finished for unknown segment", zap.Stringer("segment", id))
		return
	}
	f.Lock()
	f.segments[id.Number].localChecked = true
	f.Unlock()
	f.checkProgress()
}

// OnBlockFetched hands a fetched block to the sink.
func (f *Fetch) OnBlockFetched(id segment.SegmentID, block int, data []byte) {
	if err := f.sink.Put(id, block, data); err != nil {
		f.ReportStorageFailure(err)
		return
	}
	f.metrics.blocks.Inc(1)
	f.checkProgress()
}

// BlockSet returns the block set checked before going to the network.
func (f *Fetch) BlockSet() request.BlockSet {
	return f.blockSet
}

// Persistent returns whether the fetch survives restarts.
func (f *Fetch) Persistent() bool {
	return f.persistent
}

// checkProgress finishes the fetch when every segment has its required
// blocks, when a segment can no longer get them, or when a local-only
// fetch has checked every segment. Completed segments stop requesting.
func (f *Fetch) checkProgress() {
	if f.HasTerminalState() {
		return
	}

	var (
		completed []*fetchSegment
		complete  = true
		exhausted = false
	)
	f.Lock()
	if f.state != Running {
		f.Unlock()
		return
	}
	localDone := f.localOnly
	for _, seg := range f.segments {
		fetched := seg.storage.CountFetchedKeys()
		if fetched >= seg.required {
			if !seg.complete {
				seg.complete = true
				completed = append(completed, seg)
			}
			continue
		}
		complete = false
		if seg.storage.NumBlocks()-seg.storage.CountExcludedKeys() < seg.required {
			exhausted = true
		}
		if !seg.localChecked {
			localDone = false
		}
	}
	f.Unlock()

	switch {
	case complete:
		f.finish(Succeeded, nil)
		return
	case exhausted:
		f.finish(Failed, ErrRetriesExhausted)
		return
	case localDone:
		f.finish(Failed, ErrNotFoundLocally)
		return
	}

	for _, seg := range completed {
		seg.source.Cancel()
	}
	f.publish(f.Progress())
}

func (f *Fetch) finish(state State, err error) {
	f.Lock()
	if f.state.Terminal() {
		f.Unlock()
		return
	}
	f.state = state
	f.err = err
	f.terminal.Store(true)
	close(f.doneCh)
	f.Unlock()

	for _, seg := range f.segments {
		seg.source.Cancel()
	}

	switch state {
	case Succeeded:
		f.metrics.succeeded.Inc(1)
		f.logger.Info("fetch succeeded")
	case Cancelled:
		f.metrics.cancelled.Inc(1)
		f.logger.Info("fetch cancelled")
	default:
		f.metrics.failed.Inc(1)
		f.logger.Warn("fetch failed", zap.Error(err))
	}
	f.publish(f.Progress())
}

func (f *Fetch) publish(ev ProgressEvent) {
	f.RLock()
	listeners := append([]ProgressListener(nil), f.listeners...)
	f.RUnlock()
	for _, l := range listeners {
		l(ev)
	}
}
