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

// Package fetcher adapts the block state of one segment to the node-wide
// request scheduler.
package fetcher

import (
	"fmt"
	"time"

	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/segfetch/segfetch/src/splitfetch/key"
	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/splitfetch/segment"
	"github.com/segfetch/segfetch/src/x/clock"
	xerrors "github.com/segfetch/segfetch/src/x/errors"
)

type sourceMetrics struct {
	chosen           tally.Counter
	transientFailure tally.Counter
	fatalFailure     tally.Counter
	abandoned        tally.Counter
	excluded         tally.Counter
	reducedWakeups   tally.Counter
	fetched          tally.Counter
	foundLocally     tally.Counter
	verifyFailed     tally.Counter
	duplicate        tally.Counter
}

const failuresCounter = "failures"

func newSourceMetrics(scope tally.Scope) sourceMetrics {
	return sourceMetrics{
		chosen:           scope.Counter("chosen"),
		transientFailure: scope.Tagged(map[string]string{"kind": "transient"}).Counter(failuresCounter),
		fatalFailure:     scope.Tagged(map[string]string{"kind": "fatal"}).Counter(failuresCounter),
		abandoned:        scope.Tagged(map[string]string{"kind": "abandoned"}).Counter(failuresCounter),
		excluded:         scope.Counter("excluded"),
		reducedWakeups:   scope.Counter("reduced-wakeups"),
		fetched:          scope.Counter("fetched"),
		foundLocally:     scope.Counter("found-locally"),
		verifyFailed:     scope.Counter("verify-failed"),
		duplicate:        scope.Counter("duplicate"),
	}
}

var _ request.Source = (*SegmentSource)(nil)

// SegmentSource is the request source for one segment. It chooses which
// blocks to request, reacts to their outcomes and reports to the owning
// fetch.
type SegmentSource struct {
	storage   *segment.Storage
	directory *segment.KeyDirectory
	parent    request.Parent
	scheduler request.Scheduler

	nowFn   clock.NowFn
	logger  *zap.Logger
	metrics sourceMetrics
}

// NewSegmentSource creates a source over the storage and key directory of
// a segment.
func NewSegmentSource(
	storage *segment.Storage,
	directory *segment.KeyDirectory,
	parent request.Parent,
	scheduler request.Scheduler,
	opts Options,
) (*SegmentSource, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if storage.Segment() != directory.Segment() {
		return nil, xerrors.NewInvalidParamsError(fmt.Errorf(
			"storage segment %s does not match directory segment %s",
			storage.Segment(), directory.Segment()))
	}
	if storage.NumBlocks() != directory.NumBlocks() {
		return nil, xerrors.NewInvalidParamsError(fmt.Errorf(
			"storage has %d blocks, directory has %d",
			storage.NumBlocks(), directory.NumBlocks()))
	}

	iOpts := opts.InstrumentOptions()
	return &SegmentSource{
		storage:   storage,
		directory: directory,
		parent:    parent,
		scheduler: scheduler,
		nowFn:     opts.ClockOptions().NowFn(),
		logger:    iOpts.Logger().With(zap.Stringer("segment", storage.Segment())),
		metrics:   newSourceMetrics(iOpts.MetricsScope().SubScope("segment-source")),
	}, nil
}

// Segment returns the segment the source requests blocks of.
func (s *SegmentSource) Segment() segment.SegmentID {
	return s.storage.Segment()
}

func (s *SegmentSource) checkToken(t request.Token) error {
	if t.Segment != s.storage.Segment() {
		return xerrors.NewInvalidParamsError(fmt.Errorf(
			"token %s does not belong to segment %s", t, s.storage.Segment()))
	}
	return nil
}

// ResolveKey returns the key of the block a token names.
func (s *SegmentSource) ResolveKey(t request.Token) (key.Key, error) {
	if err := s.checkToken(t); err != nil {
		return key.Key{}, err
	}
	return s.directory.Key(t.Block)
}

// ListKeys returns the keys of all blocks not yet fetched. Storage faults
// go to the parent and yield no keys.
func (s *SegmentSource) ListKeys() []key.Key {
	return s.directory.ListUnfetchedKeys()
}

// ChooseKey picks a random block that may be requested now.
func (s *SegmentSource) ChooseKey() (request.Token, bool) {
	if s.parent.HasTerminalState() {
		return request.Token{}, false
	}
	block, ok := s.storage.ChooseRandomKey(s.nowFn())
	if !ok {
		return request.Token{}, false
	}
	s.metrics.chosen.Inc(1)
	return request.NewToken(s.storage.Segment(), block), true
}

// OnFailure handles a failed request. Fatal failures abort the whole
// fetch, transient ones put the block into cooldown and abandoned requests
// leave the block as it was.
func (s *SegmentSource) OnFailure(err error, t request.Token) error {
	if checkErr := s.checkToken(t); checkErr != nil {
		return checkErr
	}

	outcome := request.Classify(err)
	if outcome.Kind == request.Abandoned {
		s.metrics.abandoned.Inc(1)
		s.logger.Debug("block request abandoned",
			zap.Int("block", t.Block),
			zap.Error(err))
		return nil
	}
	if outcome.IsFatal() {
		s.metrics.fatalFailure.Inc(1)
		s.logger.Warn("fatal block failure, aborting fetch",
			zap.Int("block", t.Block),
			zap.Stringer("code", outcome.Code),
			zap.Error(err))
		s.parent.FailAbort(err)
		return nil
	}

	s.metrics.transientFailure.Inc(1)
	wakeup, excluded, storeErr := s.storage.OnFailure(t.Block, s.nowFn(), s.parent.MaxRetries())
	if storeErr != nil {
		return storeErr
	}
	if excluded {
		s.metrics.excluded.Inc(1)
		s.logger.Debug("block excluded",
			zap.Int("block", t.Block),
			zap.Stringer("code", outcome.Code))
		s.parent.NotifyClientsOfProgress()
		return nil
	}
	if wakeup.Equal(segment.Never) {
		// Fetched or excluded while the request was in flight.
		return nil
	}

	s.logger.Debug("block cooling down",
		zap.Int("block", t.Block),
		zap.Stringer("code", outcome.Code),
		zap.Time("until", wakeup))
	s.metrics.reducedWakeups.Inc(1)
	s.scheduler.ReduceWakeup(s, wakeup)
	return nil
}

// OnSuccess handles the data received for a block. Data that does not match
// the block key counts as a transient failure.
func (s *SegmentSource) OnSuccess(t request.Token, data []byte) error {
	k, err := s.ResolveKey(t)
	if err != nil {
		return err
	}
	if err := k.Verify(data); err != nil {
		s.metrics.verifyFailed.Inc(1)
		return s.OnFailure(request.NewFailure(request.VerifyFailed, err), t)
	}
	s.fetched(t.Block, data)
	return nil
}

// OnFoundLocally handles the data of a block found in a local store.
func (s *SegmentSource) OnFoundLocally(k key.Key, data []byte) error {
	blocks := s.directory.Blocks(k)
	if len(blocks) == 0 {
		return xerrors.NewInvalidParamsError(fmt.Errorf(
			"key %s not in segment %s", k.Short(), s.storage.Segment()))
	}
	if err := k.Verify(data); err != nil {
		return xerrors.Wrapf(err, "local block %s", k.Short())
	}
	s.metrics.foundLocally.Inc(1)
	for _, block := range blocks {
		s.fetched(block, data)
	}
	return nil
}

func (s *SegmentSource) fetched(block int, data []byte) {
	fresh, err := s.storage.OnSuccess(block)
	if err != nil {
		s.logger.Warn("could not persist fetched block", zap.Int("block", block), zap.Error(err))
		s.parent.ReportStorageFailure(err)
		return
	}
	if !fresh {
		s.metrics.duplicate.Inc(1)
		return
	}
	s.metrics.fetched.Inc(1)
	s.parent.OnBlockFetched(s.storage.Segment(), block, data)
}

// WakeupTime returns when the segment next has a block to request, or the
// zero time if that is already the case at now.
func (s *SegmentSource) WakeupTime(now time.Time) time.Time {
	wakeup := s.storage.OverallCooldownTime()
	if !wakeup.After(now) {
		return time.Time{}
	}
	return wakeup
}

// CooldownWakeup returns when the block a token names may next be
// requested. Tokens of other segments are never eligible.
func (s *SegmentSource) CooldownWakeup(t request.Token) time.Time {
	if s.checkToken(t) != nil {
		return segment.Never
	}
	return s.storage.CooldownTime(t.Block)
}

// PreRegister checks the datastore at most once per segment before going to
// the network.
func (s *SegmentSource) PreRegister(goingToNetwork bool) request.RegisterResult {
	if !goingToNetwork {
		return request.RegisterNormally
	}
	if s.storage.SetHasCheckedStore() {
		return request.AlreadyChecked
	}
	if s.parent.IsLocalRequestOnly() {
		s.parent.FinishedCheckingDatastoreLocalOnly(s.storage.Segment())
		return request.LocalOnlySatisfied
	}
	s.parent.NotifyGoingToNetwork()
	s.parent.NotifyClientsOfProgress()
	return request.RegisterNormally
}

// PriorityClass returns the priority of the owning fetch.
func (s *SegmentSource) PriorityClass() request.Priority {
	return s.parent.PriorityClass()
}

// CountAllKeys returns the number of blocks not yet fetched.
func (s *SegmentSource) CountAllKeys() int {
	return s.storage.CountUnfetchedKeys()
}

// CountSendableKeys returns the number of blocks that may be requested at now.
func (s *SegmentSource) CountSendableKeys(now time.Time) int {
	return s.storage.CountSendableKeys(now)
}

// IsCancelled returns whether the owning fetch has finished.
func (s *SegmentSource) IsCancelled() bool {
	return s.parent.HasTerminalState()
}

// HasQueued returns whether the source went through datastore checking.
func (s *SegmentSource) HasQueued() bool {
	return s.storage.HasCheckedStore()
}

// Schedule registers the source with the scheduler.
func (s *SegmentSource) Schedule(skipDatastoreCheck bool) error {
	return s.scheduler.Register(s, s.parent.BlockSet(), s.parent.Persistent(), skipDatastoreCheck)
}

// Reschedule registers the source again, after a cooldown expired or after
// a locally stored block was found corrupt. Only the latter checks local
// stores again.
func (s *SegmentSource) Reschedule(afterCorruption bool) error {
	return s.Schedule(!afterCorruption)
}

// OnCorruption marks a block believed fetched as missing again and
// reschedules the segment.
func (s *SegmentSource) OnCorruption(block int) error {
	if err := s.storage.OnCorruption(block); err != nil {
		if xerrors.IsInvalidParams(err) {
			return err
		}
		s.parent.ReportStorageFailure(err)
		return nil
	}
	s.logger.Info("block corrupt, checking local stores again", zap.Int("block", block))
	return s.Reschedule(true)
}

// Cancel unregisters the source.
func (s *SegmentSource) Cancel() {
	s.scheduler.Unregister(s, s.parent.PriorityClass())
}
