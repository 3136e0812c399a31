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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	otlog "github.com/opentracing/opentracing-go/log"
	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/segfetch/segfetch/src/splitfetch/key"
	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/splitfetch/segment"
	"github.com/segfetch/segfetch/src/x/clock"
	xerrors "github.com/segfetch/segfetch/src/x/errors"
	xsync "github.com/segfetch/segfetch/src/x/sync"
)

const (
	// maxChooseAttempts bounds how often a source is asked for a key while
	// the keys it picks are already in flight.
	maxChooseAttempts = 8

	fetchOperationName = "splitfetch.fetch"
)

var (
	errSchedulerAlreadyOpen = errors.New("scheduler is already open")
	errSchedulerNotOpen     = errors.New("scheduler is not open")
	errSchedulerClosed      = errors.New("scheduler is closed")
)

type schedulerState int

const (
	schedulerNotOpen schedulerState = iota
	schedulerOpen
	schedulerClosed
)

type schedulerMetrics struct {
	registered   tally.Counter
	persistent   tally.Counter
	unregistered tally.Counter
	pruned       tally.Counter
	localOnly    tally.Counter
	foundLocally tally.Counter
	dispatched   tally.Counter
	succeeded    tally.Counter
	failed       tally.Counter
	dropped      tally.Counter
	sourceErrors tally.Counter
	queued       tally.Gauge
	inFlight     tally.Gauge
	fetchLatency tally.Timer
}

func newSchedulerMetrics(scope tally.Scope) schedulerMetrics {
	return schedulerMetrics{
		registered:   scope.Counter("registered"),
		persistent:   scope.Counter("registered-persistent"),
		unregistered: scope.Counter("unregistered"),
		pruned:       scope.Counter("pruned"),
		localOnly:    scope.Counter("local-only"),
		foundLocally: scope.Counter("found-locally"),
		dispatched:   scope.Counter("dispatched"),
		succeeded:    scope.Counter("succeeded"),
		failed:       scope.Counter("failed"),
		dropped:      scope.Counter("dropped"),
		sourceErrors: scope.Counter("source-errors"),
		queued:       scope.Gauge("queued"),
		inFlight:     scope.Gauge("in-flight"),
		fetchLatency: scope.Timer("fetch-latency"),
	}
}

// registration is the scheduler's view of a queued source. All fields are
// guarded by the scheduler lock.
type registration struct {
	src        request.Source
	priority   request.Priority
	persistent bool
	// wakeup is when the source is next polled; the zero time means now.
	wakeup time.Time
	// gen changes whenever something may have made the source ready early.
	gen      uint64
	inFlight *roaring.Bitmap
}

type candidate struct {
	reg *registration
	gen uint64
}

var _ request.Scheduler = (*Scheduler)(nil)

// Scheduler polls registered sources in priority order, round robin within a
// priority, and dispatches the keys they choose to a transport. It never
// calls into a source while holding its own lock.
type Scheduler struct {
	sync.Mutex

	transport    Transport
	datastore    request.BlockSet
	workerPool   xsync.WorkerPool
	maxInFlight  int
	pollInterval time.Duration
	fetchTimeout time.Duration
	nowFn        clock.NowFn
	logger       *zap.Logger
	tracer       opentracing.Tracer
	metrics      schedulerMetrics

	state    schedulerState
	queues   [request.NumPriorities][]*registration
	cursors  [request.NumPriorities]int
	sources  map[request.Source]*registration
	inFlight int

	ctx     context.Context
	cancel  context.CancelFunc
	wakeCh  chan struct{}
	closeCh chan struct{}
	doneCh  chan struct{}
	fetches sync.WaitGroup
}

// NewScheduler creates a scheduler dispatching requests to transport.
func NewScheduler(transport Transport, opts Options) (*Scheduler, error) {
	if transport == nil {
		return nil, xerrors.NewInvalidParamsError(errors.New("no transport"))
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	iOpts := opts.InstrumentOptions()
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		transport:    transport,
		datastore:    opts.Datastore(),
		workerPool:   opts.WorkerPool(),
		maxInFlight:  opts.MaxInFlight(),
		pollInterval: opts.PollInterval(),
		fetchTimeout: opts.FetchTimeout(),
		nowFn:        opts.ClockOptions().NowFn(),
		logger:       iOpts.Logger().With(zap.String("component", "scheduler")),
		tracer:       iOpts.Tracer(),
		metrics:      newSchedulerMetrics(iOpts.MetricsScope().SubScope("scheduler")),
		sources:      make(map[request.Source]*registration),
		ctx:          ctx,
		cancel:       cancel,
		wakeCh:       make(chan struct{}, 1),
		closeCh:      make(chan struct{}),
		doneCh:       make(chan struct{}),
	}, nil
}

// Open starts the polling loop.
func (s *Scheduler) Open() error {
	s.Lock()
	defer s.Unlock()

	if s.state != schedulerNotOpen {
		return errSchedulerAlreadyOpen
	}
	s.state = schedulerOpen
	go s.run()
	s.logger.Info("scheduler opened",
		zap.Int("maxInFlight", s.maxInFlight),
		zap.Duration("pollInterval", s.pollInterval))
	return nil
}

// Close stops the polling loop and waits for outstanding requests. Outcomes
// of requests cut short by closing are not delivered.
func (s *Scheduler) Close() error {
	s.Lock()
	if s.state != schedulerOpen {
		s.Unlock()
		return errSchedulerNotOpen
	}
	s.state = schedulerClosed
	s.Unlock()

	close(s.closeCh)
	s.cancel()
	<-s.doneCh
	s.fetches.Wait()
	s.logger.Info("scheduler closed")
	return nil
}

// Register queues a source. Unless skipDatastoreCheck is set, the local
// datastore and block set are searched for its keys first and the source is
// prepared for the network, which may leave nothing to queue.
func (s *Scheduler) Register(
	src request.Source,
	blockSet request.BlockSet,
	persistent bool,
	skipDatastoreCheck bool,
) error {
	if s.isClosed() {
		return errSchedulerClosed
	}

	if !skipDatastoreCheck {
		s.checkLocal(src, blockSet)
		goingToNetwork := !src.IsCancelled() && src.CountAllKeys() > 0
		result := src.PreRegister(goingToNetwork)
		if result.SkipRegistration() {
			s.metrics.localOnly.Inc(1)
			return nil
		}
		if !goingToNetwork {
			return nil
		}
	}

	priority := src.PriorityClass()
	if !priority.Valid() {
		return xerrors.NewInvalidParamsError(fmt.Errorf("invalid priority %d", priority))
	}

	s.Lock()
	if s.state == schedulerClosed {
		s.Unlock()
		return errSchedulerClosed
	}
	reg, ok := s.sources[src]
	if ok {
		if reg.priority != priority {
			s.dequeueWithLock(reg)
			reg.priority = priority
			s.queues[priority] = append(s.queues[priority], reg)
		}
	} else {
		reg = &registration{
			src:        src,
			priority:   priority,
			persistent: persistent,
			inFlight:   roaring.New(),
		}
		s.sources[src] = reg
		s.queues[priority] = append(s.queues[priority], reg)
	}
	reg.wakeup = time.Time{}
	reg.gen++
	queued := len(s.sources)
	s.Unlock()

	if !ok {
		s.metrics.registered.Inc(1)
		if persistent {
			s.metrics.persistent.Inc(1)
		}
	}
	s.metrics.queued.Update(float64(queued))
	s.logger.Debug("source registered",
		zap.Stringer("segment", src.Segment()),
		zap.Stringer("priority", priority),
		zap.Bool("persistent", persistent))
	s.notify()
	return nil
}

func (s *Scheduler) checkLocal(src request.Source, blockSet request.BlockSet) {
	stores := make([]request.BlockSet, 0, 2)
	if s.datastore != nil {
		stores = append(stores, s.datastore)
	}
	if blockSet != nil {
		stores = append(stores, blockSet)
	}
	if len(stores) == 0 {
		return
	}

	for _, k := range src.ListKeys() {
		for _, store := range stores {
			data, ok := store.Get(k)
			if !ok {
				continue
			}
			if err := src.OnFoundLocally(k, data); err != nil {
				s.metrics.sourceErrors.Inc(1)
				s.logger.Debug("local block rejected",
					zap.String("key", k.Short()),
					zap.Error(err))
				continue
			}
			s.metrics.foundLocally.Inc(1)
			break
		}
	}
}

// Unregister removes a source.
func (s *Scheduler) Unregister(src request.Source, priority request.Priority) {
	s.Lock()
	reg, ok := s.sources[src]
	if ok {
		if reg.priority != priority {
			s.logger.Debug("unregistering source at a stale priority",
				zap.Stringer("priority", priority),
				zap.Stringer("registeredPriority", reg.priority))
		}
		s.removeWithLock(reg)
	}
	queued := len(s.sources)
	s.Unlock()

	if ok {
		s.metrics.unregistered.Inc(1)
		s.metrics.queued.Update(float64(queued))
	}
}

// ReduceWakeup makes the scheduler poll a source no later than t.
func (s *Scheduler) ReduceWakeup(src request.Source, t time.Time) {
	s.Lock()
	reg, ok := s.sources[src]
	if ok && t.Before(reg.wakeup) {
		reg.wakeup = t
		reg.gen++
	}
	s.Unlock()

	if ok {
		s.notify()
	}
}

// IsRegistered returns whether a source is queued.
func (s *Scheduler) IsRegistered(src request.Source) bool {
	s.Lock()
	_, ok := s.sources[src]
	s.Unlock()
	return ok
}

// NumRegistered returns the number of queued sources.
func (s *Scheduler) NumRegistered() int {
	s.Lock()
	n := len(s.sources)
	s.Unlock()
	return n
}

// NumInFlight returns the number of outstanding requests.
func (s *Scheduler) NumInFlight() int {
	s.Lock()
	n := s.inFlight
	s.Unlock()
	return n
}

func (s *Scheduler) isClosed() bool {
	s.Lock()
	closed := s.state == schedulerClosed
	s.Unlock()
	return closed
}

func (s *Scheduler) notify() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) dequeueWithLock(reg *registration) {
	queue := s.queues[reg.priority]
	for i, r := range queue {
		if r != reg {
			continue
		}
		copy(queue[i:], queue[i+1:])
		queue[len(queue)-1] = nil
		s.queues[reg.priority] = queue[:len(queue)-1]
		if i < s.cursors[reg.priority] {
			s.cursors[reg.priority]--
		}
		return
	}
}

func (s *Scheduler) removeWithLock(reg *registration) {
	s.dequeueWithLock(reg)
	delete(s.sources, reg.src)
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	for {
		wait := s.poll()
		timer := time.NewTimer(wait)
		select {
		case <-s.closeCh:
			timer.Stop()
			return
		case <-s.wakeCh:
			timer.Stop()
		case <-timer.C:
			s.prune()
		}
	}
}

// poll dispatches requests until no source is ready or the in-flight limit
// is reached and returns how long to sleep.
func (s *Scheduler) poll() time.Duration {
	for {
		select {
		case <-s.closeCh:
			return s.pollInterval
		default:
		}

		now := s.nowFn()
		candidates, earliest, full := s.candidates(now)
		if full {
			return s.pollInterval
		}
		if len(candidates) == 0 {
			return s.waitUntil(now, earliest)
		}

		// At most one request per pass; deferred and removed candidates
		// drop out of the next pass.
		for _, c := range candidates {
			if s.tryDispatch(c, now) {
				break
			}
		}
	}
}

// candidates returns the sources ready at now in dispatch order, and the
// earliest wakeup of the others.
func (s *Scheduler) candidates(now time.Time) ([]candidate, time.Time, bool) {
	s.Lock()
	defer s.Unlock()

	if s.inFlight >= s.maxInFlight {
		return nil, time.Time{}, true
	}

	var (
		ready    []candidate
		earliest = segment.Never
	)
	for p := request.MaximumPriority; p < request.PausedPriority; p++ {
		queue := s.queues[p]
		n := len(queue)
		if n == 0 {
			continue
		}
		start := s.cursors[p] % n
		for i := 0; i < n; i++ {
			reg := queue[(start+i)%n]
			if reg.wakeup.After(now) {
				if reg.wakeup.Before(earliest) {
					earliest = reg.wakeup
				}
				continue
			}
			ready = append(ready, candidate{reg: reg, gen: reg.gen})
		}
	}
	return ready, earliest, false
}

func (s *Scheduler) waitUntil(now, earliest time.Time) time.Duration {
	if earliest.Equal(segment.Never) {
		return s.pollInterval
	}
	wait := earliest.Sub(now)
	if wait < 0 {
		return 0
	}
	if wait > s.pollInterval {
		return s.pollInterval
	}
	return wait
}

// tryDispatch asks a ready source for a key and dispatches it. A source
// with nothing to send has its wakeup pushed back.
func (s *Scheduler) tryDispatch(c candidate, now time.Time) bool {
	src := c.reg.src
	if src.IsCancelled() {
		s.pruneSource(c.reg)
		return false
	}
	if wakeup := src.WakeupTime(now); !wakeup.IsZero() {
		s.deferSource(c, wakeup)
		return false
	}

	for i := 0; i < maxChooseAttempts; i++ {
		tok, ok := src.ChooseKey()
		if !ok {
			break
		}

		s.Lock()
		busy := c.reg.inFlight.Contains(uint32(tok.Block))
		s.Unlock()
		if busy {
			continue
		}

		k, err := src.ResolveKey(tok)
		if err != nil {
			s.metrics.sourceErrors.Inc(1)
			s.logger.Error("could not resolve chosen key",
				zap.Stringer("token", tok),
				zap.Error(err))
			break
		}
		return s.reserveAndDispatch(c.reg, tok, k)
	}

	// Nothing sendable that is not already in flight; wait for an outcome
	// or a reduced wakeup.
	s.deferSource(c, segment.Never)
	return false
}

func (s *Scheduler) reserveAndDispatch(reg *registration, tok request.Token, k key.Key) bool {
	block := uint32(tok.Block)

	s.Lock()
	if s.state == schedulerClosed || s.sources[reg.src] != reg ||
		s.inFlight >= s.maxInFlight || reg.inFlight.Contains(block) {
		s.Unlock()
		return false
	}
	reg.inFlight.Add(block)
	s.inFlight++
	inFlight := s.inFlight
	queue := s.queues[reg.priority]
	for i, r := range queue {
		if r == reg {
			s.cursors[reg.priority] = i + 1
			break
		}
	}
	s.fetches.Add(1)
	s.Unlock()

	s.metrics.dispatched.Inc(1)
	s.metrics.inFlight.Update(float64(inFlight))

	result := s.workerPool.GoWithContext(s.ctx, func() {
		defer s.fetches.Done()
		s.fetch(reg, tok, k)
	})
	if !result.Available {
		s.metrics.dropped.Inc(1)
		s.complete(reg, tok)
		s.fetches.Done()
	}
	return true
}

func (s *Scheduler) fetch(reg *registration, tok request.Token, k key.Key) {
	span := s.tracer.StartSpan(fetchOperationName)
	span.SetTag("segment", tok.Segment.String())
	span.SetTag("block", tok.Block)
	span.SetTag("key", k.Short())
	defer span.Finish()

	ctx, cancel := context.WithTimeout(opentracing.ContextWithSpan(s.ctx, span), s.fetchTimeout)
	start := s.nowFn()
	data, err := s.transport.Fetch(ctx, k)
	timedOut := ctx.Err() == context.DeadlineExceeded
	cancel()
	s.metrics.fetchLatency.Record(s.nowFn().Sub(start))

	if s.ctx.Err() != nil {
		s.complete(reg, tok)
		return
	}

	src := reg.src
	if err == nil {
		s.metrics.succeeded.Inc(1)
		if srcErr := src.OnSuccess(tok, data); srcErr != nil {
			s.metrics.sourceErrors.Inc(1)
			s.logger.Error("source rejected block", zap.Stringer("token", tok), zap.Error(srcErr))
		}
		s.complete(reg, tok)
		return
	}

	if _, ok := xerrors.Cause(err).(*request.Failure); !ok && timedOut {
		err = request.NewFailure(request.Timeout, err)
	}
	ext.Error.Set(span, true)
	span.LogFields(otlog.Error(err))
	s.metrics.failed.Inc(1)
	s.logger.Debug("fetch failed", zap.Stringer("token", tok), zap.Error(err))
	if srcErr := src.OnFailure(err, tok); srcErr != nil {
		s.metrics.sourceErrors.Inc(1)
		s.logger.Error("source rejected failure", zap.Stringer("token", tok), zap.Error(srcErr))
	}
	s.complete(reg, tok)
}

// complete releases an in-flight request. The source is polled again since
// its outcome may have changed what it can send.
func (s *Scheduler) complete(reg *registration, tok request.Token) {
	s.Lock()
	reg.inFlight.Remove(uint32(tok.Block))
	reg.wakeup = time.Time{}
	reg.gen++
	s.inFlight--
	inFlight := s.inFlight
	s.Unlock()

	s.metrics.inFlight.Update(float64(inFlight))
	s.notify()
}

func (s *Scheduler) deferSource(c candidate, wakeup time.Time) {
	s.Lock()
	if c.reg.gen == c.gen {
		c.reg.wakeup = wakeup
	}
	s.Unlock()
}

func (s *Scheduler) pruneSource(reg *registration) {
	s.Lock()
	removed := s.sources[reg.src] == reg
	if removed {
		s.removeWithLock(reg)
	}
	queued := len(s.sources)
	s.Unlock()

	if removed {
		s.metrics.pruned.Inc(1)
		s.metrics.queued.Update(float64(queued))
	}
}

// prune drops sources whose fetch finished while they were waiting.
func (s *Scheduler) prune() {
	s.Lock()
	regs := make([]*registration, 0, len(s.sources))
	for _, reg := range s.sources {
		regs = append(regs, reg)
	}
	s.Unlock()

	for _, reg := range regs {
		if reg.src.IsCancelled() {
			s.pruneSource(reg)
		}
	}
}
