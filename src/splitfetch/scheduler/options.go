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
	"errors"
	"time"

	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/x/clock"
	"github.com/segfetch/segfetch/src/x/instrument"
	xsync "github.com/segfetch/segfetch/src/x/sync"
)

const (
	defaultWorkerPoolSize = 64
	defaultPollInterval   = time.Second
	defaultFetchTimeout   = 30 * time.Second
)

var (
	errNoClockOptions      = errors.New("no clock options")
	errNoInstrumentOptions = errors.New("no instrument options")
	errNoWorkerPool        = errors.New("no worker pool")
	errInvalidMaxInFlight  = errors.New("max in flight must be positive and no larger than the worker pool")
	errInvalidPollInterval = errors.New("poll interval must be positive")
	errInvalidFetchTimeout = errors.New("fetch timeout must be positive")
)

type options struct {
	clockOpts      clock.Options
	instrumentOpts instrument.Options
	workerPool     xsync.WorkerPool
	maxInFlight    int
	pollInterval   time.Duration
	fetchTimeout   time.Duration
	datastore      request.BlockSet
}

// NewOptions creates a new set of scheduler options.
func NewOptions() Options {
	workerPool := xsync.NewWorkerPool(defaultWorkerPoolSize)
	workerPool.Init()
	return &options{
		clockOpts:      clock.NewOptions(),
		instrumentOpts: instrument.NewOptions(),
		workerPool:     workerPool,
		maxInFlight:    defaultWorkerPoolSize,
		pollInterval:   defaultPollInterval,
		fetchTimeout:   defaultFetchTimeout,
	}
}

func (o *options) Validate() error {
	if o.clockOpts == nil {
		return errNoClockOptions
	}
	if o.instrumentOpts == nil {
		return errNoInstrumentOptions
	}
	if o.workerPool == nil {
		return errNoWorkerPool
	}
	if o.maxInFlight <= 0 || o.maxInFlight > o.workerPool.Size() {
		return errInvalidMaxInFlight
	}
	if o.pollInterval <= 0 {
		return errInvalidPollInterval
	}
	if o.fetchTimeout <= 0 {
		return errInvalidFetchTimeout
	}
	return nil
}

func (o *options) SetClockOptions(value clock.Options) Options {
	opts := *o
	opts.clockOpts = value
	return &opts
}

func (o *options) ClockOptions() clock.Options {
	return o.clockOpts
}

func (o *options) SetInstrumentOptions(value instrument.Options) Options {
	opts := *o
	opts.instrumentOpts = value
	return &opts
}

func (o *options) InstrumentOptions() instrument.Options {
	return o.instrumentOpts
}

func (o *options) SetWorkerPool(value xsync.WorkerPool) Options {
	opts := *o
	opts.workerPool = value
	return &opts
}

func (o *options) WorkerPool() xsync.WorkerPool {
	return o.workerPool
}

func (o *options) SetMaxInFlight(value int) Options {
	opts := *o
	opts.maxInFlight = value
	return &opts
}

func (o *options) MaxInFlight() int {
	return o.maxInFlight
}

func (o *options) SetPollInterval(value time.Duration) Options {
	opts := *o
	opts.pollInterval = value
	return &opts
}

func (o *options) PollInterval() time.Duration {
	return o.pollInterval
}

func (o *options) SetFetchTimeout(value time.Duration) Options {
	opts := *o
	opts.fetchTimeout = value
	return &opts
}

func (o *options) FetchTimeout() time.Duration {
	return o.fetchTimeout
}

func (o *options) SetDatastore(value request.BlockSet) Options {
	opts := *o
	opts.datastore = value
	return &opts
}

func (o *options) Datastore() request.BlockSet {
	return o.datastore
}
