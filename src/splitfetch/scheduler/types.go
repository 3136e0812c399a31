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

// Package scheduler implements the node-wide scheduler that polls request
// sources in priority order and dispatches their block requests.
package scheduler

import (
	"context"
	"time"

	"github.com/segfetch/segfetch/src/splitfetch/key"
	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/x/clock"
	"github.com/segfetch/segfetch/src/x/instrument"
	xsync "github.com/segfetch/segfetch/src/x/sync"
)

// Transport sends block requests to the network.
type Transport interface {
	// Fetch requests the block with the given key. Failures are returned as
	// *request.Failure.
	Fetch(ctx context.Context, k key.Key) ([]byte, error)
}

// Options represents the options for the scheduler.
type Options interface {
	// Validate validates the options.
	Validate() error

	// SetClockOptions sets the clock options.
	SetClockOptions(value clock.Options) Options

	// ClockOptions returns the clock options.
	ClockOptions() clock.Options

	// SetInstrumentOptions sets the instrument options.
	SetInstrumentOptions(value instrument.Options) Options

	// InstrumentOptions returns the instrument options.
	InstrumentOptions() instrument.Options

	// SetWorkerPool sets the pool running network requests.
	SetWorkerPool(value xsync.WorkerPool) Options

	// WorkerPool returns the pool running network requests.
	WorkerPool() xsync.WorkerPool

	// SetMaxInFlight sets the maximum number of outstanding requests.
	SetMaxInFlight(value int) Options

	// MaxInFlight returns the maximum number of outstanding requests.
	MaxInFlight() int

	// SetPollInterval sets the longest the scheduler sleeps between polls.
	SetPollInterval(value time.Duration) Options

	// PollInterval returns the longest the scheduler sleeps between polls.
	PollInterval() time.Duration

	// SetFetchTimeout sets the timeout of a single request.
	SetFetchTimeout(value time.Duration) Options

	// FetchTimeout returns the timeout of a single request.
	FetchTimeout() time.Duration

	// SetDatastore sets the local store checked before going to the network.
	SetDatastore(value request.BlockSet) Options

	// Datastore returns the local store checked before going to the network.
	Datastore() request.BlockSet
}
