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

package sync

import (
	"context"
	"time"
)

// Work is a unit of work run by a worker.
type Work func()

// ScheduleResult is the result of scheduling work on the pool.
type ScheduleResult struct {
	// Available is true if the work was handed to a worker, false if the
	// context was done first.
	Available bool
	// WaitTime is how long the caller waited for a worker.
	WaitTime time.Duration
}

// WorkerPool bounds the number of goroutines running work concurrently.
type WorkerPool interface {
	// Init fills the pool with workers. It must be called once before use.
	Init()

	// GoWithContext waits until a worker is free or ctx is done, and runs
	// the work on the worker if one was obtained.
	GoWithContext(ctx context.Context, work Work) ScheduleResult

	// Size returns the number of workers in the pool.
	Size() int
}
