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

// Package sync implements bounded concurrency for block requests.
package sync

import (
	"context"
	"time"
)

type workerPool struct {
	tokens chan struct{}
}

// NewWorkerPool creates a worker pool of the given size.
func NewWorkerPool(size int) WorkerPool {
	return &workerPool{tokens: make(chan struct{}, size)}
}

func (p *workerPool) Init() {
	for i := 0; i < cap(p.tokens); i++ {
		p.tokens <- struct{}{}
	}
}

func (p *workerPool) Size() int {
	return cap(p.tokens)
}

func (p *workerPool) GoWithContext(ctx context.Context, work Work) ScheduleResult {
	if ctx.Err() != nil {
		return ScheduleResult{}
	}

	start := time.Now()
	select {
	case token := <-p.tokens:
		waited := time.Since(start)
		go p.run(token, work)
		return ScheduleResult{Available: true, WaitTime: waited}
	case <-ctx.Done():
		return ScheduleResult{WaitTime: time.Since(start)}
	}
}

func (p *workerPool) run(token struct{}, work Work) {
	defer func() { p.tokens <- token }()
	work()
}
