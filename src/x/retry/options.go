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

package retry

import (
	"errors"
	"time"

	"github.com/segfetch/segfetch/src/x/rand"
)

const (
	defaultInitialBackoff = time.Second
	defaultBackoffFactor  = 2.0
	defaultMaxBackoff     = 30 * time.Minute
	defaultJitter         = false
)

var (
	errInvalidInitialBackoff = errors.New("initial backoff must be positive")
	errInvalidBackoffFactor  = errors.New("backoff factor must be at least 1")
	errInvalidMaxBackoff     = errors.New("max backoff must not be less than initial backoff")
	errNoRngFn               = errors.New("jitter requires a rng function")
)

type options struct {
	initialBackoff time.Duration
	backoffFactor  float64
	maxBackoff     time.Duration
	jitter         bool
	rngFn          RngFn
}

// NewOptions creates new retry options.
func NewOptions() Options {
	return &options{
		initialBackoff: defaultInitialBackoff,
		backoffFactor:  defaultBackoffFactor,
		maxBackoff:     defaultMaxBackoff,
		jitter:         defaultJitter,
		rngFn:          rand.NewTimeSeededSource().Int63n,
	}
}

func (o *options) Validate() error {
	if o.initialBackoff <= 0 {
		return errInvalidInitialBackoff
	}
	if o.backoffFactor < 1 {
		return errInvalidBackoffFactor
	}
	if o.maxBackoff < o.initialBackoff {
		return errInvalidMaxBackoff
	}
	if o.jitter && o.rngFn == nil {
		return errNoRngFn
	}
	return nil
}

func (o *options) SetInitialBackoff(value time.Duration) Options {
	opts := *o
	opts.initialBackoff = value
	return &opts
}

func (o *options) InitialBackoff() time.Duration {
	return o.initialBackoff
}

func (o *options) SetBackoffFactor(value float64) Options {
	opts := *o
	opts.backoffFactor = value
	return &opts
}

func (o *options) BackoffFactor() float64 {
	return o.backoffFactor
}

func (o *options) SetMaxBackoff(value time.Duration) Options {
	opts := *o
	opts.maxBackoff = value
	return &opts
}

func (o *options) MaxBackoff() time.Duration {
	return o.maxBackoff
}

func (o *options) SetJitter(value bool) Options {
	opts := *o
	opts.jitter = value
	return &opts
}

func (o *options) Jitter() bool {
	return o.jitter
}

func (o *options) SetRngFn(value RngFn) Options {
	opts := *o
	opts.rngFn = value
	return &opts
}

func (o *options) RngFn() RngFn {
	return o.rngFn
}
