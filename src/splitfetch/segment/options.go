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

package segment

import (
	"errors"

	"github.com/segfetch/segfetch/src/x/rand"
	"github.com/segfetch/segfetch/src/x/retry"
)

var (
	errNoRetryOptions = errors.New("segment options invalid: no retry options")
	errNoRandSource   = errors.New("segment options invalid: no rand source")
	errNoPersister    = errors.New("segment options invalid: no persister")
)

type options struct {
	retryOpts retry.Options
	rng       rand.Source
	persister Persister
}

// NewOptions creates segment options with default values.
func NewOptions() Options {
	rng := rand.NewTimeSeededSource()
	return &options{
		retryOpts: retry.NewOptions().SetRngFn(rng.Int63n),
		rng:       rng,
		persister: NewMemoryPersister(),
	}
}

func (o *options) Validate() error {
	if o.retryOpts == nil {
		return errNoRetryOptions
	}
	if err := o.retryOpts.Validate(); err != nil {
		return err
	}
	if o.rng == nil {
		return errNoRandSource
	}
	if o.persister == nil {
		return errNoPersister
	}
	return nil
}

func (o *options) SetRetryOptions(value retry.Options) Options {
	opts := *o
	opts.retryOpts = value
	return &opts
}

func (o *options) RetryOptions() retry.Options {
	return o.retryOpts
}

func (o *options) SetRandSource(value rand.Source) Options {
	opts := *o
	opts.rng = value
	return &opts
}

func (o *options) RandSource() rand.Source {
	return o.rng
}

func (o *options) SetPersister(value Persister) Options {
	opts := *o
	opts.persister = value
	return &opts
}

func (o *options) Persister() Persister {
	return o.persister
}
