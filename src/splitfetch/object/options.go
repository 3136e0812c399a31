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
	"errors"

	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/splitfetch/segment"
	"github.com/segfetch/segfetch/src/x/clock"
	"github.com/segfetch/segfetch/src/x/instrument"
)

const defaultMaxRetries = 10

var (
	errNoClockOptions      = errors.New("no clock options")
	errNoInstrumentOptions = errors.New("no instrument options")
	errNoSegmentOptions    = errors.New("no segment options")
	errNoBlockSink         = errors.New("no block sink")
	errInvalidPriority     = errors.New("invalid priority")
)

type options struct {
	clockOpts        clock.Options
	instrumentOpts   instrument.Options
	segmentOpts      segment.Options
	priority         request.Priority
	maxRetries       int
	localRequestOnly bool
	persistent       bool
	blockSet         request.BlockSet
	sink             BlockSink
}

// NewOptions creates a new set of object fetch options.
func NewOptions() Options {
	return &options{
		clockOpts:      clock.NewOptions(),
		instrumentOpts: instrument.NewOptions(),
		segmentOpts:    segment.NewOptions(),
		priority:       request.BulkSplitfilePriority,
		maxRetries:     defaultMaxRetries,
		sink:           NewMemorySink(),
	}
}

func (o *options) Validate() error {
	if o.clockOpts == nil {
		return errNoClockOptions
	}
	if o.instrumentOpts == nil {
		return errNoInstrumentOptions
	}
	if o.segmentOpts == nil {
		return errNoSegmentOptions
	}
	if err := o.segmentOpts.Validate(); err != nil {
		return err
	}
	if !o.priority.Valid() {
		return errInvalidPriority
	}
	if o.sink == nil {
		return errNoBlockSink
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

func (o *options) SetSegmentOptions(value segment.Options) Options {
	opts := *o
	opts.segmentOpts = value
	return &opts
}

func (o *options) SegmentOptions() segment.Options {
	return o.segmentOpts
}

func (o *options) SetPriority(value request.Priority) Options {
	opts := *o
	opts.priority = value
	return &opts
}

func (o *options) Priority() request.Priority {
	return o.priority
}

func (o *options) SetMaxRetries(value int) Options {
	opts := *o
	opts.maxRetries = value
	return &opts
}

func (o *options) MaxRetries() int {
	return o.maxRetries
}

func (o *options) SetLocalRequestOnly(value bool) Options {
	opts := *o
	opts.localRequestOnly = value
	return &opts
}

func (o *options) LocalRequestOnly() bool {
	return o.localRequestOnly
}

func (o *options) SetPersistent(value bool) Options {
	opts := *o
	opts.persistent = value
	return &opts
}

func (o *options) Persistent() bool {
	return o.persistent
}

func (o *options) SetBlockSet(value request.BlockSet) Options {
	opts := *o
	opts.blockSet = value
	return &opts
}

func (o *options) BlockSet() request.BlockSet {
	return o.blockSet
}

func (o *options) SetBlockSink(value BlockSink) Options {
	opts := *o
	opts.sink = value
	return &opts
}

func (o *options) BlockSink() BlockSink {
	return o.sink
}
