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

package blockset

import (
	"errors"

	"github.com/segfetch/segfetch/src/x/instrument"
)

const (
	defaultExpectedBlocks    = 1 << 16
	defaultFalsePositiveRate = 0.01
)

var (
	errInvalidExpectedBlocks    = errors.New("expected blocks must be positive")
	errInvalidFalsePositiveRate = errors.New("false positive rate must be in (0, 1)")
	errNoInstrumentOptions      = errors.New("no instrument options")
)

// Options represents the options for a block set.
type Options interface {
	// Validate validates the options.
	Validate() error

	// SetExpectedBlocks sets the number of blocks the bloom filter is sized for.
	SetExpectedBlocks(value uint) Options

	// ExpectedBlocks returns the number of blocks the bloom filter is sized for.
	ExpectedBlocks() uint

	// SetFalsePositiveRate sets the target false positive rate of the bloom
	// filter.
	SetFalsePositiveRate(value float64) Options

	// FalsePositiveRate returns the target false positive rate of the bloom
	// filter.
	FalsePositiveRate() float64

	// SetInstrumentOptions sets the instrument options.
	SetInstrumentOptions(value instrument.Options) Options

	// InstrumentOptions returns the instrument options.
	InstrumentOptions() instrument.Options
}

type options struct {
	expectedBlocks    uint
	falsePositiveRate float64
	instrumentOpts    instrument.Options
}

// NewOptions creates a new set of block set options.
func NewOptions() Options {
	return &options{
		expectedBlocks:    defaultExpectedBlocks,
		falsePositiveRate: defaultFalsePositiveRate,
		instrumentOpts:    instrument.NewOptions(),
	}
}

func (o *options) Validate() error {
	if o.expectedBlocks == 0 {
		return errInvalidExpectedBlocks
	}
	if o.falsePositiveRate <= 0 || o.falsePositiveRate >= 1 {
		return errInvalidFalsePositiveRate
	}
	if o.instrumentOpts == nil {
		return errNoInstrumentOptions
	}
	return nil
}

func (o *options) SetExpectedBlocks(value uint) Options {
	opts := *o
	opts.expectedBlocks = value
	return &opts
}

func (o *options) ExpectedBlocks() uint {
	return o.expectedBlocks
}

func (o *options) SetFalsePositiveRate(value float64) Options {
	opts := *o
	opts.falsePositiveRate = value
	return &opts
}

func (o *options) FalsePositiveRate() float64 {
	return o.falsePositiveRate
}

func (o *options) SetInstrumentOptions(value instrument.Options) Options {
	opts := *o
	opts.instrumentOpts = value
	return &opts
}

func (o *options) InstrumentOptions() instrument.Options {
	return o.instrumentOpts
}
