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

package simnet

import (
	"errors"
	"time"

	"github.com/segfetch/segfetch/src/x/instrument"
	"github.com/segfetch/segfetch/src/x/rand"
)

var (
	errInvalidFailureRate = errors.New("failure rate must be in [0, 1]")
	errInvalidMissingRate = errors.New("missing rate must be in [0, 1]")
	errInvalidLatency     = errors.New("latency must not be negative")
	errNoRandSource       = errors.New("no rand source")
	errNoInstrumentOpts   = errors.New("no instrument options")
)

// Options represents the options for a simulated network.
type Options interface {
	// Validate validates the options.
	Validate() error

	// SetFailureRate sets the probability that a request fails transiently.
	SetFailureRate(value float64) Options

	// FailureRate returns the probability that a request fails transiently.
	FailureRate() float64

	// SetMissingRate sets the fraction of inserted blocks no peer has.
	SetMissingRate(value float64) Options

	// MissingRate returns the fraction of inserted blocks no peer has.
	MissingRate() float64

	// SetLatency sets how long each request takes.
	SetLatency(value time.Duration) Options

	// Latency returns how long each request takes.
	Latency() time.Duration

	// SetRandSource sets the source of randomness for injected failures.
	SetRandSource(value rand.Source) Options

	// RandSource returns the source of randomness for injected failures.
	RandSource() rand.Source

	// SetInstrumentOptions sets the instrument options.
	SetInstrumentOptions(value instrument.Options) Options

	// InstrumentOptions returns the instrument options.
	InstrumentOptions() instrument.Options
}

type options struct {
	failureRate    float64
	missingRate    float64
	latency        time.Duration
	rng            rand.Source
	instrumentOpts instrument.Options
}

// NewOptions creates a new set of simulated network options with no
// injected faults.
func NewOptions() Options {
	return &options{
		rng:            rand.NewTimeSeededSource(),
		instrumentOpts: instrument.NewOptions(),
	}
}

func (o *options) Validate() error {
	if o.failureRate < 0 || o.failureRate > 1 {
		return errInvalidFailureRate
	}
	if o.missingRate < 0 || o.missingRate > 1 {
		return errInvalidMissingRate
	}
	if o.latency < 0 {
		return errInvalidLatency
	}
	if o.rng == nil {
		return errNoRandSource
	}
	if o.instrumentOpts == nil {
		return errNoInstrumentOpts
	}
	return nil
}

func (o *options) SetFailureRate(value float64) Options {
	opts := *o
	opts.failureRate = value
	return &opts
}

func (o *options) FailureRate() float64 {
	return o.failureRate
}

func (o *options) SetMissingRate(value float64) Options {
	opts := *o
	opts.missingRate = value
	return &opts
}

func (o *options) MissingRate() float64 {
	return o.missingRate
}

func (o *options) SetLatency(value time.Duration) Options {
	opts := *o
	opts.latency = value
	return &opts
}

func (o *options) Latency() time.Duration {
	return o.latency
}

func (o *options) SetRandSource(value rand.Source) Options {
	opts := *o
	opts.rng = value
	return &opts
}

func (o *options) RandSource() rand.Source {
	return o.rng
}

func (o *options) SetInstrumentOptions(value instrument.Options) Options {
	opts := *o
	opts.instrumentOpts = value
	return &opts
}

func (o *options) InstrumentOptions() instrument.Options {
	return o.instrumentOpts
}
