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
	"time"

	"github.com/segfetch/segfetch/src/x/instrument"
	"github.com/segfetch/segfetch/src/x/rand"
)

// Configuration configures a simulated network.
type Configuration struct {
	// FailureRate is the probability that a request fails transiently.
	FailureRate float64 `yaml:"failureRate" validate:"min=0,max=1"`

	// MissingRate is the fraction of blocks no peer has.
	MissingRate float64 `yaml:"missingRate" validate:"min=0,max=1"`

	// Latency is how long each request takes.
	Latency time.Duration `yaml:"latency"`

	// Seed seeds injected failures, time seeded if unset.
	Seed *uint64 `yaml:"seed"`
}

// NewOptions returns the simulated network options for the configuration.
func (c Configuration) NewOptions(iOpts instrument.Options) Options {
	rng := rand.NewTimeSeededSource()
	if c.Seed != nil {
		rng = rand.NewSource(*c.Seed)
	}
	return NewOptions().
		SetFailureRate(c.FailureRate).
		SetMissingRate(c.MissingRate).
		SetLatency(c.Latency).
		SetRandSource(rng).
		SetInstrumentOptions(iOpts)
}
