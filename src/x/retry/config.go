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

import "time"

// Configuration configures the backoff applied after failed attempts. Unset
// fields keep their defaults.
type Configuration struct {
	// InitialBackoff is the backoff after the first failure.
	InitialBackoff time.Duration `yaml:"initialBackoff" validate:"min=0"`

	// BackoffFactor multiplies the backoff after each further failure.
	BackoffFactor float64 `yaml:"backoffFactor" validate:"min=0"`

	// MaxBackoff caps the backoff.
	MaxBackoff time.Duration `yaml:"maxBackoff" validate:"min=0"`

	// Jitter randomizes each backoff between the previous and current one.
	Jitter bool `yaml:"jitter"`
}

// NewOptions returns the backoff options for the configuration.
func (c Configuration) NewOptions() Options {
	opts := NewOptions().SetJitter(c.Jitter)
	if c.InitialBackoff > 0 {
		opts = opts.SetInitialBackoff(c.InitialBackoff)
	}
	if c.BackoffFactor > 0 {
		opts = opts.SetBackoffFactor(c.BackoffFactor)
	}
	if c.MaxBackoff > 0 {
		opts = opts.SetMaxBackoff(c.MaxBackoff)
	}
	return opts
}
