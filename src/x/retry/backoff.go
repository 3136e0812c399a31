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
	"math"
	"time"
)

// BackoffNanos calculates the backoff for a retry in nanoseconds. The first
// retry is retry 1 and backs off for initialBackoff.
func BackoffNanos(
	retry int,
	jitter bool,
	backoffFactor float64,
	initialBackoff time.Duration,
	maxBackoff time.Duration,
	rngFn RngFn,
) int64 {
	if retry < 1 {
		retry = 1
	}
	backoff := initialBackoff.Nanoseconds()
	if retry >= 2 {
		backoffFloat64 := float64(backoff) * math.Pow(backoffFactor, float64(retry-1))
		// math.Inf and huge values overflow int64.
		if backoffFloat64 > float64(math.MaxInt64) {
			backoff = math.MaxInt64
		} else {
			backoff = int64(backoffFloat64)
		}
	}
	// Validate the value of backoff to make sure Int63n() does not panic.
	if jitter && backoff >= 2 && rngFn != nil {
		half := backoff / 2
		backoff = half + rngFn(half)
	}
	if maxBackoff := maxBackoff.Nanoseconds(); backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}

// Backoff returns the backoff duration for a retry using the given options.
func Backoff(retry int, opts Options) time.Duration {
	return time.Duration(BackoffNanos(
		retry,
		opts.Jitter(),
		opts.BackoffFactor(),
		opts.InitialBackoff(),
		opts.MaxBackoff(),
		opts.RngFn(),
	))
}
