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

// Package segment tracks per-segment block state: which blocks of a segment
// are fetched, cooling down after failures or excluded, and the keys of the
// blocks still missing.
package segment

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/willf/bitset"

	"github.com/segfetch/segfetch/src/x/rand"
	"github.com/segfetch/segfetch/src/x/retry"
)

// Never is the cooldown time of a block or segment that will not become
// eligible again by waiting.
var Never = time.Unix(0, math.MaxInt64)

// ErrSegmentNotPersisted is returned by a Persister with no state for a segment.
var ErrSegmentNotPersisted = errors.New("segment not persisted")

// ObjectID identifies one object fetch.
type ObjectID string

// SegmentID is the stable identity of a segment within an object fetch.
type SegmentID struct {
	Object ObjectID
	Number int
}

func (id SegmentID) String() string {
	return fmt.Sprintf("%s/%d", id.Object, id.Number)
}

// Persister reads and writes the fetched-blocks bitmap of segments.
type Persister interface {
	// Load returns the persisted fetched bitmap of a segment, or
	// ErrSegmentNotPersisted if none was stored.
	Load(id SegmentID) (*bitset.BitSet, error)

	// Store persists the fetched bitmap of a segment.
	Store(id SegmentID, fetched *bitset.BitSet) error
}

// StorageFailureReporter receives local storage faults.
type StorageFailureReporter interface {
	// ReportStorageFailure reports a local storage fault.
	ReportStorageFailure(err error)
}

// Options represents the options for segment storage.
type Options interface {
	// Validate validates the options.
	Validate() error

	// SetRetryOptions sets the backoff policy for failed blocks.
	SetRetryOptions(value retry.Options) Options

	// RetryOptions returns the backoff policy for failed blocks.
	RetryOptions() retry.Options

	// SetRandSource sets the source of randomness for block selection.
	SetRandSource(value rand.Source) Options

	// RandSource returns the source of randomness for block selection.
	RandSource() rand.Source

	// SetPersister sets the persister of fetched bitmaps.
	SetPersister(value Persister) Options

	// Persister returns the persister of fetched bitmaps.
	Persister() Persister
}
