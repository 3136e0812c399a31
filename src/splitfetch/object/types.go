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

// Package object implements the fetch of one segmented object: it owns the
// segments, decides success and failure, and feeds fetched blocks to a sink.
package object

import (
	"errors"

	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/splitfetch/segment"
	"github.com/segfetch/segfetch/src/x/clock"
	"github.com/segfetch/segfetch/src/x/instrument"
)

var (
	// ErrRetriesExhausted is the failure of a fetch for which a segment can
	// no longer reach its required number of blocks.
	ErrRetriesExhausted = errors.New("too many blocks failed")

	// ErrNotFoundLocally is the failure of a local-only fetch whose blocks
	// are not all in local stores.
	ErrNotFoundLocally = errors.New("not all blocks found locally")

	// ErrCancelled is the result of a cancelled fetch.
	ErrCancelled = errors.New("fetch cancelled")

	errFetchAlreadyStarted = errors.New("fetch already started")
)

// State is the lifecycle state of a fetch.
type State int

const (
	// Pending fetches were not started.
	Pending State = iota
	// Running fetches are requesting blocks.
	Running
	// Succeeded fetches have enough blocks of every segment.
	Succeeded
	// Failed fetches were aborted.
	Failed
	// Cancelled fetches were stopped by their owner.
	Cancelled
)

// Terminal returns whether the state is final.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed || s == Cancelled
}

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ProgressEvent describes the progress of a fetch.
type ProgressEvent struct {
	Total          int
	Required       int
	Fetched        int
	Excluded       int
	GoingToNetwork bool
	State          State
}

// ProgressListener receives progress events. Listeners are called
// synchronously and must not block.
type ProgressListener func(ProgressEvent)

// BlockSink receives the data of fetched blocks.
type BlockSink interface {
	// Put stores the data of a block.
	Put(id segment.SegmentID, block int, data []byte) error
}

// Options represents the options for an object fetch.
type Options interface {
	// Validate validates the options.
	Validate() error

	// SetClockOptions sets the clock options.
	SetClockOptions(value clock.Options) Options

	// ClockOptions returns the clock options.
	ClockOptions() clock.Options

	// SetInstrumentOptions sets the instrument options.
	SetInstrumentOptions(value instrument.Options) Options

	// InstrumentOptions returns the instrument options.
	InstrumentOptions() instrument.Options

	// SetSegmentOptions sets the options of segment storage.
	SetSegmentOptions(value segment.Options) Options

	// SegmentOptions returns the options of segment storage.
	SegmentOptions() segment.Options

	// SetPriority sets the priority class of the fetch.
	SetPriority(value request.Priority) Options

	// Priority returns the priority class of the fetch.
	Priority() request.Priority

	// SetMaxRetries sets the failures after which a block is excluded,
	// negative for unlimited. Every block is requested at least once, so
	// zero behaves like one.
	SetMaxRetries(value int) Options

	// MaxRetries returns the failures after which a block is excluded.
	MaxRetries() int

	// SetLocalRequestOnly sets whether the fetch may only use local stores.
	SetLocalRequestOnly(value bool) Options

	// LocalRequestOnly returns whether the fetch may only use local stores.
	LocalRequestOnly() bool

	// SetPersistent sets whether the fetch survives restarts.
	SetPersistent(value bool) Options

	// Persistent returns whether the fetch survives restarts.
	Persistent() bool

	// SetBlockSet sets a block set checked before going to the network.
	SetBlockSet(value request.BlockSet) Options

	// BlockSet returns the block set checked before going to the network.
	BlockSet() request.BlockSet

	// SetBlockSink sets the sink of fetched blocks.
	SetBlockSink(value BlockSink) Options

	// BlockSink returns the sink of fetched blocks.
	BlockSink() BlockSink
}
