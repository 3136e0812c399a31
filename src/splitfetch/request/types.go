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

// Package request defines the contract between the sources of block
// requests and the node-wide scheduler that dispatches them.
package request

import (
	"time"

	"github.com/segfetch/segfetch/src/splitfetch/key"
	"github.com/segfetch/segfetch/src/splitfetch/segment"
)

// RegisterResult is the result of preparing a source for registration.
type RegisterResult int

const (
	// RegisterNormally means the source should be queued for dispatch.
	RegisterNormally RegisterResult = iota
	// AlreadyChecked means the datastore was checked before; the source is
	// queued without repeating the check side effects.
	AlreadyChecked
	// LocalOnlySatisfied means a local-only fetch finished checking the
	// datastore and the source must not be queued.
	LocalOnlySatisfied
)

// SkipRegistration returns whether the source must not be queued.
func (r RegisterResult) SkipRegistration() bool {
	return r == LocalOnlySatisfied
}

func (r RegisterResult) String() string {
	switch r {
	case RegisterNormally:
		return "register-normally"
	case AlreadyChecked:
		return "already-checked"
	case LocalOnlySatisfied:
		return "local-only-satisfied"
	default:
		return "unknown"
	}
}

// BlockSet is a set of blocks available locally.
type BlockSet interface {
	// Get returns the data of a block if it is in the set.
	Get(k key.Key) ([]byte, bool)
}

// Source is one segment's worth of block requests, polled by the scheduler.
type Source interface {
	// Segment returns the segment the source requests blocks of.
	Segment() segment.SegmentID

	// ResolveKey returns the key of the block a token names.
	ResolveKey(t Token) (key.Key, error)

	// ListKeys returns the keys of all blocks not yet fetched.
	ListKeys() []key.Key

	// ChooseKey picks a block that may be requested now, if any.
	ChooseKey() (Token, bool)

	// OnFailure handles the failure of a request for a block.
	OnFailure(err error, t Token) error

	// OnSuccess handles the data received for a block.
	OnSuccess(t Token, data []byte) error

	// OnFoundLocally handles block data found in a local store.
	OnFoundLocally(k key.Key, data []byte) error

	// WakeupTime returns when the source next has a block to request; the
	// zero time means now.
	WakeupTime(now time.Time) time.Time

	// CooldownWakeup returns when the block a token names may next be
	// requested.
	CooldownWakeup(t Token) time.Time

	// PreRegister runs before the source is queued with the scheduler.
	PreRegister(goingToNetwork bool) RegisterResult

	// PriorityClass returns the priority of the requests.
	PriorityClass() Priority

	// CountAllKeys returns the number of blocks not yet fetched.
	CountAllKeys() int

	// CountSendableKeys returns the number of blocks that may be requested
	// at now.
	CountSendableKeys(now time.Time) int

	// IsCancelled returns whether the owning fetch has finished.
	IsCancelled() bool

	// Schedule registers the source with the scheduler.
	Schedule(skipDatastoreCheck bool) error

	// Cancel unregisters the source from the scheduler.
	Cancel()
}

// Parent is the fetch owning a set of sources.
type Parent interface {
	// FailAbort fails the whole fetch.
	FailAbort(err error)

	// PriorityClass returns the priority of the fetch.
	PriorityClass() Priority

	// IsLocalRequestOnly returns whether the fetch may only use local stores.
	IsLocalRequestOnly() bool

	// NotifyGoingToNetwork is called when a source is about to send requests
	// to the network.
	NotifyGoingToNetwork()

	// NotifyClientsOfProgress asks the fetch to publish its progress.
	NotifyClientsOfProgress()

	// ReportStorageFailure reports a local storage fault.
	ReportStorageFailure(err error)

	// HasTerminalState returns whether the fetch has finished.
	HasTerminalState() bool

	// MaxRetries returns the number of failures after which a block is
	// excluded, negative for unlimited.
	MaxRetries() int

	// FinishedCheckingDatastoreLocalOnly is called when a segment of a
	// local-only fetch finished checking local stores.
	FinishedCheckingDatastoreLocalOnly(id segment.SegmentID)

	// OnBlockFetched hands over the data of a newly fetched block.
	OnBlockFetched(id segment.SegmentID, block int, data []byte)

	// BlockSet returns the local block set to check before going to the
	// network, or nil.
	BlockSet() BlockSet

	// Persistent returns whether the fetch survives restarts.
	Persistent() bool
}

// Scheduler dispatches the block requests of registered sources.
type Scheduler interface {
	// Register queues a source, checking local stores first unless
	// skipDatastoreCheck is set.
	Register(src Source, blockSet BlockSet, persistent bool, skipDatastoreCheck bool) error

	// Unregister removes a source registered at the given priority.
	Unregister(src Source, priority Priority)

	// ReduceWakeup asks the scheduler to poll a source no later than t.
	ReduceWakeup(src Source, t time.Time)
}
