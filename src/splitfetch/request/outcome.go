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

package request

import (
	"fmt"

	xerrors "github.com/segfetch/segfetch/src/x/errors"
)

// FailureCode is the reason the lower layer failed to fetch a block.
type FailureCode int

const (
	// DataNotFound means no peer had the block.
	DataNotFound FailureCode = iota + 1
	// RouteNotFound means the request could not be routed.
	RouteNotFound
	// RejectedOverload means peers were too busy to accept the request.
	RejectedOverload
	// TransferFailed means the transfer started but did not complete.
	TransferFailed
	// RecentlyFailed means the key failed recently and was not retried.
	RecentlyFailed
	// Timeout means no response arrived in time.
	Timeout
	// VerifyFailed means the received data did not match its key.
	VerifyFailed
	// Cancelled means the request was cancelled before completing.
	Cancelled
	// DecodeFailed means the block was received but its content is invalid.
	DecodeFailed
	// InternalError is a local bug or invariant violation.
	InternalError
	// LocalStorageError is a local disk failure while handling the block.
	LocalStorageError
)

func (c FailureCode) String() string {
	switch c {
	case DataNotFound:
		return "data-not-found"
	case RouteNotFound:
		return "route-not-found"
	case RejectedOverload:
		return "rejected-overload"
	case TransferFailed:
		return "transfer-failed"
	case RecentlyFailed:
		return "recently-failed"
	case Timeout:
		return "timeout"
	case VerifyFailed:
		return "verify-failed"
	case Cancelled:
		return "cancelled"
	case DecodeFailed:
		return "decode-failed"
	case InternalError:
		return "internal-error"
	case LocalStorageError:
		return "local-storage-error"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// Fatal returns whether the code condemns the whole object rather than the
// block it was reported for.
func (c FailureCode) Fatal() bool {
	switch c {
	case DecodeFailed, InternalError, LocalStorageError:
		return true
	}
	return false
}

// Failure is a low-level fetch failure.
type Failure struct {
	Code  FailureCode
	Cause error
}

// NewFailure returns a failure with the given code.
func NewFailure(code FailureCode, cause error) *Failure {
	return &Failure{Code: code, Cause: cause}
}

func (f *Failure) Error() string {
	if f.Cause == nil {
		return f.Code.String()
	}
	return fmt.Sprintf("%s: %v", f.Code, f.Cause)
}

// OutcomeKind distinguishes fatal from transient outcomes.
type OutcomeKind int

const (
	// Transient outcomes affect one block and are retried after a cooldown.
	Transient OutcomeKind = iota
	// Fatal outcomes abort the whole object.
	Fatal
	// Abandoned outcomes were cut short before the network answered. They
	// neither use up a retry nor put the block into cooldown.
	Abandoned
)

func (k OutcomeKind) String() string {
	switch k {
	case Fatal:
		return "fatal"
	case Abandoned:
		return "abandoned"
	default:
		return "transient"
	}
}

// Outcome is the classified result of a failed request.
type Outcome struct {
	Kind OutcomeKind
	Code FailureCode
	Err  error
}

// IsFatal returns whether the outcome aborts the object.
func (o Outcome) IsFatal() bool {
	return o.Kind == Fatal
}

// Classify translates a low-level failure into an outcome. Errors that are
// not failures from the lower layer are local bugs and fatal.
func Classify(err error) Outcome {
	f, ok := xerrors.Cause(err).(*Failure)
	if !ok {
		return Outcome{Kind: Fatal, Code: InternalError, Err: err}
	}
	kind := Transient
	switch {
	case f.Code.Fatal():
		kind = Fatal
	case f.Code == Cancelled:
		kind = Abandoned
	}
	return Outcome{Kind: kind, Code: f.Code, Err: err}
}
