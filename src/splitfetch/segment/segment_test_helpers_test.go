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

package segment

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/willf/bitset"

	"github.com/segfetch/segfetch/src/splitfetch/key"
	"github.com/segfetch/segfetch/src/x/rand"
	"github.com/segfetch/segfetch/src/x/retry"
)

var (
	testStart   = time.Unix(1600000000, 0)
	testSegment = SegmentID{Object: "obj", Number: 0}
	errTestDisk = errors.New("disk read failed")
)

func testOptions() Options {
	rng := rand.NewSource(1)
	return NewOptions().
		SetRandSource(rng).
		SetRetryOptions(retry.NewOptions().
			SetInitialBackoff(time.Second).
			SetBackoffFactor(2).
			SetMaxBackoff(time.Minute))
}

func newTestStorage(t *testing.T, numBlocks int) *Storage {
	s, err := NewStorage(testSegment, numBlocks, testOptions())
	require.NoError(t, err)
	return s
}

func testKeys(n int) []key.Key {
	keys := make([]key.Key, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, key.FromContent([]byte(fmt.Sprintf("block-%d", i))))
	}
	return keys
}

type failingPersister struct {
	loadErr  error
	storeErr error
}

func (p *failingPersister) Load(SegmentID) (*bitset.BitSet, error) {
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	return nil, ErrSegmentNotPersisted
}

func (p *failingPersister) Store(SegmentID, *bitset.BitSet) error {
	return p.storeErr
}

type recordingReporter struct {
	errs []error
}

func (r *recordingReporter) ReportStorageFailure(err error) {
	r.errs = append(r.errs, err)
}
