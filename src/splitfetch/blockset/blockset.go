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

// Package blockset implements a local set of blocks keyed by content.
package blockset

import (
	"sync"

	"github.com/m3db/bloom/v4"
	"github.com/uber-go/tally"

	"github.com/segfetch/segfetch/src/splitfetch/key"
	"github.com/segfetch/segfetch/src/splitfetch/request"
)

type setMetrics struct {
	added         tally.Counter
	bloomNegative tally.Counter
	falsePositive tally.Counter
	hits          tally.Counter
}

func newSetMetrics(scope tally.Scope) setMetrics {
	return setMetrics{
		added:         scope.Counter("added"),
		bloomNegative: scope.Counter("bloom-negative"),
		falsePositive: scope.Counter("false-positive"),
		hits:          scope.Counter("hits"),
	}
}

var _ request.BlockSet = (*Set)(nil)

// Set is a set of blocks. Lookups of absent keys are answered by a bloom
// filter without touching the block map in most cases.
type Set struct {
	sync.RWMutex

	filter  *bloom.BloomFilter
	blocks  map[key.Key][]byte
	metrics setMetrics
}

// New creates an empty block set.
func New(opts Options) (*Set, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	m, k := bloom.EstimateFalsePositiveRate(opts.ExpectedBlocks(), opts.FalsePositiveRate())
	scope := opts.InstrumentOptions().MetricsScope().SubScope("blockset")
	return &Set{
		filter:  bloom.NewBloomFilter(m, k),
		blocks:  make(map[key.Key][]byte),
		metrics: newSetMetrics(scope),
	}, nil
}

// Add stores a block and returns its key.
func (s *Set) Add(data []byte) key.Key {
	k := key.FromContent(data)
	s.Lock()
	if _, ok := s.blocks[k]; !ok {
		s.blocks[k] = append([]byte(nil), data...)
		s.filter.Add(k.Bytes())
		s.metrics.added.Inc(1)
	}
	s.Unlock()
	return k
}

// Put stores a block under its key, rejecting data that does not match.
func (s *Set) Put(k key.Key, data []byte) error {
	if err := k.Verify(data); err != nil {
		return err
	}
	s.Add(data)
	return nil
}

// Get returns the data of a block if present.
func (s *Set) Get(k key.Key) ([]byte, bool) {
	s.RLock()
	defer s.RUnlock()

	if !s.filter.Test(k.Bytes()) {
		s.metrics.bloomNegative.Inc(1)
		return nil, false
	}
	data, ok := s.blocks[k]
	if !ok {
		s.metrics.falsePositive.Inc(1)
		return nil, false
	}
	s.metrics.hits.Inc(1)
	return data, true
}

// Contains returns whether a block is present.
func (s *Set) Contains(k key.Key) bool {
	_, ok := s.Get(k)
	return ok
}

// Len returns the number of blocks in the set.
func (s *Set) Len() int {
	s.RLock()
	n := len(s.blocks)
	s.RUnlock()
	return n
}
