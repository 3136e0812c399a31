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

package object

import (
	"sync"

	"github.com/segfetch/segfetch/src/splitfetch/segment"
)

type blockID struct {
	segment segment.SegmentID
	block   int
}

// MemorySink keeps fetched blocks in memory.
type MemorySink struct {
	sync.RWMutex
	blocks map[blockID][]byte
}

// NewMemorySink creates an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{blocks: make(map[blockID][]byte)}
}

// Put stores a copy of the data of a block.
func (s *MemorySink) Put(id segment.SegmentID, block int, data []byte) error {
	s.Lock()
	s.blocks[blockID{segment: id, block: block}] = append([]byte(nil), data...)
	s.Unlock()
	return nil
}

// Get returns the data of a block.
func (s *MemorySink) Get(id segment.SegmentID, block int) ([]byte, bool) {
	s.RLock()
	data, ok := s.blocks[blockID{segment: id, block: block}]
	s.RUnlock()
	return data, ok
}

// Len returns the number of stored blocks.
func (s *MemorySink) Len() int {
	s.RLock()
	n := len(s.blocks)
	s.RUnlock()
	return n
}
