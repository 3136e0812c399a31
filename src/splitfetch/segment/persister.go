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
	"sync"

	"github.com/willf/bitset"
)

type memoryPersister struct {
	sync.RWMutex
	segments map[SegmentID]*bitset.BitSet
}

// NewMemoryPersister returns a Persister keeping bitmaps in memory.
func NewMemoryPersister() Persister {
	return &memoryPersister{segments: make(map[SegmentID]*bitset.BitSet)}
}

func (p *memoryPersister) Load(id SegmentID) (*bitset.BitSet, error) {
	p.RLock()
	fetched, ok := p.segments[id]
	p.RUnlock()
	if !ok {
		return nil, ErrSegmentNotPersisted
	}
	return fetched.Clone(), nil
}

func (p *memoryPersister) Store(id SegmentID, fetched *bitset.BitSet) error {
	clone := fetched.Clone()
	p.Lock()
	p.segments[id] = clone
	p.Unlock()
	return nil
}
