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
	"fmt"

	"github.com/segfetch/segfetch/src/splitfetch/key"
	xerrors "github.com/segfetch/segfetch/src/x/errors"
)

// KeyDirectory maps the block numbers of a segment to their keys. Keys are
// fixed at construction.
type KeyDirectory struct {
	id        SegmentID
	keys      []key.Key
	blocks    map[key.Key][]int
	persister Persister
	reporter  StorageFailureReporter
}

// NewKeyDirectory creates a key directory for a segment. Storage read
// failures while listing keys are sent to reporter.
func NewKeyDirectory(
	id SegmentID,
	keys []key.Key,
	persister Persister,
	reporter StorageFailureReporter,
) *KeyDirectory {
	blocks := make(map[key.Key][]int, len(keys))
	for i, k := range keys {
		blocks[k] = append(blocks[k], i)
	}
	return &KeyDirectory{
		id:        id,
		keys:      append([]key.Key(nil), keys...),
		blocks:    blocks,
		persister: persister,
		reporter:  reporter,
	}
}

// Segment returns the segment the directory belongs to.
func (d *KeyDirectory) Segment() SegmentID {
	return d.id
}

// NumBlocks returns the number of blocks in the segment.
func (d *KeyDirectory) NumBlocks() int {
	return len(d.keys)
}

// Key resolves the key of a block.
func (d *KeyDirectory) Key(block int) (key.Key, error) {
	if block < 0 || block >= len(d.keys) {
		return key.Key{}, xerrors.NewInvalidParamsError(
			fmt.Errorf("block %d not in segment %s of %d blocks", block, d.id, len(d.keys)))
	}
	return d.keys[block], nil
}

// Blocks returns the block numbers whose content has the given key.
func (d *KeyDirectory) Blocks(k key.Key) []int {
	return d.blocks[k]
}

// ListUnfetchedKeys returns the keys of blocks not yet fetched according to
// persisted state. A read failure is reported and yields no keys.
func (d *KeyDirectory) ListUnfetchedKeys() []key.Key {
	fetched, err := d.persister.Load(d.id)
	if err == ErrSegmentNotPersisted {
		return append([]key.Key(nil), d.keys...)
	}
	if err != nil {
		d.reporter.ReportStorageFailure(xerrors.Wrapf(err, "listing keys of segment %s", d.id))
		return []key.Key{}
	}
	unfetched := make([]key.Key, 0, len(d.keys))
	for i, k := range d.keys {
		if !fetched.Test(uint(i)) {
			unfetched = append(unfetched, k)
		}
	}
	return unfetched
}
