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
	"errors"
	"fmt"

	"github.com/segfetch/segfetch/src/splitfetch/key"
	xerrors "github.com/segfetch/segfetch/src/x/errors"
)

var errEmptyManifest = errors.New("manifest has no segments")

// Manifest lists the blocks of an object by segment.
type Manifest struct {
	// Root is the key of the whole object content.
	Root key.Key
	// Size is the size of the object content in bytes.
	Size int64
	// BlockSize is the size of every block in bytes.
	BlockSize int
	Segments  []SegmentManifest
}

// SegmentManifest lists the blocks of one segment, data blocks first.
type SegmentManifest struct {
	Keys []key.Key
	// Required is the number of blocks needed to decode the segment.
	Required int
}

// Validate validates the manifest.
func (m Manifest) Validate() error {
	if len(m.Segments) == 0 {
		return xerrors.NewInvalidParamsError(errEmptyManifest)
	}
	for i, seg := range m.Segments {
		if seg.Required <= 0 || seg.Required > len(seg.Keys) {
			return xerrors.NewInvalidParamsError(fmt.Errorf(
				"segment %d requires %d of %d blocks", i, seg.Required, len(seg.Keys)))
		}
	}
	return nil
}

// NumBlocks returns the number of blocks of all segments.
func (m Manifest) NumBlocks() int {
	n := 0
	for _, seg := range m.Segments {
		n += len(seg.Keys)
	}
	return n
}

// SplitContent splits content into blocks of blockSize bytes, the last one
// zero padded, grouped into segments of up to segmentSize data blocks. Each
// segment gets checkBlocks parity blocks, check block j being the XOR of the
// data blocks whose index is j modulo checkBlocks. It returns the manifest
// and the blocks of all segments in manifest order.
func SplitContent(data []byte, blockSize, segmentSize, checkBlocks int) (Manifest, [][]byte, error) {
	if len(data) == 0 {
		return Manifest{}, nil, xerrors.NewInvalidParamsError(errors.New("no content"))
	}
	if blockSize <= 0 || segmentSize <= 0 || checkBlocks < 0 {
		return Manifest{}, nil, xerrors.NewInvalidParamsError(fmt.Errorf(
			"invalid split: block size %d, segment size %d, check blocks %d",
			blockSize, segmentSize, checkBlocks))
	}

	var dataBlocks [][]byte
	for off := 0; off < len(data); off += blockSize {
		block := make([]byte, blockSize)
		copy(block, data[off:])
		dataBlocks = append(dataBlocks, block)
	}

	m := Manifest{
		Root:      key.FromContent(data),
		Size:      int64(len(data)),
		BlockSize: blockSize,
	}
	var blocks [][]byte
	for start := 0; start < len(dataBlocks); start += segmentSize {
		end := start + segmentSize
		if end > len(dataBlocks) {
			end = len(dataBlocks)
		}
		segBlocks := append([][]byte(nil), dataBlocks[start:end]...)
		segBlocks = append(segBlocks, parityBlocks(dataBlocks[start:end], blockSize, checkBlocks)...)

		seg := SegmentManifest{Required: end - start}
		for _, b := range segBlocks {
			seg.Keys = append(seg.Keys, key.FromContent(b))
		}
		m.Segments = append(m.Segments, seg)
		blocks = append(blocks, segBlocks...)
	}
	return m, blocks, nil
}

func parityBlocks(dataBlocks [][]byte, blockSize, n int) [][]byte {
	parity := make([][]byte, n)
	for j := range parity {
		parity[j] = make([]byte, blockSize)
	}
	if n == 0 {
		return parity
	}
	for i, b := range dataBlocks {
		p := parity[i%n]
		for k := range b {
			p[k] ^= b[k]
		}
	}
	return parity
}
