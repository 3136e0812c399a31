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
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/segfetch/segfetch/src/splitfetch/segment"
)

// Token names one block of one segment. It is a plain value: two tokens
// naming the same block of the same segment are equal and hash the same.
// Tokens hold no fetch state and are never persisted.
type Token struct {
	Segment segment.SegmentID
	Block   int
}

// NewToken returns the token for a block.
func NewToken(id segment.SegmentID, block int) Token {
	return Token{Segment: id, Block: block}
}

// Hash returns a hash of the token derived from its fields.
func (t Token) Hash() uint64 {
	var buf [16]byte
	d := xxhash.New()
	_, _ = d.WriteString(string(t.Segment.Object))
	binary.LittleEndian.PutUint64(buf[:8], uint64(t.Segment.Number))
	binary.LittleEndian.PutUint64(buf[8:], uint64(t.Block))
	_, _ = d.Write(buf[:])
	return d.Sum64()
}

func (t Token) String() string {
	return fmt.Sprintf("token:%s:%d", t.Segment, t.Block)
}
