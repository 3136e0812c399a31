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

// Package key implements content-addressed block keys.
package key

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// Size is the size of a key in bytes.
const Size = sha256.Size

var errInvalidKeyLength = fmt.Errorf("key must be %d hex encoded bytes", Size)

// ErrKeyMismatch is returned when block content does not hash to its key.
var ErrKeyMismatch = errors.New("block content does not match key")

// Key is the content-addressed identifier of a block, the SHA-256 digest of
// its content.
type Key [Size]byte

// FromContent derives the key of a block.
func FromContent(data []byte) Key {
	return Key(sha256.Sum256(data))
}

// Parse parses a hex encoded key.
func Parse(s string) (Key, error) {
	var k Key
	b, err := hex.DecodeString(s)
	if err != nil {
		return k, err
	}
	if len(b) != Size {
		return k, errInvalidKeyLength
	}
	copy(k[:], b)
	return k, nil
}

// Bytes returns the key bytes.
func (k Key) Bytes() []byte {
	return k[:]
}

// String returns the hex encoding of the key.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Short returns an abbreviated form for logging.
func (k Key) Short() string {
	return hex.EncodeToString(k[:6])
}

// Equal returns whether two keys are equal.
func (k Key) Equal(other Key) bool {
	return bytes.Equal(k[:], other[:])
}

// Verify checks data hashes to the key.
func (k Key) Verify(data []byte) error {
	if FromContent(data) != k {
		return ErrKeyMismatch
	}
	return nil
}
