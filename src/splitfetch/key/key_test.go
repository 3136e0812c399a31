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

package key

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContentDeterministic(t *testing.T) {
	a := FromContent([]byte("block"))
	b := FromContent([]byte("block"))
	require.Equal(t, a, b)
	require.True(t, a.Equal(b))
	require.NotEqual(t, a, FromContent([]byte("other")))
}

func TestParseRoundTrip(t *testing.T) {
	k := FromContent([]byte("block"))
	parsed, err := Parse(k.String())
	require.NoError(t, err)
	require.Equal(t, k, parsed)
	require.Len(t, k.Short(), 12)
	require.Len(t, k.Bytes(), Size)

	_, err = Parse("abcd")
	require.Equal(t, errInvalidKeyLength, err)

	_, err = Parse("zz")
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	data := []byte("payload")
	k := FromContent(data)
	require.NoError(t, k.Verify(data))
	require.Equal(t, ErrKeyMismatch, k.Verify([]byte("tampered")))
}
