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

package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesType(t *testing.T) {
	inner := NewInvalidParamsError(errors.New("bad block"))
	err := Wrap(inner, "resolve key")
	require.Equal(t, "resolve key: bad block", err.Error())
	require.True(t, IsInvalidParams(err))
	require.False(t, IsNonRetryableError(err))
}

func TestNonRetryable(t *testing.T) {
	base := errors.New("disk full")
	require.False(t, IsNonRetryableError(base))
	require.True(t, IsNonRetryableError(Wrapf(NewNonRetryableError(base), "segment %d", 3)))
	require.Equal(t, base, GetInnerNonRetryableError(NewNonRetryableError(base)))
	require.Equal(t, base, Cause(Wrap(base, "persisting")))
}

func TestMultiError(t *testing.T) {
	multiErr := NewMultiError()
	require.True(t, multiErr.Empty())
	require.NoError(t, multiErr.FinalError())

	multiErr = multiErr.Add(nil)
	require.True(t, multiErr.Empty())

	first := errors.New("first")
	second := errors.New("second")
	third := errors.New("third")
	multiErr = multiErr.Add(first).Add(second).Add(third)

	assert.Equal(t, 3, multiErr.NumErrors())
	assert.Equal(t, []error{first, second, third}, multiErr.Errors())
	assert.Equal(t, third, multiErr.LastError())
	assert.Equal(t, "first\nsecond\nthird", multiErr.FinalError().Error())
}
