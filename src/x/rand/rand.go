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

// Package rand provides seedable, goroutine safe pseudo-random sources.
package rand

import (
	"sync"
	"time"

	"github.com/MichaelTJones/pcg"
)

// Source is a source of pseudo-random numbers.
type Source interface {
	// Intn returns a pseudo-random number in [0,n). It panics if n <= 0.
	Intn(n int) int

	// Int63n returns a pseudo-random number in [0,n). It panics if n <= 0.
	Int63n(n int64) int64

	// Float64 returns a pseudo-random number in [0.0,1.0).
	Float64() float64
}

const (
	// PCG stream selectors, any odd constants work.
	defaultSequence  = 0x5851f42d4c957f2d
	defaultSequence2 = 0x14057b7ef767814f
)

type lockedSource struct {
	sync.Mutex
	pcg *pcg.PCG64
}

// NewSource returns a new source seeded with seed, the same seed always
// yields the same sequence.
func NewSource(seed uint64) Source {
	return &lockedSource{
		pcg: pcg.NewPCG64().Seed(seed, ^seed, defaultSequence, defaultSequence2),
	}
}

// NewTimeSeededSource returns a new source seeded from the wall clock.
func NewTimeSeededSource() Source {
	return NewSource(uint64(time.Now().UnixNano()))
}

func (s *lockedSource) Intn(n int) int {
	if n <= 0 {
		panic("invalid argument to Intn")
	}
	return int(s.bounded(uint64(n)))
}

func (s *lockedSource) Int63n(n int64) int64 {
	if n <= 0 {
		panic("invalid argument to Int63n")
	}
	return int64(s.bounded(uint64(n)))
}

func (s *lockedSource) Float64() float64 {
	s.Lock()
	v := s.pcg.Random()
	s.Unlock()
	// 53 bits of precision.
	return float64(v>>11) / (1 << 53)
}

func (s *lockedSource) bounded(n uint64) uint64 {
	s.Lock()
	v := s.pcg.Bounded(n)
	s.Unlock()
	return v
}
