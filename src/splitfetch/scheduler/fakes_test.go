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

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/segfetch/segfetch/src/splitfetch/key"
	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/splitfetch/segment"
)

// fakeSource offers its unfetched blocks lowest first and gives a block up
// after its first failure.
type fakeSource struct {
	sync.Mutex

	id        segment.SegmentID
	priority  request.Priority
	data      [][]byte
	keys      []key.Key
	done      map[int]bool
	fetched   map[int]bool
	cancelled *atomic.Bool

	registerResult request.RegisterResult
	preRegistered  []bool
	foundLocally   []key.Key

	successes chan int
	failures  chan error
}

func newFakeSource(object string, priority request.Priority, numBlocks int) *fakeSource {
	id := segment.SegmentID{Object: segment.ObjectID(object)}
	s := &fakeSource{
		id:        id,
		priority:  priority,
		done:      make(map[int]bool),
		fetched:   make(map[int]bool),
		cancelled: atomic.NewBool(false),
		successes: make(chan int, numBlocks),
		failures:  make(chan error, numBlocks),
	}
	for i := 0; i < numBlocks; i++ {
		d := []byte(fmt.Sprintf("%s-%d", object, i))
		s.data = append(s.data, d)
		s.keys = append(s.keys, key.FromContent(d))
	}
	return s
}

func (s *fakeSource) Segment() segment.SegmentID { return s.id }

func (s *fakeSource) ResolveKey(t request.Token) (key.Key, error) {
	if t.Segment != s.id || t.Block < 0 || t.Block >= len(s.keys) {
		return key.Key{}, fmt.Errorf("bad token %s", t)
	}
	return s.keys[t.Block], nil
}

func (s *fakeSource) ListKeys() []key.Key {
	s.Lock()
	defer s.Unlock()
	var keys []key.Key
	for i, k := range s.keys {
		if !s.fetched[i] {
			keys = append(keys, k)
		}
	}
	return keys
}

func (s *fakeSource) ChooseKey() (request.Token, bool) {
	s.Lock()
	defer s.Unlock()
	for i := range s.keys {
		if !s.done[i] {
			return request.NewToken(s.id, i), true
		}
	}
	return request.Token{}, false
}

func (s *fakeSource) OnFailure(err error, t request.Token) error {
	s.Lock()
	s.done[t.Block] = true
	s.Unlock()
	s.failures <- err
	return nil
}

func (s *fakeSource) OnSuccess(t request.Token, data []byte) error {
	if err := s.keys[t.Block].Verify(data); err != nil {
		return err
	}
	s.Lock()
	s.done[t.Block] = true
	s.fetched[t.Block] = true
	s.Unlock()
	s.successes <- t.Block
	return nil
}

func (s *fakeSource) OnFoundLocally(k key.Key, data []byte) error {
	if err := k.Verify(data); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	for i, bk := range s.keys {
		if bk == k {
			s.done[i] = true
			s.fetched[i] = true
		}
	}
	s.foundLocally = append(s.foundLocally, k)
	return nil
}

func (s *fakeSource) WakeupTime(time.Time) time.Time {
	s.Lock()
	defer s.Unlock()
	if len(s.done) == len(s.keys) {
		return segment.Never
	}
	return time.Time{}
}

func (s *fakeSource) CooldownWakeup(request.Token) time.Time { return time.Time{} }

func (s *fakeSource) PreRegister(goingToNetwork bool) request.RegisterResult {
	s.Lock()
	defer s.Unlock()
	s.preRegistered = append(s.preRegistered, goingToNetwork)
	return s.registerResult
}

func (s *fakeSource) PriorityClass() request.Priority { return s.priority }

func (s *fakeSource) CountAllKeys() int {
	s.Lock()
	defer s.Unlock()
	return len(s.keys) - len(s.fetched)
}

func (s *fakeSource) CountSendableKeys(time.Time) int {
	s.Lock()
	defer s.Unlock()
	return len(s.keys) - len(s.done)
}

func (s *fakeSource) IsCancelled() bool { return s.cancelled.Load() }

func (s *fakeSource) Schedule(bool) error { return nil }

func (s *fakeSource) Cancel() {}

func (s *fakeSource) preRegisterCalls() []bool {
	s.Lock()
	defer s.Unlock()
	return append([]bool(nil), s.preRegistered...)
}

// fakeTransport serves blocks from a map and records the order of requests.
// Requests block on hold, when set, until it is closed or they time out.
type fakeTransport struct {
	sync.Mutex

	blocks map[key.Key][]byte
	order  []key.Key
	hold   chan struct{}
}

func newFakeTransport(sources ...*fakeSource) *fakeTransport {
	t := &fakeTransport{blocks: make(map[key.Key][]byte)}
	for _, src := range sources {
		for i, k := range src.keys {
			t.blocks[k] = src.data[i]
		}
	}
	return t
}

func (t *fakeTransport) Fetch(ctx context.Context, k key.Key) ([]byte, error) {
	t.Lock()
	t.order = append(t.order, k)
	data, ok := t.blocks[k]
	hold := t.hold
	t.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, request.NewFailure(request.DataNotFound, nil)
	}
	return data, nil
}

func (t *fakeTransport) requested() []key.Key {
	t.Lock()
	defer t.Unlock()
	return append([]key.Key(nil), t.order...)
}
