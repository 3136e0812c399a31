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
	"sync"
	"time"

	"github.com/willf/bitset"
	"go.uber.org/atomic"

	xerrors "github.com/segfetch/segfetch/src/x/errors"
	"github.com/segfetch/segfetch/src/x/rand"
	"github.com/segfetch/segfetch/src/x/retry"
)

// Storage holds the fetch state of the blocks of one segment: fetched,
// excluded after exhausting retries, and per-block failure counts and
// cooldowns. Only the fetched bitmap is persisted, failure counts and
// cooldowns live in memory.
type Storage struct {
	sync.RWMutex

	id           SegmentID
	numBlocks    int
	fetched      *bitset.BitSet
	excluded     *bitset.BitSet
	tries        []int
	cooldowns    []time.Time
	checkedStore *atomic.Bool

	persister Persister
	retryOpts retry.Options
	rng       rand.Source
}

// NewStorage creates the storage of a segment of numBlocks blocks, restoring
// the fetched bitmap from the persister when one was stored.
func NewStorage(id SegmentID, numBlocks int, opts Options) (*Storage, error) {
	if numBlocks <= 0 {
		return nil, xerrors.NewInvalidParamsError(
			fmt.Errorf("segment %s must have at least one block", id))
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	persister := opts.Persister()
	fetched, err := persister.Load(id)
	switch err {
	case nil:
	case ErrSegmentNotPersisted:
		fetched = bitset.New(uint(numBlocks))
	default:
		return nil, xerrors.Wrapf(err, "loading segment %s", id)
	}

	return &Storage{
		id:           id,
		numBlocks:    numBlocks,
		fetched:      fetched,
		excluded:     bitset.New(uint(numBlocks)),
		tries:        make([]int, numBlocks),
		cooldowns:    make([]time.Time, numBlocks),
		checkedStore: atomic.NewBool(false),
		persister:    persister,
		retryOpts:    opts.RetryOptions(),
		rng:          opts.RandSource(),
	}, nil
}

// Segment returns the identity of the segment.
func (s *Storage) Segment() SegmentID {
	return s.id
}

// NumBlocks returns the number of blocks in the segment.
func (s *Storage) NumBlocks() int {
	return s.numBlocks
}

func (s *Storage) checkBlock(block int) error {
	if block < 0 || block >= s.numBlocks {
		return xerrors.NewInvalidParamsError(
			fmt.Errorf("block %d not in segment %s of %d blocks", block, s.id, s.numBlocks))
	}
	return nil
}

// sendableWithRLock returns whether a block may be requested at now. Blocks
// that ran out of retries are already excluded.
func (s *Storage) sendableWithRLock(block int, now time.Time) bool {
	b := uint(block)
	if s.fetched.Test(b) || s.excluded.Test(b) {
		return false
	}
	return !s.cooldowns[block].After(now)
}

// ChooseRandomKey picks a block that may be requested at now uniformly at
// random. It does not modify any block state.
func (s *Storage) ChooseRandomKey(now time.Time) (int, bool) {
	s.RLock()
	candidates := make([]int, 0, s.numBlocks)
	for i := 0; i < s.numBlocks; i++ {
		if s.sendableWithRLock(i, now) {
			candidates = append(candidates, i)
		}
	}
	s.RUnlock()

	if len(candidates) == 0 {
		return -1, false
	}
	return candidates[s.rng.Intn(len(candidates))], true
}

// OnFailure records a transient failure of a block and returns when it may
// next be requested. The cooldown never moves backwards. Once the number of
// failures reaches maxRetries the block is excluded, Never is returned and
// excluded is true. A maxRetries of zero still allows the first attempt and
// a negative one never excludes. Failures of blocks already fetched or
// excluded are ignored and return Never with excluded false.
func (s *Storage) OnFailure(
	block int,
	now time.Time,
	maxRetries int,
) (wakeup time.Time, excluded bool, err error) {
	if err := s.checkBlock(block); err != nil {
		return Never, false, err
	}

	s.Lock()
	defer s.Unlock()

	b := uint(block)
	if s.fetched.Test(b) || s.excluded.Test(b) {
		return Never, false, nil
	}

	s.tries[block]++
	if maxRetries >= 0 && s.tries[block] >= maxRetries {
		s.excluded.Set(b)
		s.cooldowns[block] = Never
		return Never, true, nil
	}

	wakeup = now.Add(retry.Backoff(s.tries[block], s.retryOpts))
	if prev := s.cooldowns[block]; prev.After(wakeup) {
		wakeup = prev
	}
	s.cooldowns[block] = wakeup
	return wakeup, false, nil
}

// OnSuccess marks a block as fetched and persists the fetched bitmap. It
// returns false if the block was already fetched. The in-memory state is
// updated even if persisting fails.
func (s *Storage) OnSuccess(block int) (bool, error) {
	if err := s.checkBlock(block); err != nil {
		return false, err
	}

	s.Lock()
	b := uint(block)
	if s.fetched.Test(b) {
		s.Unlock()
		return false, nil
	}
	s.fetched.Set(b)
	s.excluded.Clear(b)
	s.tries[block] = 0
	s.cooldowns[block] = time.Time{}
	snapshot := s.fetched.Clone()
	s.Unlock()

	if err := s.persister.Store(s.id, snapshot); err != nil {
		return true, xerrors.Wrapf(err, "persisting segment %s", s.id)
	}
	return true, nil
}

// OnCorruption marks a previously fetched block as missing again after its
// data was found to be corrupt locally. The datastore must be checked again
// since the block may still be present there.
func (s *Storage) OnCorruption(block int) error {
	if err := s.checkBlock(block); err != nil {
		return err
	}

	s.Lock()
	b := uint(block)
	s.fetched.Clear(b)
	s.excluded.Clear(b)
	s.tries[block] = 0
	s.cooldowns[block] = time.Time{}
	snapshot := s.fetched.Clone()
	s.Unlock()

	s.checkedStore.Store(false)
	if err := s.persister.Store(s.id, snapshot); err != nil {
		return xerrors.Wrapf(err, "persisting segment %s", s.id)
	}
	return nil
}

// CooldownTime returns when a block may next be requested, the zero time if
// it is not cooling down and Never if it is excluded.
func (s *Storage) CooldownTime(block int) time.Time {
	if block < 0 || block >= s.numBlocks {
		return time.Time{}
	}
	s.RLock()
	t := s.cooldowns[block]
	s.RUnlock()
	return t
}

// OverallCooldownTime returns the earliest cooldown across blocks that are
// neither fetched nor excluded, or Never if there are none.
func (s *Storage) OverallCooldownTime() time.Time {
	s.RLock()
	defer s.RUnlock()

	earliest := Never
	for i := 0; i < s.numBlocks; i++ {
		b := uint(i)
		if s.fetched.Test(b) || s.excluded.Test(b) {
			continue
		}
		if s.cooldowns[i].Before(earliest) {
			earliest = s.cooldowns[i]
		}
	}
	return earliest
}

// CountUnfetchedKeys returns the number of blocks not yet fetched, excluded
// blocks included.
func (s *Storage) CountUnfetchedKeys() int {
	s.RLock()
	n := s.numBlocks - int(s.fetched.Count())
	s.RUnlock()
	return n
}

// CountFetchedKeys returns the number of fetched blocks.
func (s *Storage) CountFetchedKeys() int {
	s.RLock()
	n := int(s.fetched.Count())
	s.RUnlock()
	return n
}

// CountExcludedKeys returns the number of blocks excluded after exhausting
// their retries.
func (s *Storage) CountExcludedKeys() int {
	s.RLock()
	n := int(s.excluded.Count())
	s.RUnlock()
	return n
}

// CountSendableKeys returns the number of blocks that may be requested at now.
func (s *Storage) CountSendableKeys(now time.Time) int {
	s.RLock()
	defer s.RUnlock()

	n := 0
	for i := 0; i < s.numBlocks; i++ {
		if s.sendableWithRLock(i, now) {
			n++
		}
	}
	return n
}

// Tries returns the number of failures recorded for a block.
func (s *Storage) Tries(block int) int {
	if block < 0 || block >= s.numBlocks {
		return 0
	}
	s.RLock()
	n := s.tries[block]
	s.RUnlock()
	return n
}

// IsFetched returns whether a block is fetched.
func (s *Storage) IsFetched(block int) bool {
	s.RLock()
	v := s.fetched.Test(uint(block))
	s.RUnlock()
	return v
}

// IsExcluded returns whether a block is excluded.
func (s *Storage) IsExcluded(block int) bool {
	s.RLock()
	v := s.excluded.Test(uint(block))
	s.RUnlock()
	return v
}

// HasCheckedStore returns whether the local datastore was checked for the
// blocks of this segment.
func (s *Storage) HasCheckedStore() bool {
	return s.checkedStore.Load()
}

// SetHasCheckedStore marks the datastore as checked and returns the
// previous value.
func (s *Storage) SetHasCheckedStore() bool {
	return !s.checkedStore.CAS(false, true)
}
