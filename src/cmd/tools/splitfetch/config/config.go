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

// Package config holds the configuration of the splitfetch tool.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/c2h5oh/datasize"

	"github.com/segfetch/segfetch/src/splitfetch/blockset"
	"github.com/segfetch/segfetch/src/splitfetch/object"
	"github.com/segfetch/segfetch/src/splitfetch/request"
	"github.com/segfetch/segfetch/src/splitfetch/scheduler"
	"github.com/segfetch/segfetch/src/splitfetch/segment"
	"github.com/segfetch/segfetch/src/splitfetch/simnet"
	"github.com/segfetch/segfetch/src/x/instrument"
	xlog "github.com/segfetch/segfetch/src/x/log"
	"github.com/segfetch/segfetch/src/x/opentracing"
	"github.com/segfetch/segfetch/src/x/rand"
	"github.com/segfetch/segfetch/src/x/retry"
	xsync "github.com/segfetch/segfetch/src/x/sync"
)

const (
	defaultContentSize   = 4 * datasize.MB
	defaultBlockSize     = 32 * datasize.KB
	defaultSegmentBlocks = 128
	defaultCheckBlocks   = 8
	defaultMaxRetries    = 10
)

var (
	errBlockSizeTooLarge = errors.New("block size larger than content size")
	errInvalidPriority   = errors.New("invalid fetch priority")
)

// Configuration is the configuration of the splitfetch tool.
type Configuration struct {
	// Logging configuration.
	Logging xlog.Configuration `yaml:"logging"`

	// Metrics configuration.
	Metrics instrument.MetricsConfiguration `yaml:"metrics"`

	// Tracing configuration.
	Tracing opentracing.TracingConfiguration `yaml:"tracing"`

	// Scheduler configuration.
	Scheduler SchedulerConfiguration `yaml:"scheduler"`

	// Fetch configuration.
	Fetch FetchConfiguration `yaml:"fetch"`

	// Retry configures block cooldowns after transient failures.
	Retry retry.Configuration `yaml:"retry"`

	// Simulation configures the simulated network blocks are fetched from.
	Simulation simnet.Configuration `yaml:"simulation"`

	// Content configures the object that is split and fetched.
	Content ContentConfiguration `yaml:"content"`

	// LocalStore configures the local block store checked before requests
	// go to the network.
	LocalStore LocalStoreConfiguration `yaml:"localStore"`
}

// Validate validates the parts of the configuration validator tags cannot.
func (c Configuration) Validate() error {
	if err := c.Tracing.Validate(); err != nil {
		return err
	}
	if err := c.Fetch.Validate(); err != nil {
		return err
	}
	return c.Content.Validate()
}

// SchedulerConfiguration configures the request scheduler.
type SchedulerConfiguration struct {
	// WorkerPoolSize is the number of concurrent requests.
	WorkerPoolSize int `yaml:"workerPoolSize" validate:"min=0"`

	// MaxInFlight caps outstanding requests, defaults to the pool size.
	MaxInFlight int `yaml:"maxInFlight" validate:"min=0"`

	// PollInterval is the longest the scheduler sleeps between polls.
	PollInterval time.Duration `yaml:"pollInterval"`

	// FetchTimeout bounds a single block request.
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
}

// NewOptions returns the scheduler options for the configuration.
func (c SchedulerConfiguration) NewOptions(iOpts instrument.Options) scheduler.Options {
	opts := scheduler.NewOptions().SetInstrumentOptions(iOpts)
	if c.WorkerPoolSize > 0 {
		pool := xsync.NewWorkerPool(c.WorkerPoolSize)
		pool.Init()
		opts = opts.SetWorkerPool(pool).SetMaxInFlight(c.WorkerPoolSize)
	}
	if c.MaxInFlight > 0 {
		opts = opts.SetMaxInFlight(c.MaxInFlight)
	}
	if c.PollInterval > 0 {
		opts = opts.SetPollInterval(c.PollInterval)
	}
	if c.FetchTimeout > 0 {
		opts = opts.SetFetchTimeout(c.FetchTimeout)
	}
	return opts
}

// FetchConfiguration configures the object fetch.
type FetchConfiguration struct {
	// Priority is the priority class of the fetch.
	Priority *request.Priority `yaml:"priority"`

	// MaxRetries is the number of failures after which a block is given
	// up on, negative means never. A block is always requested once.
	MaxRetries *int `yaml:"maxRetries"`

	// LocalOnly restricts the fetch to the local store.
	LocalOnly bool `yaml:"localOnly"`
}

// Validate validates the fetch configuration.
func (c FetchConfiguration) Validate() error {
	if c.Priority != nil && !c.Priority.Valid() {
		return errInvalidPriority
	}
	return nil
}

// NewOptions returns the fetch options for the configuration.
func (c FetchConfiguration) NewOptions(
	segOpts segment.Options,
	iOpts instrument.Options,
) object.Options {
	priority := request.BulkSplitfilePriority
	if c.Priority != nil {
		priority = *c.Priority
	}
	maxRetries := defaultMaxRetries
	if c.MaxRetries != nil {
		maxRetries = *c.MaxRetries
	}
	return object.NewOptions().
		SetInstrumentOptions(iOpts).
		SetSegmentOptions(segOpts).
		SetPriority(priority).
		SetMaxRetries(maxRetries).
		SetLocalRequestOnly(c.LocalOnly)
}

// ContentConfiguration configures the generated object.
type ContentConfiguration struct {
	// Size is the size of the object.
	Size datasize.ByteSize `yaml:"size"`

	// BlockSize is the size of every block.
	BlockSize datasize.ByteSize `yaml:"blockSize"`

	// SegmentBlocks is the number of data blocks per segment.
	SegmentBlocks int `yaml:"segmentBlocks" validate:"min=0"`

	// CheckBlocks is the number of check blocks per segment.
	CheckBlocks *int `yaml:"checkBlocks"`

	// Seed seeds the generated content, time seeded if unset.
	Seed *uint64 `yaml:"seed"`
}

// Validate validates the content configuration.
func (c ContentConfiguration) Validate() error {
	if c.BlockSizeOrDefault() > c.SizeOrDefault() {
		return errBlockSizeTooLarge
	}
	if c.CheckBlocks != nil && *c.CheckBlocks < 0 {
		return fmt.Errorf("invalid check blocks: %d", *c.CheckBlocks)
	}
	return nil
}

// SizeOrDefault returns the configured object size or the default.
func (c ContentConfiguration) SizeOrDefault() datasize.ByteSize {
	if c.Size > 0 {
		return c.Size
	}
	return defaultContentSize
}

// BlockSizeOrDefault returns the configured block size or the default.
func (c ContentConfiguration) BlockSizeOrDefault() datasize.ByteSize {
	if c.BlockSize > 0 {
		return c.BlockSize
	}
	return defaultBlockSize
}

// SegmentBlocksOrDefault returns the configured data blocks per segment or
// the default.
func (c ContentConfiguration) SegmentBlocksOrDefault() int {
	if c.SegmentBlocks > 0 {
		return c.SegmentBlocks
	}
	return defaultSegmentBlocks
}

// CheckBlocksOrDefault returns the configured check blocks per segment or
// the default.
func (c ContentConfiguration) CheckBlocksOrDefault() int {
	if c.CheckBlocks != nil {
		return *c.CheckBlocks
	}
	return defaultCheckBlocks
}

// Generate returns pseudo random content of the configured size.
func (c ContentConfiguration) Generate() []byte {
	rng := rand.NewTimeSeededSource()
	if c.Seed != nil {
		rng = rand.NewSource(*c.Seed)
	}
	data := make([]byte, int(c.SizeOrDefault().Bytes()))
	for i := range data {
		data[i] = byte(rng.Intn(256))
	}
	return data
}

// Split splits generated content into blocks.
func (c ContentConfiguration) Split(data []byte) (object.Manifest, [][]byte, error) {
	return object.SplitContent(data,
		int(c.BlockSizeOrDefault().Bytes()),
		c.SegmentBlocksOrDefault(),
		c.CheckBlocksOrDefault())
}

// LocalStoreConfiguration configures the local block store.
type LocalStoreConfiguration struct {
	// Fraction of the object's blocks present locally before the fetch.
	Fraction float64 `yaml:"fraction" validate:"min=0,max=1"`

	// ExpectedBlocks sizes the bloom filter of the store.
	ExpectedBlocks uint `yaml:"expectedBlocks"`

	// FalsePositiveRate is the bloom filter false positive rate.
	FalsePositiveRate float64 `yaml:"falsePositiveRate" validate:"min=0,max=1"`
}

// NewOptions returns the block set options for the configuration.
func (c LocalStoreConfiguration) NewOptions(iOpts instrument.Options) blockset.Options {
	opts := blockset.NewOptions().SetInstrumentOptions(iOpts)
	if c.ExpectedBlocks > 0 {
		opts = opts.SetExpectedBlocks(c.ExpectedBlocks)
	}
	if c.FalsePositiveRate > 0 {
		opts = opts.SetFalsePositiveRate(c.FalsePositiveRate)
	}
	return opts
}

// NewSegmentOptions returns the segment options for the retry configuration.
func (c Configuration) NewSegmentOptions() segment.Options {
	return segment.NewOptions().SetRetryOptions(c.Retry.NewOptions())
}
