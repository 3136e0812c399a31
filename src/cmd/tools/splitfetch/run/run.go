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

// Package run runs an object fetch over a simulated network.
package run

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/segfetch/segfetch/src/cmd/tools/splitfetch/config"
	"github.com/segfetch/segfetch/src/splitfetch/blockset"
	"github.com/segfetch/segfetch/src/splitfetch/object"
	"github.com/segfetch/segfetch/src/splitfetch/scheduler"
	"github.com/segfetch/segfetch/src/splitfetch/simnet"
	"github.com/segfetch/segfetch/src/x/instrument"
	"github.com/segfetch/segfetch/src/x/opentracing"
)

// Options are the options for running a fetch.
type Options struct {
	// Config is the tool configuration.
	Config config.Configuration

	// Logger overrides the logger built from the configuration.
	Logger *zap.Logger
}

// Result summarizes a finished fetch.
type Result struct {
	State    object.State
	Progress object.ProgressEvent
	Requests int64
}

// Run splits generated content, publishes its blocks on a simulated network
// and fetches it back. It returns once the fetch finishes or ctx is done,
// in which case the fetch is cancelled.
func Run(ctx context.Context, opts Options) (Result, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid config: %v", err)
	}

	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = cfg.Logging.BuildLogger()
		if err != nil {
			return Result{}, fmt.Errorf("unable to create logger: %v", err)
		}
	}
	defer logger.Sync() // nolint: errcheck

	scope, scopeCloser, err := cfg.Metrics.NewRootScope()
	if err != nil {
		return Result{}, fmt.Errorf("unable to create metrics scope: %v", err)
	}
	defer closeAndLog(logger, "metrics", scopeCloser)

	tracer, tracerCloser, err := cfg.Tracing.NewTracer(opentracing.DefaultServiceName, scope, logger)
	if err != nil {
		return Result{}, fmt.Errorf("unable to create tracer: %v", err)
	}
	defer closeAndLog(logger, "tracer", tracerCloser)

	iOpts := instrument.NewOptions().
		SetLogger(logger).
		SetMetricsScope(scope).
		SetTracer(tracer).
		SetReportInterval(cfg.Metrics.ReportInterval())

	content := cfg.Content.Generate()
	manifest, blocks, err := cfg.Content.Split(content)
	if err != nil {
		return Result{}, err
	}

	network, err := simnet.New(cfg.Simulation.NewOptions(iOpts))
	if err != nil {
		return Result{}, err
	}
	network.InsertAll(blocks)

	localStore, err := blockset.New(cfg.LocalStore.NewOptions(iOpts))
	if err != nil {
		return Result{}, err
	}
	numLocal := int(cfg.LocalStore.Fraction * float64(len(blocks)))
	for _, b := range blocks[:numLocal] {
		localStore.Add(b)
	}

	logger.Info("object published",
		zap.Stringer("root", manifest.Root),
		zap.Int64("size", manifest.Size),
		zap.Int("segments", len(manifest.Segments)),
		zap.Int("blocks", len(blocks)),
		zap.Int("localBlocks", numLocal))

	sched, err := scheduler.NewScheduler(network, cfg.Scheduler.NewOptions(iOpts).SetDatastore(localStore))
	if err != nil {
		return Result{}, err
	}
	if err := sched.Open(); err != nil {
		return Result{}, err
	}
	defer func() {
		if err := sched.Close(); err != nil {
			logger.Error("could not close scheduler", zap.Error(err))
		}
	}()

	f, err := object.NewFetch(manifest, sched, cfg.Fetch.NewOptions(cfg.NewSegmentOptions(), iOpts))
	if err != nil {
		return Result{}, err
	}
	f.AddListener(newProgressLogger(logger))
	if err := f.Start(); err != nil {
		return Result{}, err
	}

	select {
	case <-f.Done():
	case <-ctx.Done():
		logger.Info("interrupted, cancelling fetch")
		f.Cancel()
	}

	result := Result{
		State:    f.State(),
		Progress: f.Progress(),
	}
	for _, seg := range manifest.Segments {
		for _, k := range seg.Keys {
			result.Requests += int64(network.Requests(k))
		}
	}
	return result, f.Err()
}

// newProgressLogger logs progress each time another tenth of the required
// blocks is fetched.
func newProgressLogger(logger *zap.Logger) object.ProgressListener {
	lastDecile := atomic.NewInt64(-1)
	return func(ev object.ProgressEvent) {
		var decile int64
		if ev.Required > 0 {
			decile = int64(10 * ev.Fetched / ev.Required)
		}
		if lastDecile.Swap(decile) == decile && !ev.State.Terminal() {
			return
		}
		logger.Info("fetch progress",
			zap.Int("fetched", ev.Fetched),
			zap.Int("required", ev.Required),
			zap.Int("total", ev.Total),
			zap.Int("excluded", ev.Excluded),
			zap.Bool("goingToNetwork", ev.GoingToNetwork),
			zap.Stringer("state", ev.State))
	}
}

func closeAndLog(logger *zap.Logger, name string, closer io.Closer) {
	if err := closer.Close(); err != nil {
		logger.Error("could not close", zap.String("component", name), zap.Error(err))
	}
}
