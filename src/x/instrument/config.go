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

package instrument

import (
	"errors"
	"io"
	"time"

	"github.com/uber-go/tally"
)

var errNegativeSampleRate = errors.New("metrics sample rate must be between 0 and 1")

// MetricsConfiguration configures options for emitting metrics.
type MetricsConfiguration struct {
	// Prefix is prepended to every metric name.
	Prefix string `yaml:"prefix"`

	// Tags added to every metric.
	Tags map[string]string `yaml:"tags"`

	// ReportingInterval is the interval at which buffered metrics are flushed.
	ReportingInterval time.Duration `yaml:"reportingInterval"`

	// SamplingRate is the sampling rate applied to timers.
	SamplingRate float64 `yaml:"samplingRate" validate:"min=0.0,max=1.0"`
}

// NewRootScope creates a new root tally.Scope from the config. Metrics are
// only aggregated in memory since no reporter is attached.
func (mc *MetricsConfiguration) NewRootScope() (tally.Scope, io.Closer, error) {
	return mc.NewRootScopeAndReporter(tally.NullStatsReporter)
}

// NewRootScopeAndReporter creates a new root scope emitting to the given
// reporter.
func (mc *MetricsConfiguration) NewRootScopeAndReporter(
	reporter tally.StatsReporter,
) (tally.Scope, io.Closer, error) {
	if mc.SamplingRate < 0 || mc.SamplingRate > 1 {
		return nil, nil, errNegativeSampleRate
	}
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   mc.Prefix,
		Tags:     mc.Tags,
		Reporter: reporter,
	}, mc.ReportInterval())
	return scope, closer, nil
}

// SampleRate returns the metrics sampling rate.
func (mc *MetricsConfiguration) SampleRate() float64 {
	if mc.SamplingRate > 0.0 && mc.SamplingRate <= 1.0 {
		return mc.SamplingRate
	}
	return 1.0
}

// ReportInterval returns the metrics reporting interval.
func (mc *MetricsConfiguration) ReportInterval() time.Duration {
	if mc.ReportingInterval > 0 {
		return mc.ReportingInterval
	}
	return defaultReportInterval
}
