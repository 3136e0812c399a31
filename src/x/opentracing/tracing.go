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

// Package opentracing builds the tracer used to trace block requests.
package opentracing

import (
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerzap "github.com/uber/jaeger-client-go/log/zap"
	jaegertally "github.com/uber/jaeger-lib/metrics/tally"
	"go.uber.org/zap"
)

// TracingBackendJaeger is the only supported tracing backend.
const TracingBackendJaeger = "jaeger"

// DefaultServiceName is the service name reported when none is configured.
const DefaultServiceName = "splitfetch"

// TracingConfiguration configures the tracing backend. Tracing is disabled
// if no backend is set.
type TracingConfiguration struct {
	Backend string                  `yaml:"backend"`
	Jaeger  jaegercfg.Configuration `yaml:"jaeger"`
}

// Validate validates the configuration.
func (cfg TracingConfiguration) Validate() error {
	if cfg.Backend != "" && cfg.Backend != TracingBackendJaeger {
		return fmt.Errorf("unknown tracing backend: %s, supported backends are: %s",
			cfg.Backend, TracingBackendJaeger)
	}
	return nil
}

// NewTracer returns the configured tracer and a closer flushing it. With no
// backend set it returns a no-op tracer.
func (cfg TracingConfiguration) NewTracer(
	defaultServiceName string,
	scope tally.Scope,
	logger *zap.Logger,
) (opentracing.Tracer, io.Closer, error) {
	if cfg.Backend == "" {
		return opentracing.NoopTracer{}, noopCloser{}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	jaeger := cfg.Jaeger
	if jaeger.ServiceName == "" {
		jaeger.ServiceName = defaultServiceName
	}
	if jaeger.ServiceName == "" {
		jaeger.ServiceName = DefaultServiceName
	}

	tracer, closer, err := jaeger.NewTracer(
		jaegercfg.Logger(jaegerzap.NewLogger(logger)),
		jaegercfg.Metrics(jaegertally.Wrap(scope.SubScope("tracing"))))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize jaeger: %v", err)
	}
	return tracer, closer, nil
}

type noopCloser struct{}

func (noopCloser) Close() error {
	return nil
}
