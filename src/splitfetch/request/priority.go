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

package request

import "fmt"

// Priority is the priority class of a request, lower values are served
// first.
type Priority int16

const (
	// MaximumPriority is reserved for requests the node itself depends on.
	MaximumPriority Priority = iota
	// InteractivePriority is for requests a user is waiting on.
	InteractivePriority
	// ImmediateSplitfilePriority is for splitfiles a user is waiting on.
	ImmediateSplitfilePriority
	// UpdatePriority is for update checks.
	UpdatePriority
	// BulkSplitfilePriority is for background downloads.
	BulkSplitfilePriority
	// PrefetchPriority is for speculative fetches.
	PrefetchPriority
	// PausedPriority requests are never dispatched.
	PausedPriority

	// NumPriorities is the number of priority classes.
	NumPriorities = int(PausedPriority) + 1
)

// Valid returns whether the priority is a known class.
func (p Priority) Valid() bool {
	return p >= MaximumPriority && p <= PausedPriority
}

func (p Priority) String() string {
	switch p {
	case MaximumPriority:
		return "maximum"
	case InteractivePriority:
		return "interactive"
	case ImmediateSplitfilePriority:
		return "immediate-splitfile"
	case UpdatePriority:
		return "update"
	case BulkSplitfilePriority:
		return "bulk-splitfile"
	case PrefetchPriority:
		return "prefetch"
	case PausedPriority:
		return "paused"
	default:
		return fmt.Sprintf("unknown(%d)", int16(p))
	}
}

// ParsePriority parses a priority class name.
func ParsePriority(s string) (Priority, error) {
	for p := MaximumPriority; p <= PausedPriority; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown priority class: %q", s)
}

// UnmarshalYAML parses the priority from its name.
func (p *Priority) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML returns the priority name.
func (p Priority) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}
