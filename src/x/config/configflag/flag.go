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

// Package configflag wires configuration file flags into commands.
package configflag

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/segfetch/segfetch/src/x/config"
)

var errNoConfigFiles = errors.New("-f is required (no config files provided)")

// Validator is implemented by configurations with checks beyond their
// validate tags.
type Validator interface {
	Validate() error
}

// Options holds the values of the config flags of a command.
type Options struct {
	// ConfigFiles (-f) are loaded in order, later files overriding earlier
	// ones.
	ConfigFiles []string

	// DumpAndExit (-d) prints the loaded configuration and exits.
	DumpAndExit bool

	osFns osIface
}

// RegisterFlagSet registers the config flags on flags.
func (opts *Options) RegisterFlagSet(flags *pflag.FlagSet) {
	flags.StringSliceVarP(&opts.ConfigFiles, "config", "f", nil, "Configuration files to load")
	flags.BoolVarP(&opts.DumpAndExit, "dump", "d", false, "Dump configuration and exit")
}

// MainLoad loads the config files into target and validates it, calling
// Validate when target implements Validator. With -d set it then dumps the
// configuration and exits.
func (opts *Options) MainLoad(target interface{}, loadOpts config.Options) error {
	if len(opts.ConfigFiles) == 0 {
		return errNoConfigFiles
	}
	if err := config.LoadFiles(target, opts.ConfigFiles, loadOpts); err != nil {
		return fmt.Errorf("unable to load config from %v: %v", opts.ConfigFiles, err)
	}
	if v, ok := target.(Validator); ok && !loadOpts.DisableValidate {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid config: %v", err)
		}
	}

	if !opts.DumpAndExit {
		return nil
	}
	osFns := opts.osFns
	if osFns == nil {
		osFns = realOS{}
	}
	if err := config.Dump(target, osFns.Stdout()); err != nil {
		return fmt.Errorf("failed to dump config: %v", err)
	}
	osFns.Exit(0)
	return nil
}

type osIface interface {
	Exit(status int)
	Stdout() io.Writer
}

type realOS struct{}

func (realOS) Exit(status int) {
	os.Exit(status)
}

func (realOS) Stdout() io.Writer {
	return os.Stdout
}
