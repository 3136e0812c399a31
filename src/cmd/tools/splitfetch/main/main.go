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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/segfetch/segfetch/src/cmd/tools/splitfetch/config"
	"github.com/segfetch/segfetch/src/cmd/tools/splitfetch/run"
	xconfig "github.com/segfetch/segfetch/src/x/config"
	"github.com/segfetch/segfetch/src/x/config/configflag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "splitfetch",
		Short: "Fetch segmented objects block by block",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var cfgOpts configflag.Options
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Publish generated content on a simulated network and fetch it back",
		Example: `./splitfetch run -f config.yml
./splitfetch run -f config.yml -d`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Configuration
			if err := cfgOpts.MainLoad(&cfg, xconfig.Options{}); err != nil {
				return fmt.Errorf("error loading config: %v", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			result, err := run.Run(ctx, run.Options{Config: cfg})
			fmt.Fprintf(cmd.OutOrStdout(), "%s: fetched %d/%d required blocks with %d requests\n",
				result.State, result.Progress.Fetched, result.Progress.Required, result.Requests)
			return err
		},
	}
	cfgOpts.RegisterFlagSet(cmd.Flags())
	return cmd
}
