// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	dotEnvFile string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{dotEnvFile: ".env"}
	cmd := &cobra.Command{
		Use:           "tx-latency",
		Short:         "Measure transaction submission and confirmation latency against an EVM JSON-RPC endpoint",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")
	pf.StringP("rpc", "r", "", "JSON-RPC endpoint URL (env RPC_PROVIDER)")
	pf.StringP("pkey", "p", "", "hex private key of the sending account (env PRIVATE_KEY)")
	pf.String("log-level", "", "log level (error|warn|info|debug|trace)")
	pf.Bool("metrics", false, "serve prometheus metrics while running")

	cmd.AddCommand(newBenchCommand(opts))
	cmd.AddCommand(newSnakeCommand(opts))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
