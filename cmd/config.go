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
	"context"
	"os"
	"strings"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flag name -> config key. Only the flags present on the running command are bound.
var flagBindings = map[string]string{
	"rpc":           "rpc.url",
	"pkey":          "signingKey",
	"log-level":     "log.level",
	"metrics":       "metrics.enabled",
	"type":          "strategy",
	"method":        "strategy",
	"num":           "bench.transactions",
	"rate":          "bench.maxSubmissionsPerSecond",
	"report":        "bench.reportFile",
	"report-format": "bench.reportFormat",
	"log-file":      "log.file.filename",
}

var envBindings = map[string]string{
	"rpc.url":    "RPC_PROVIDER",
	"signingKey": "PRIVATE_KEY",
}

// loadConfig merges, highest precedence first: flags set on the command line, environment
// (including a .env file), the YAML config file, then flag defaults
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*conf.Config, error) {
	ctx := cmd.Context()
	v := viper.New()

	if opts.configFile != "" {
		v.SetConfigFile(opts.configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgConfigFileInvalid, opts.configFile)
		}
	}

	loadDotEnv(ctx, opts.dotEnvFile)
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	for flagName, key := range flagBindings {
		if f := cmd.Flags().Lookup(flagName); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	cfg := &conf.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgConfigFileInvalid, opts.configFile)
	}
	cfg.RPC.URL = strings.TrimSpace(cfg.RPC.URL)
	return cfg, nil
}

// loadDotEnv copies variables from the file into the environment, without overriding
// any that are already set
func loadDotEnv(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	dv := viper.New()
	dv.SetConfigFile(path)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		log.L(ctx).Warnf("Ignoring unreadable %s: %s", path, err)
		return
	}
	for _, key := range dv.AllKeys() {
		envName := strings.ToUpper(key)
		if os.Getenv(envName) == "" {
			_ = os.Setenv(envName, dv.GetString(key))
		}
	}
}
