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
	"os/signal"
	"syscall"

	"github.com/SmoothBot/tx-latency-bench/internal/bench"
	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/metricsserver"
	"github.com/SmoothBot/tx-latency-bench/internal/session"
	"github.com/SmoothBot/tx-latency-bench/internal/txengine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newBenchCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Send transactions one at a time and report send, confirm and total latency",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			log.InitConfig(&cfg.Log, log.ModeConsole)
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runBench(ctx, cmd, cfg)
		},
	}
	f := cmd.Flags()
	f.StringP("type", "t", "", "submission method: async, rise or mega (rise is picked automatically for RISE endpoints)")
	f.IntP("num", "n", *conf.Defaults.Bench.Transactions, "number of transactions to send")
	f.Int("rate", 0, "maximum submissions per second (0 is unlimited)")
	f.String("report", "", "write the results to this file")
	f.String("report-format", *conf.Defaults.Bench.ReportFormat, "report file format: json or yaml")
	return cmd
}

func startMetrics(ctx context.Context, cfg *conf.Config) (*txengine.Metrics, metricsserver.MetricsServer, error) {
	registry := prometheus.NewRegistry()
	metrics := txengine.NewMetrics(registry)
	ms, err := metricsserver.NewMetricsServer(ctx, registry, &cfg.Metrics)
	if err == nil {
		err = ms.Start()
	}
	if err != nil {
		return nil, nil, err
	}
	return metrics, ms, nil
}

func runBench(ctx context.Context, cmd *cobra.Command, cfg *conf.Config) error {
	metrics, ms, err := startMetrics(ctx, cfg)
	if err != nil {
		return err
	}
	defer ms.Stop()

	sess, err := session.Connect(ctx, cfg, txengine.BenchmarkFeePolicy(&cfg.Fees))
	if err != nil {
		return err
	}
	sess.WriteBanner(ctx, cmd.OutOrStdout())

	runner, err := bench.New(ctx, cfg, sess, metrics, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	_, err = runner.Run(ctx)
	return err
}
