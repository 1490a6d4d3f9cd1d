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
	"os/signal"
	"syscall"

	"github.com/SmoothBot/tx-latency-bench/internal/demo"
	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/session"
	"github.com/SmoothBot/tx-latency-bench/internal/txengine"
	"github.com/spf13/cobra"
)

func newSnakeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snake",
		Short: "Play snake where every move is a transaction, applied when it confirms",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			log.InitConfig(&cfg.Log, log.ModeInteractive)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			log.L(ctx).Infof("Starting onchain snake game")

			metrics, ms, err := startMetrics(ctx, cfg)
			if err != nil {
				return err
			}
			defer ms.Stop()

			sess, err := session.Connect(ctx, cfg, txengine.DemoFeePolicy(&cfg.Fees))
			if err != nil {
				return err
			}
			sess.WriteBanner(ctx, log.Output())

			terminal, err := demo.OpenTerminal(ctx)
			if err != nil {
				return err
			}
			defer terminal.Close()

			keys := make(chan demo.Key, 16)
			go demo.ReadKeys(ctx, os.Stdin, keys)

			controller := demo.NewController(ctx, cfg, sess, metrics, nil)
			err = demo.Run(ctx, controller, keys, os.Stdout, demo.DefaultFrameInterval)
			controller.Wait()
			return err
		},
	}
	f := cmd.Flags()
	f.StringP("method", "m", "", "submission method: async, rise or mega (rise is picked automatically for RISE endpoints)")
	f.String("log-file", "debug.log", "file that receives the logs while the game is running")
	return cmd
}
