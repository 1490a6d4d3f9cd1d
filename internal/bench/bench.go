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

package bench

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/confutil"
	"github.com/SmoothBot/tx-latency-bench/internal/latency"
	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/SmoothBot/tx-latency-bench/internal/session"
	"github.com/SmoothBot/tx-latency-bench/internal/txengine"
	"github.com/SmoothBot/tx-latency-bench/pkg/ethclient"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/time/rate"
)

// StatusError marks a sample whose submission never reached the ledger
const StatusError txengine.Status = "error"

type Result struct {
	RunID   string
	Samples []latency.Sample
	Summary latency.Summary
	Elapsed time.Duration
}

// Runner sends transactions one at a time, waiting for each to settle before sending the next
type Runner struct {
	cfg          *conf.BenchConfig
	sess         *session.Session
	submitter    *txengine.Submitter[struct{}]
	rateLimiter  *rate.Limiter
	transactions int
	reportFormat string
	out          io.Writer
}

func New(ctx context.Context, cfg *conf.Config, sess *session.Session, metrics *txengine.Metrics, out io.Writer) (*Runner, error) {
	if cfg.Bench.Transactions != nil && *cfg.Bench.Transactions < 1 {
		return nil, i18n.NewError(ctx, msgs.MsgNoTransactionsRequested)
	}
	r := &Runner{
		cfg:          &cfg.Bench,
		sess:         sess,
		transactions: confutil.IntMin(cfg.Bench.Transactions, 1, *conf.Defaults.Bench.Transactions),
		out:          out,
	}
	format, err := latency.ParseFormat(ctx, confutil.StringNotEmpty(cfg.Bench.ReportFormat, *conf.Defaults.Bench.ReportFormat))
	if err != nil {
		return nil, err
	}
	r.reportFormat = format
	if maxPerSecond := confutil.IntMin(cfg.Bench.MaxSubmissionsPerSecond, 0, *conf.Defaults.Bench.MaxSubmissionsPerSecond); maxPerSecond > 0 {
		r.rateLimiter = rate.NewLimiter(rate.Limit(maxPerSecond), 1)
		log.L(ctx).Infof("Sending rate limited to %d per second", maxPerSecond)
	}

	// every outcome is collected from its handle, so there is no ledger
	poller := txengine.NewReceiptPoller(sess.Client, &cfg.Poller)
	r.submitter = txengine.NewSubmitter[struct{}](ctx, sess.Client, sess.Signer, poller, nil, metrics, sess.SubmitterOptions())
	return r, nil
}

// Run executes the whole batch. An error on one transaction is reported and the batch continues,
// only cancellation of the context ends the run early.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:   uuid.New().String(),
		Samples: make([]latency.Sample, 0, r.transactions),
	}
	ctx = log.WithLogField(ctx, "run", res.RunID)
	log.L(ctx).Infof("Starting run %s (%d transactions, method=%s)", res.RunID, r.transactions, r.submitter.Strategy())

	fmt.Fprintf(r.out, "\nSending %d transactions sequentially, waiting for confirmation after each...\n", r.transactions)
	batchStart := time.Now()
	for i := 1; i <= r.transactions; i++ {
		if ctx.Err() != nil {
			return nil, i18n.NewError(ctx, msgs.MsgSubmitterStopped)
		}
		if r.rateLimiter != nil {
			if err := r.rateLimiter.Wait(ctx); err != nil {
				return nil, i18n.WrapError(ctx, err, msgs.MsgSubmitterStopped)
			}
		}
		sample, err := r.runOne(ctx, i)
		if err != nil {
			return nil, err
		}
		res.Samples = append(res.Samples, *sample)
	}
	res.Elapsed = time.Since(batchStart)
	res.Summary = latency.Summarize(res.Samples)

	latency.WriteReport(r.out, res.Samples, res.Summary, res.Elapsed)
	if r.cfg.ReportFile != nil && *r.cfg.ReportFile != "" {
		report := latency.NewReport(res.Samples, res.Summary, res.Elapsed)
		report.RunID = res.RunID
		report.Strategy = string(r.submitter.Strategy())
		report.RPCURL = r.sess.Client.URL()
		report.ChainID = r.sess.Client.ChainID()
		report.StartTime = batchStart
		if err := report.Export(ctx, *r.cfg.ReportFile, r.reportFormat); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (r *Runner) runOne(ctx context.Context, index int) (*latency.Sample, error) {
	nonce := r.sess.Nonces.Next()
	sample := &latency.Sample{Index: index, Nonce: nonce}
	fmt.Fprintf(r.out, "\n--- Transaction #%d (nonce: %d) ---\n", index, nonce)
	defer fmt.Fprintf(r.out, "--- End Transaction #%d ---\n", index)

	strategy := r.submitter.Strategy()
	if strategy.Synchronous() {
		fmt.Fprintf(r.out, "Sending TX #%d with %s...\n", index, strategy.Method())
	}
	handle, err := r.submitter.Submit(ctx, &txengine.Operation{Nonce: nonce}, nil)
	if err != nil {
		fmt.Fprintf(r.out, "TX #%d: error: %s\n", index, err)
		sample.Status = StatusError
		sample.Reason = string(ethclient.MapError(err))
		return sample, nil
	}
	sample.Hash = handle.Hash
	if !strategy.Synchronous() {
		fmt.Fprintf(r.out, "TX #%d: sent in %dms, hash: %s\n", index, handle.SendTime.Milliseconds(), handle.Hash)
	}

	outcome, err := handle.Wait(ctx)
	if err != nil {
		return nil, err
	}
	sample.Status = outcome.Status
	sample.Reason = string(outcome.Reason)
	sample.Send = handle.SendTime
	sample.Confirm = outcome.ConfirmTime
	sample.Total = handle.TotalTime()

	if receipt := outcome.Receipt; receipt != nil {
		status := "FAILED"
		if receipt.Success() {
			status = "SUCCESS"
		} else if receipt.Status == nil {
			status = "UNKNOWN"
		}
		fmt.Fprintf(r.out, "Transaction Hash: %s\n", handle.Hash)
		fmt.Fprintf(r.out, "Transaction Status: %s\n", status)
		fmt.Fprintf(r.out, "Included in block: %d (gas used: %d)\n", receipt.BlockNumberUint64(), receipt.GasUsedUint64())
	} else if outcome.Err != nil {
		fmt.Fprintf(r.out, "TX #%d: %s: %s\n", index, outcome.Status, outcome.Err)
	}
	if strategy.Synchronous() {
		fmt.Fprintf(r.out, "TX #%d: total time: %s (send: %s)\n", index, sample.Total, sample.Send)
	} else {
		fmt.Fprintf(r.out, "TX #%d: total time: %s (send: %s, confirm: %s)\n", index, sample.Total, sample.Send, sample.Confirm)
	}
	return sample, nil
}
