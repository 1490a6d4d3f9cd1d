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

package txengine

import (
	"context"
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/confutil"
	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/SmoothBot/tx-latency-bench/pkg/ethclient"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

type FailureReason string

const (
	FailureReasonNone      FailureReason = ""
	FailureReasonTimeout   FailureReason = "timeout"
	FailureReasonTransport FailureReason = "transport"
	FailureReasonReverted  FailureReason = "reverted"
)

// Outcome is the terminal result of one submitted operation
type Outcome struct {
	Status      Status
	Reason      FailureReason
	Receipt     *ethclient.TransactionReceipt
	Attempts    int
	ConfirmTime time.Duration
	Err         error
}

// ReceiptPoller waits for the receipt of an already submitted transaction.
// A transport error ends polling immediately, it is not retried.
type ReceiptPoller struct {
	ec          ethclient.EthClient
	interval    time.Duration
	maxAttempts int
}

func NewReceiptPoller(ec ethclient.EthClient, pc *conf.PollerConfig) *ReceiptPoller {
	return &ReceiptPoller{
		ec:          ec,
		interval:    confutil.DurationMin(pc.Interval, time.Millisecond, *conf.Defaults.Poller.Interval),
		maxAttempts: confutil.IntMin(pc.MaxAttempts, 1, *conf.Defaults.Poller.MaxAttempts),
	}
}

func (rp *ReceiptPoller) Poll(ctx context.Context, txHash string) *Outcome {
	ctx = log.WithLogField(ctx, "tx", txHash)
	startTime := time.Now()
	for attempt := 1; attempt <= rp.maxAttempts; attempt++ {
		receipt, err := rp.ec.GetTransactionReceipt(ctx, txHash)
		if err != nil {
			log.L(ctx).Errorf("Receipt query failed after %d attempts: %s", attempt, err)
			return &Outcome{Status: StatusFailed, Reason: FailureReasonTransport, Attempts: attempt, ConfirmTime: time.Since(startTime), Err: err}
		}
		if receipt != nil {
			return ReceiptOutcome(ctx, txHash, receipt, attempt, time.Since(startTime))
		}
		if attempt == rp.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			log.L(ctx).Warnf("Receipt polling cancelled after %d attempts", attempt)
			return &Outcome{Status: StatusFailed, Reason: FailureReasonTransport, Attempts: attempt, ConfirmTime: time.Since(startTime), Err: i18n.NewError(ctx, msgs.MsgSubmitterStopped)}
		case <-time.After(rp.interval):
		}
	}
	log.L(ctx).Warnf("No receipt after %d attempts", rp.maxAttempts)
	return &Outcome{
		Status:      StatusFailed,
		Reason:      FailureReasonTimeout,
		Attempts:    rp.maxAttempts,
		ConfirmTime: time.Since(startTime),
		Err:         i18n.NewError(ctx, msgs.MsgReceiptTimeout, txHash, rp.maxAttempts),
	}
}

// ReceiptOutcome maps a receipt to confirmed or failed. Only an explicit status of 1 is success.
func ReceiptOutcome(ctx context.Context, txHash string, receipt *ethclient.TransactionReceipt, attempts int, confirmTime time.Duration) *Outcome {
	if receipt.Success() {
		return &Outcome{Status: StatusConfirmed, Receipt: receipt, Attempts: attempts, ConfirmTime: confirmTime}
	}
	err := i18n.NewError(ctx, msgs.MsgReceiptReverted, txHash, receipt.StatusCode())
	log.L(ctx).Warnf("%s", err)
	return &Outcome{Status: StatusFailed, Reason: FailureReasonReverted, Receipt: receipt, Attempts: attempts, ConfirmTime: confirmTime, Err: err}
}
