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
	"math/big"
	"strconv"
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/SmoothBot/tx-latency-bench/pkg/ethclient"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// Operation is what the caller asks to have submitted. The signed transaction is built from it
// immediately before submission and is never modified afterwards.
type Operation struct {
	Nonce    uint64
	To       *ethtypes.Address0xHex // defaults to the signer's own address
	Value    *big.Int
	GasLimit uint64
}

type SubmitterOptions struct {
	Strategy         Strategy
	Fees             *FeePolicy
	BaselineGasPrice *big.Int
	GasLimit         uint64
}

// SubmissionHandle is returned once the node has accepted the transaction.
// For the synchronous strategies it is already complete when returned.
type SubmissionHandle struct {
	Nonce       uint64
	Hash        string
	Strategy    Strategy
	SubmittedAt time.Time
	SendTime    time.Duration

	done    chan struct{}
	outcome *Outcome
}

func (h *SubmissionHandle) Done() <-chan struct{} {
	return h.done
}

// Outcome is nil until the operation has settled
func (h *SubmissionHandle) Outcome() *Outcome {
	select {
	case <-h.done:
		return h.outcome
	default:
		return nil
	}
}

func (h *SubmissionHandle) Wait(ctx context.Context) (*Outcome, error) {
	select {
	case <-h.done:
		return h.outcome, nil
	case <-ctx.Done():
		return nil, i18n.NewError(ctx, msgs.MsgSubmitterStopped)
	}
}

// TotalTime is send time plus confirm time for polled submissions, and the single
// round trip for the synchronous ones
func (h *SubmissionHandle) TotalTime() time.Duration {
	outcome := h.Outcome()
	if outcome == nil {
		return 0
	}
	return h.SendTime + outcome.ConfirmTime
}

type Submitter[T any] struct {
	ec          ethclient.EthClient
	signer      ethclient.Signer
	poller      *ReceiptPoller
	ledger      *Ledger[T]
	metrics     *Metrics
	strategy    Strategy
	gasLimit    uint64
	gasPrice    *big.Int
	maxFee      *big.Int
	priorityFee *big.Int
}

// NewSubmitter fixes the fees for the life of the submitter, from the baseline gas price
// that was read at startup
func NewSubmitter[T any](ctx context.Context, ec ethclient.EthClient, signer ethclient.Signer, poller *ReceiptPoller, ledger *Ledger[T], metrics *Metrics, opts *SubmitterOptions) *Submitter[T] {
	s := &Submitter[T]{
		ec:       ec,
		signer:   signer,
		poller:   poller,
		ledger:   ledger,
		metrics:  metrics,
		strategy: opts.Strategy,
		gasLimit: opts.GasLimit,
	}
	if s.gasLimit == 0 {
		s.gasLimit = 21000
	}
	s.gasPrice = opts.Fees.GasPrice(ctx, opts.BaselineGasPrice)
	s.maxFee, s.priorityFee = opts.Fees.DynamicFees(ctx, opts.BaselineGasPrice)
	return s
}

func (s *Submitter[T]) Strategy() Strategy {
	return s.strategy
}

// EffectiveGasPrice is the gas price (legacy) or max fee per gas (EIP-1559) signed into every transaction
func (s *Submitter[T]) EffectiveGasPrice() *big.Int {
	if s.strategy.Synchronous() {
		return new(big.Int).Set(s.maxFee)
	}
	return new(big.Int).Set(s.gasPrice)
}

func (s *Submitter[T]) buildTransaction(op *Operation) *ethsigner.Transaction {
	to := op.To
	if to == nil {
		to = s.signer.Address()
	}
	value := op.Value
	if value == nil {
		value = big.NewInt(0)
	}
	gasLimit := op.GasLimit
	if gasLimit == 0 {
		gasLimit = s.gasLimit
	}
	tx := &ethsigner.Transaction{
		Nonce:    ethtypes.NewHexInteger(new(big.Int).SetUint64(op.Nonce)),
		GasLimit: ethtypes.NewHexInteger(new(big.Int).SetUint64(gasLimit)),
		To:       to,
		Value:    ethtypes.NewHexInteger(value),
	}
	if s.strategy.TXVersion() == ethclient.EIP1559 {
		tx.MaxFeePerGas = ethtypes.NewHexInteger(s.maxFee)
		tx.MaxPriorityFeePerGas = ethtypes.NewHexInteger(s.priorityFee)
	} else {
		tx.GasPrice = ethtypes.NewHexInteger(s.gasPrice)
	}
	return tx
}

// Submit signs and sends one operation. Signing and transport errors are returned and
// nothing is recorded in the ledger for them. Once the node has accepted the transaction
// the ledger has an entry for it, and the handle settles exactly once.
func (s *Submitter[T]) Submit(ctx context.Context, op *Operation, payload *T) (*SubmissionHandle, error) {
	ctx = log.WithLogField(ctx, "nonce", strconv.FormatUint(op.Nonce, 10))
	h := &SubmissionHandle{
		Nonce:       op.Nonce,
		Strategy:    s.strategy,
		SubmittedAt: time.Now(),
		done:        make(chan struct{}),
	}

	rawTX, err := s.signer.SignTransaction(ctx, s.strategy.TXVersion(), s.ec.ChainID(), s.buildTransaction(op))
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSigningError, op.Nonce)
	}
	localHash := ethclient.CalculateTransactionHash(rawTX).String()

	if s.strategy.Synchronous() {
		return s.submitSync(ctx, h, rawTX, localHash, payload)
	}
	return s.submitPolled(ctx, h, rawTX, localHash, payload)
}

func (s *Submitter[T]) submitPolled(ctx context.Context, h *SubmissionHandle, rawTX ethtypes.HexBytes0xPrefix, localHash string, payload *T) (*SubmissionHandle, error) {
	txHash, err := s.ec.SendRawTransaction(ctx, rawTX)
	h.SendTime = time.Since(h.SubmittedAt)
	if err != nil {
		log.L(ctx).Errorf("Submission failed (reason=%s): %s", ethclient.MapError(err), err)
		return nil, err
	}
	h.Hash = txHash.String()
	if h.Hash != localHash {
		log.L(ctx).Warnf("Node returned hash %s, locally calculated %s", h.Hash, localHash)
	}
	log.L(ctx).Debugf("Submitted %s in %dms", h.Hash, h.SendTime.Milliseconds())
	s.metrics.RecordSubmitted(s.strategy, h.SendTime)

	s.record(&LedgerEntry[T]{
		Nonce:       h.Nonce,
		Hash:        h.Hash,
		Status:      StatusPending,
		SubmittedAt: h.SubmittedAt,
		Payload:     payload,
	})
	go s.monitor(ctx, h)
	return h, nil
}

func (s *Submitter[T]) monitor(ctx context.Context, h *SubmissionHandle) {
	outcome := s.poller.Poll(ctx, h.Hash)
	var confirmedAfter *time.Duration
	if outcome.Status == StatusConfirmed {
		elapsed := time.Since(h.SubmittedAt)
		confirmedAfter = &elapsed
	}
	if s.ledger != nil && !s.ledger.UpdateStatus(h.Hash, outcome.Status, confirmedAfter) {
		log.L(ctx).Debugf("Ledger entry for %s no longer present at settlement", h.Hash)
	}
	s.metrics.RecordSettled(s.strategy, outcome, h.SendTime+outcome.ConfirmTime)
	s.complete(h, outcome)
}

func (s *Submitter[T]) submitSync(ctx context.Context, h *SubmissionHandle, rawTX ethtypes.HexBytes0xPrefix, localHash string, payload *T) (*SubmissionHandle, error) {
	var receipt *ethclient.TransactionReceipt
	var err error
	if s.strategy == StrategyRealtimeOnce {
		receipt, err = s.ec.SendRawTransactionRealtime(ctx, rawTX)
	} else {
		receipt, err = s.ec.SendRawTransactionSync(ctx, rawTX)
	}
	h.SendTime = time.Since(h.SubmittedAt)
	if err != nil {
		log.L(ctx).Errorf("Submission via %s failed (reason=%s): %s", s.strategy.Method(), ethclient.MapError(err), err)
		return nil, err
	}
	h.Hash = localHash
	if len(receipt.TransactionHash) > 0 {
		h.Hash = receipt.TransactionHash.String()
		if h.Hash != localHash {
			log.L(ctx).Warnf("Node returned hash %s, locally calculated %s", h.Hash, localHash)
		}
	}
	log.L(ctx).Debugf("Submitted and settled %s in %dms", h.Hash, h.SendTime.Milliseconds())
	s.metrics.RecordSubmitted(s.strategy, h.SendTime)

	outcome := ReceiptOutcome(ctx, h.Hash, receipt, 1, 0)
	entry := &LedgerEntry[T]{
		Nonce:       h.Nonce,
		Hash:        h.Hash,
		Status:      outcome.Status,
		SubmittedAt: h.SubmittedAt,
		Payload:     payload,
	}
	if outcome.Status == StatusConfirmed {
		sendTime := h.SendTime
		entry.ConfirmedAfter = &sendTime
	}
	s.record(entry)
	s.metrics.RecordSettled(s.strategy, outcome, h.SendTime)
	s.complete(h, outcome)
	return h, nil
}

func (s *Submitter[T]) record(entry *LedgerEntry[T]) {
	if s.ledger != nil {
		s.ledger.Record(entry)
	}
}

func (s *Submitter[T]) complete(h *SubmissionHandle, outcome *Outcome) {
	h.outcome = outcome
	close(h.done)
}
