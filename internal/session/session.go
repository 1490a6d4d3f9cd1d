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

package session

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/confutil"
	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/SmoothBot/tx-latency-bench/internal/txengine"
	"github.com/SmoothBot/tx-latency-bench/pkg/ethclient"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

var gwei = big.NewInt(1000000000)

// Session holds everything read from the node once at startup, before the first submission
type Session struct {
	Client           ethclient.EthClient
	Signer           ethclient.Signer
	Strategy         txengine.Strategy
	Fees             *txengine.FeePolicy
	Nonces           *txengine.NonceSequencer
	StartNonce       uint64
	BaselineGasPrice *big.Int
	Balance          *big.Int
	GasLimit         uint64
}

// Connect builds the JSON-RPC client and signer from configuration, then initializes the session
func Connect(ctx context.Context, cfg *conf.Config, fees *txengine.FeePolicy) (*Session, error) {
	if cfg.SigningKey == "" {
		return nil, i18n.NewError(ctx, msgs.MsgPrivateKeyMissing)
	}
	signer, err := ethclient.NewKeySigner(ctx, cfg.SigningKey)
	if err != nil {
		return nil, err
	}
	ec, err := ethclient.NewHTTPClient(ctx, &cfg.RPC)
	if err != nil {
		return nil, err
	}
	return NewSession(ctx, cfg, ec, signer, fees)
}

func NewSession(ctx context.Context, cfg *conf.Config, ec ethclient.EthClient, signer ethclient.Signer, fees *txengine.FeePolicy) (*Session, error) {
	requested := ""
	if cfg.Strategy != nil {
		requested = *cfg.Strategy
	}
	detected := txengine.DetectStrategy(ec.URL(), requested)
	if requested == "" && detected != string(txengine.StrategyPolled) {
		log.L(ctx).Infof("RPC URL contains 'rise', automatically using %s", ethclient.MethodSendRawTransactionSync)
	}
	strategy, err := txengine.ParseStrategy(ctx, detected)
	if err != nil {
		return nil, err
	}
	if requested != "" && strategy != txengine.StrategySyncOnce && txengine.IsRiseURL(ec.URL()) {
		log.L(ctx).Warnf("RPC URL looks like a RISE endpoint, but using %s as requested instead of %s", strategy.Method(), ethclient.MethodSendRawTransactionSync)
	}

	addr := signer.Address().String()
	nonces, err := txengine.InitNonceSequencer(ctx, addr, txengine.NodeNonceCallback(ec))
	if err != nil {
		return nil, err
	}
	gasPrice, err := ec.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := ec.GetBalance(ctx, addr, "latest")
	if err != nil {
		return nil, err
	}

	return &Session{
		Client:           ec,
		Signer:           signer,
		Strategy:         strategy,
		Fees:             fees,
		Nonces:           nonces,
		StartNonce:       nonces.Peek(),
		BaselineGasPrice: gasPrice.BigInt(),
		Balance:          balance.BigInt(),
		GasLimit:         uint64(confutil.Int64Min(cfg.Fees.GasLimit, 21000, *conf.Defaults.Fees.GasLimit)),
	}, nil
}

func (s *Session) SubmitterOptions() *txengine.SubmitterOptions {
	return &txengine.SubmitterOptions{
		Strategy:         s.Strategy,
		Fees:             s.Fees,
		BaselineGasPrice: s.BaselineGasPrice,
		GasLimit:         s.GasLimit,
	}
}

func ToGwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return new(big.Int).Quo(wei, gwei).String()
}

// ToEther renders a wei amount with four decimal places
func ToEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	f := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18))
	return f.Text('f', 4)
}

// WriteBanner prints the connection summary shown before any transactions are sent
func (s *Session) WriteBanner(ctx context.Context, w io.Writer) {
	fmt.Fprintf(w, "RPC URL: %s\n", s.Client.URL())
	fmt.Fprintf(w, "Chain ID: %d\n", s.Client.ChainID())
	fmt.Fprintf(w, "Wallet address: %s\n", s.Signer.Address())
	fmt.Fprintf(w, "Wallet balance: %s ETH\n", ToEther(s.Balance))
	fmt.Fprintf(w, "Starting nonce: %d\n", s.StartNonce)
	fmt.Fprintf(w, "Default gas price: %s gwei\n", ToGwei(s.BaselineGasPrice))
	if s.Strategy.Synchronous() {
		maxFee, priorityFee := s.Fees.DynamicFees(ctx, s.BaselineGasPrice)
		fmt.Fprintf(w, "Using max fee per gas: %s gwei (priority fee %s gwei)\n", ToGwei(maxFee), ToGwei(priorityFee))
	} else {
		fmt.Fprintf(w, "Using gas price (%dx): %s gwei\n", s.Fees.Multiplier, ToGwei(s.Fees.GasPrice(ctx, s.BaselineGasPrice)))
	}
	fmt.Fprintf(w, "Transaction method: %s\n", s.Strategy.Description())
}
