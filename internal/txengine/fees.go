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

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/confutil"
	"github.com/SmoothBot/tx-latency-bench/internal/log"
)

// FeePolicy derives the fees signed into each transaction from the node's baseline gas price
type FeePolicy struct {
	Multiplier  int64
	Floor       *big.Int
	PriorityFee *big.Int
}

func NewFeePolicy(fc *conf.FeeConfig, multiplier int64) *FeePolicy {
	if multiplier < 1 {
		multiplier = 1
	}
	return &FeePolicy{
		Multiplier:  multiplier,
		Floor:       confutil.BigInt(fc.Floor, *conf.Defaults.Fees.Floor),
		PriorityFee: confutil.BigInt(fc.PriorityFee, *conf.Defaults.Fees.PriorityFee),
	}
}

// BenchmarkFeePolicy bids aggressively so benchmark transactions are not delayed by the fee market
func BenchmarkFeePolicy(fc *conf.FeeConfig) *FeePolicy {
	return NewFeePolicy(fc, confutil.Int64Min(fc.BenchMultiplier, 1, *conf.Defaults.Fees.BenchMultiplier))
}

func DemoFeePolicy(fc *conf.FeeConfig) *FeePolicy {
	return NewFeePolicy(fc, confutil.Int64Min(fc.DemoMultiplier, 1, *conf.Defaults.Fees.DemoMultiplier))
}

// GasPrice returns baseline x multiplier, or the floor if the node reported zero
func (fp *FeePolicy) GasPrice(ctx context.Context, baseline *big.Int) *big.Int {
	if baseline == nil || baseline.Sign() <= 0 {
		log.L(ctx).Warnf("Node reported a gas price of zero, using floor of %s wei", fp.Floor)
		return new(big.Int).Set(fp.Floor)
	}
	return new(big.Int).Mul(baseline, big.NewInt(fp.Multiplier))
}

// DynamicFees returns the EIP-1559 (maxFeePerGas, maxPriorityFeePerGas) pair.
// maxFeePerGas is never below the priority fee.
func (fp *FeePolicy) DynamicFees(ctx context.Context, baseline *big.Int) (maxFee *big.Int, priorityFee *big.Int) {
	priorityFee = new(big.Int).Set(fp.PriorityFee)
	gasPrice := fp.GasPrice(ctx, baseline)
	if gasPrice.Cmp(priorityFee) > 0 {
		return gasPrice, priorityFee
	}
	return new(big.Int).Mul(priorityFee, big.NewInt(2)), priorityFee
}
