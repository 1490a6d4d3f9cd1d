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
	"strings"

	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/SmoothBot/tx-latency-bench/pkg/ethclient"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

type Strategy string

const (
	// StrategyPolled submits with eth_sendRawTransaction and polls for the receipt
	StrategyPolled Strategy = "async"
	// StrategySyncOnce uses eth_sendRawTransactionSync, which returns the receipt
	StrategySyncOnce Strategy = "rise"
	// StrategyRealtimeOnce uses realtime_sendRawTransaction, which returns the receipt
	StrategyRealtimeOnce Strategy = "mega"
)

var AllStrategies = []Strategy{StrategyPolled, StrategySyncOnce, StrategyRealtimeOnce}

func ParseStrategy(ctx context.Context, s string) (Strategy, error) {
	names := make([]string, len(AllStrategies))
	for i, strategy := range AllStrategies {
		if strings.EqualFold(s, string(strategy)) {
			return strategy, nil
		}
		names[i] = string(strategy)
	}
	return "", i18n.NewError(ctx, msgs.MsgInvalidStrategy, s, strings.Join(names, ", "))
}

// DetectStrategy picks the strategy to use when none was requested explicitly.
// RISE endpoints support the synchronous method, everything else is polled.
func DetectStrategy(rpcURL string, requested string) string {
	if requested != "" {
		return requested
	}
	if IsRiseURL(rpcURL) {
		return string(StrategySyncOnce)
	}
	return string(StrategyPolled)
}

// IsRiseURL is true for endpoints that support eth_sendRawTransactionSync
func IsRiseURL(rpcURL string) bool {
	return strings.Contains(strings.ToLower(rpcURL), "rise")
}

// Synchronous strategies get the receipt back from the submission call
func (s Strategy) Synchronous() bool {
	return s != StrategyPolled
}

func (s Strategy) TXVersion() ethclient.EthTXVersion {
	if s.Synchronous() {
		return ethclient.EIP1559
	}
	return ethclient.LEGACY_EIP155
}

func (s Strategy) Method() string {
	switch s {
	case StrategySyncOnce:
		return ethclient.MethodSendRawTransactionSync
	case StrategyRealtimeOnce:
		return ethclient.MethodSendRawTransactionRealtime
	default:
		return ethclient.MethodSendRawTransaction
	}
}

func (s Strategy) Description() string {
	switch s {
	case StrategySyncOnce:
		return "RISE sync (eth_sendRawTransactionSync)"
	case StrategyRealtimeOnce:
		return "MegaETH realtime (realtime_sendRawTransaction)"
	default:
		return "standard async (eth_sendRawTransaction + receipt polling)"
	}
}
