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

package msgs

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const txlPrefix = "TL01"

var registerOnce sync.Once
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	registerOnce.Do(func() {
		i18n.RegisterPrefix(txlPrefix, "Transaction Latency Bench")
	})
	if !strings.HasPrefix(key, txlPrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", txlPrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (
	// Transport / ledger client TL0100XX
	MsgTransportError        = ffe("TL010000", "Transport error calling %s")
	MsgChainIDFailed         = ffe("TL010001", "Failed to query chain ID")
	MsgInvalidTXVersion      = ffe("TL010002", "Invalid transaction version: %s")
	MsgNoReceiptInResponse   = ffe("TL010003", "No receipt returned by %s for transaction %s")
	MsgNonceQueryFailed      = ffe("TL010004", "Failed to query transaction count for %s")
	MsgGasPriceQueryFailed   = ffe("TL010005", "Failed to query gas price")
	MsgBalanceQueryFailed    = ffe("TL010006", "Failed to query balance for %s")
	MsgRPCEndpointMissing    = ffe("TL010007", "RPC endpoint URL must be configured (RPC_PROVIDER or --rpc)")
	MsgReturnedHashMalformed = ffe("TL010008", "Node returned a malformed transaction hash: %s")

	// Signing TL0101XX
	MsgSigningError       = ffe("TL010100", "Signing failed for nonce %d")
	MsgInvalidPrivateKey  = ffe("TL010101", "Invalid private key")
	MsgPrivateKeyMissing  = ffe("TL010102", "Private key must be configured (PRIVATE_KEY or --pkey)")
	MsgSignerInvalidChain = ffe("TL010103", "Chain ID %d is not valid for signing")

	// Lifecycle TL0102XX
	MsgReceiptTimeout   = ffe("TL010200", "Receipt for %s not available after %d attempts")
	MsgReceiptReverted  = ffe("TL010201", "Transaction %s was mined with failure status %d")
	MsgInvalidStrategy  = ffe("TL010202", "Invalid submission strategy '%s' (expected one of: %s)")
	MsgSubmitterStopped = ffe("TL010203", "Submission cancelled before completion")

	// Runner / reporting TL0103XX
	MsgNoTransactionsRequested = ffe("TL010300", "Number of transactions must be at least 1")
	MsgReportWriteFailed       = ffe("TL010301", "Failed to write report to %s")
	MsgReportFormatInvalid     = ffe("TL010302", "Invalid report format '%s' (expected json or yaml)")
	MsgMetricsServerFailed     = ffe("TL010303", "Failed to start metrics server on %s")
	MsgConfigFileInvalid       = ffe("TL010304", "Failed to load configuration file %s")
	MsgTerminalSetupFailed     = ffe("TL010305", "Failed to prepare terminal for interactive mode")
)
