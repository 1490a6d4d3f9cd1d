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

package ethclient

import (
	"strings"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

type EthTXVersion string

const (
	LEGACY_EIP155 EthTXVersion = "legacy_eip155"
	EIP1559       EthTXVersion = "eip1559"
)

// ErrorReason classifies the error strings returned by nodes on submission,
// so failures can be logged in a consistent way whichever client produced them
type ErrorReason string

const (
	ErrorReasonTransactionReverted    ErrorReason = "transaction_reverted"
	ErrorReasonNonceTooLow            ErrorReason = "nonce_too_low"
	ErrorReasonTransactionUnderpriced ErrorReason = "transaction_underpriced"
	ErrorReasonInsufficientFunds      ErrorReason = "insufficient_funds"
	ErrorKnownTransaction             ErrorReason = "known_transaction"
	ErrorReasonDownstreamDown         ErrorReason = "downstream_down"
)

func MapError(err error) ErrorReason {
	if err == nil {
		return ""
	}
	errString := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errString, "nonce too low"):
		return ErrorReasonNonceTooLow
	case strings.Contains(errString, "insufficient funds"):
		return ErrorReasonInsufficientFunds
	case strings.Contains(errString, "transaction underpriced"),
		strings.Contains(errString, "max fee per gas less than block base fee"):
		return ErrorReasonTransactionUnderpriced
	case strings.Contains(errString, "known transaction"),
		strings.Contains(errString, "already known"):
		return ErrorKnownTransaction
	case strings.Contains(errString, "execution reverted"):
		return ErrorReasonTransactionReverted
	case strings.Contains(errString, "connection refused"),
		strings.Contains(errString, "no such host"),
		strings.Contains(errString, "eof"):
		return ErrorReasonDownstreamDown
	default:
		return ""
	}
}

// TransactionReceipt is the receipt as returned over JSON-RPC, both by eth_getTransactionReceipt
// and by the synchronous submission methods that return the receipt directly
type TransactionReceipt struct {
	BlockHash         ethtypes.HexBytes0xPrefix  `json:"blockHash"`
	BlockNumber       *ethtypes.HexInteger       `json:"blockNumber"`
	ContractAddress   *ethtypes.Address0xHex     `json:"contractAddress"`
	CumulativeGasUsed *ethtypes.HexInteger       `json:"cumulativeGasUsed"`
	EffectiveGasPrice *ethtypes.HexInteger       `json:"effectiveGasPrice"`
	From              *ethtypes.Address0xHex     `json:"from"`
	GasUsed           *ethtypes.HexInteger       `json:"gasUsed"`
	Status            *ethtypes.HexInteger       `json:"status"`
	To                *ethtypes.Address0xHex     `json:"to"`
	TransactionHash   ethtypes.HexBytes0xPrefix  `json:"transactionHash"`
	TransactionIndex  *ethtypes.HexInteger       `json:"transactionIndex"`
	RevertReason      *ethtypes.HexBytes0xPrefix `json:"revertReason"`
}

// StatusCode returns the receipt status flag, or -1 if the node did not supply one
func (r *TransactionReceipt) StatusCode() int64 {
	if r == nil || r.Status == nil {
		return -1
	}
	return r.Status.BigInt().Int64()
}

// Success is only true for an explicit status of 1
func (r *TransactionReceipt) Success() bool {
	return r.StatusCode() == 1
}

func (r *TransactionReceipt) BlockNumberUint64() uint64 {
	if r == nil || r.BlockNumber == nil {
		return 0
	}
	return r.BlockNumber.BigInt().Uint64()
}

func (r *TransactionReceipt) GasUsedUint64() uint64 {
	if r == nil || r.GasUsed == nil {
		return 0
	}
	return r.GasUsed.BigInt().Uint64()
}
