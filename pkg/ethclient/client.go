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
	"context"
	"encoding/json"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
)

const (
	MethodSendRawTransaction         = "eth_sendRawTransaction"
	MethodSendRawTransactionSync     = "eth_sendRawTransactionSync"
	MethodSendRawTransactionRealtime = "realtime_sendRawTransaction"
)

// EthClient is the JSON-RPC surface of the ledger node used for submission and confirmation
type EthClient interface {
	ChainID() int64
	URL() string

	GasPrice(ctx context.Context) (*ethtypes.HexInteger, error)
	GetBalance(ctx context.Context, address string, block string) (*ethtypes.HexInteger, error)
	GetTransactionCount(ctx context.Context, fromAddr string, block string) (*ethtypes.HexUint64, error)
	// GetTransactionReceipt returns nil with no error while the transaction is not yet mined
	GetTransactionReceipt(ctx context.Context, txHash string) (*TransactionReceipt, error)

	SendRawTransaction(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (ethtypes.HexBytes0xPrefix, error)
	// SendRawTransactionSync and SendRawTransactionRealtime return the receipt in the same round trip
	SendRawTransactionSync(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (*TransactionReceipt, error)
	SendRawTransactionRealtime(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (*TransactionReceipt, error)
}

type ethClient struct {
	url     string
	chainID int64
	rpc     rpcbackend.RPC
}

// NewHTTPClient connects over HTTP and queries the chain ID
func NewHTTPClient(ctx context.Context, hc *conf.HTTPClientConfig) (EthClient, error) {
	restClient, err := NewRESTClient(ctx, hc)
	if err != nil {
		return nil, err
	}
	return WrapRPCClient(ctx, hc.URL, rpcbackend.NewRPCClient(restClient))
}

// WrapRPCClient is used directly in tests, where the RPC backend is a mock
func WrapRPCClient(ctx context.Context, url string, rpc rpcbackend.RPC) (EthClient, error) {
	ec := &ethClient{
		url: url,
		rpc: rpc,
	}
	if err := ec.setupChainID(ctx); err != nil {
		return nil, err
	}
	return ec, nil
}

func (ec *ethClient) ChainID() int64 {
	return ec.chainID
}

func (ec *ethClient) URL() string {
	return ec.url
}

func (ec *ethClient) setupChainID(ctx context.Context) error {
	var chainID ethtypes.HexUint64
	if rpcErr := ec.rpc.CallRPC(ctx, &chainID, "eth_chainId"); rpcErr != nil {
		log.L(ctx).Errorf("eth_chainId failed: %+v", rpcErr)
		return i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgChainIDFailed)
	}
	ec.chainID = int64(chainID.Uint64())
	return nil
}

func (ec *ethClient) GasPrice(ctx context.Context) (*ethtypes.HexInteger, error) {
	var gasPrice ethtypes.HexInteger
	if rpcErr := ec.rpc.CallRPC(ctx, &gasPrice, "eth_gasPrice"); rpcErr != nil {
		log.L(ctx).Errorf("eth_gasPrice failed: %+v", rpcErr)
		return nil, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgGasPriceQueryFailed)
	}
	return &gasPrice, nil
}

func (ec *ethClient) GetBalance(ctx context.Context, address string, block string) (*ethtypes.HexInteger, error) {
	var balance ethtypes.HexInteger
	if rpcErr := ec.rpc.CallRPC(ctx, &balance, "eth_getBalance", address, block); rpcErr != nil {
		log.L(ctx).Errorf("eth_getBalance(%s) failed: %+v", address, rpcErr)
		return nil, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgBalanceQueryFailed, address)
	}
	return &balance, nil
}

func (ec *ethClient) GetTransactionCount(ctx context.Context, fromAddr string, block string) (*ethtypes.HexUint64, error) {
	var transactionCount ethtypes.HexUint64
	if rpcErr := ec.rpc.CallRPC(ctx, &transactionCount, "eth_getTransactionCount", fromAddr, block); rpcErr != nil {
		log.L(ctx).Errorf("eth_getTransactionCount(%s) failed: %+v", fromAddr, rpcErr)
		return nil, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgNonceQueryFailed, fromAddr)
	}
	return &transactionCount, nil
}

func (ec *ethClient) GetTransactionReceipt(ctx context.Context, txHash string) (*TransactionReceipt, error) {
	var receipt *TransactionReceipt
	if rpcErr := ec.rpc.CallRPC(ctx, &receipt, "eth_getTransactionReceipt", txHash); rpcErr != nil {
		return nil, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgTransportError, "eth_getTransactionReceipt")
	}
	return receipt, nil
}

func (ec *ethClient) SendRawTransaction(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (ethtypes.HexBytes0xPrefix, error) {
	var txHash ethtypes.HexBytes0xPrefix
	if rpcErr := ec.rpc.CallRPC(ctx, &txHash, MethodSendRawTransaction, rawTX); rpcErr != nil {
		ec.logRejected(ctx, rawTX)
		return nil, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgTransportError, MethodSendRawTransaction)
	}
	if len(txHash) != 32 {
		return nil, i18n.NewError(ctx, msgs.MsgReturnedHashMalformed, txHash)
	}
	return txHash, nil
}

func (ec *ethClient) SendRawTransactionSync(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (*TransactionReceipt, error) {
	return ec.sendRawTransactionWithReceipt(ctx, MethodSendRawTransactionSync, rawTX)
}

func (ec *ethClient) SendRawTransactionRealtime(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (*TransactionReceipt, error) {
	return ec.sendRawTransactionWithReceipt(ctx, MethodSendRawTransactionRealtime, rawTX)
}

func (ec *ethClient) sendRawTransactionWithReceipt(ctx context.Context, method string, rawTX ethtypes.HexBytes0xPrefix) (*TransactionReceipt, error) {
	var receipt *TransactionReceipt
	if rpcErr := ec.rpc.CallRPC(ctx, &receipt, method, rawTX); rpcErr != nil {
		ec.logRejected(ctx, rawTX)
		return nil, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgTransportError, method)
	}
	if receipt == nil {
		return nil, i18n.NewError(ctx, msgs.MsgNoReceiptInResponse, method, CalculateTransactionHash(rawTX))
	}
	return receipt, nil
}

func (ec *ethClient) logRejected(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) {
	addr, decodedTX, err := ethsigner.RecoverRawTransaction(ctx, rawTX, ec.chainID)
	if err != nil {
		log.L(ctx).Errorf("Invalid transaction build during signing: %s", err)
	} else {
		log.L(ctx).Errorf("Rejected TX (from=%s): %+v", addr, logJSON(decodedTX.Transaction))
	}
}

func logJSON(v interface{}) string {
	ret := ""
	b, _ := json.Marshal(v)
	if len(b) > 0 {
		ret = (string)(b)
	}
	return ret
}
