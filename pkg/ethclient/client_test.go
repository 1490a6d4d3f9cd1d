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
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/SmoothBot/tx-latency-bench/mocks/rpcbackendmocks"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTXHash = "0x3fc8d9da1d6a0a5e3d2e7c8f8b0d6d3cfa1c1bb3d0c2e4a4b5b6c7d8e9f0a1b2"

func newTestClient(t *testing.T) (context.Context, *ethClient, *rpcbackendmocks.RPC) {
	ctx := context.Background()
	mRPC := rpcbackendmocks.NewRPC(t)
	mRPC.On("CallRPC", mock.Anything, mock.Anything, "eth_chainId").Return(nil).Run(func(args mock.Arguments) {
		*args[1].(*ethtypes.HexUint64) = 12345
	}).Once()
	ec, err := WrapRPCClient(ctx, "http://localhost:8545", mRPC)
	require.NoError(t, err)
	return ctx, ec.(*ethClient), mRPC
}

func rpcFail(ctx context.Context) *rpcbackend.RPCError {
	return rpcbackend.NewRPCError(ctx, rpcbackend.RPCCodeInternalError, msgs.MsgSubmitterStopped)
}

func TestChainIDFail(t *testing.T) {
	ctx := context.Background()
	mRPC := rpcbackendmocks.NewRPC(t)
	mRPC.On("CallRPC", mock.Anything, mock.Anything, "eth_chainId").Return(rpcFail(ctx))

	_, err := WrapRPCClient(ctx, "http://localhost:8545", mRPC)
	assert.Regexp(t, "TL010001", err)
}

func TestChainIDAndURL(t *testing.T) {
	_, ec, _ := newTestClient(t)
	assert.Equal(t, int64(12345), ec.ChainID())
	assert.Equal(t, "http://localhost:8545", ec.URL())
}

func TestGasPrice(t *testing.T) {
	ctx, ec, mRPC := newTestClient(t)
	mRPC.On("CallRPC", mock.Anything, mock.Anything, "eth_gasPrice").Return(nil).Run(func(args mock.Arguments) {
		*args[1].(*ethtypes.HexInteger) = *ethtypes.NewHexInteger64(1000000000)
	}).Once()
	mRPC.On("CallRPC", mock.Anything, mock.Anything, "eth_gasPrice").Return(rpcFail(ctx)).Once()

	gp, err := ec.GasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000000), gp.BigInt().Int64())

	_, err = ec.GasPrice(ctx)
	assert.Regexp(t, "TL010005", err)
}

func TestGetBalanceAndCount(t *testing.T) {
	ctx, ec, mRPC := newTestClient(t)
	mRPC.On("CallRPC", mock.Anything, mock.Anything, "eth_getBalance", "0xabc", "latest").Return(nil).Run(func(args mock.Arguments) {
		*args[1].(*ethtypes.HexInteger) = *ethtypes.NewHexInteger64(5)
	}).Once()
	mRPC.On("CallRPC", mock.Anything, mock.Anything, "eth_getTransactionCount", "0xabc", "pending").Return(nil).Run(func(args mock.Arguments) {
		*args[1].(*ethtypes.HexUint64) = 7
	}).Once()
	mRPC.On("CallRPC", mock.Anything, mock.Anything, "eth_getBalance", "0xdef", "latest").Return(rpcFail(ctx)).Once()
	mRPC.On("CallRPC", mock.Anything, mock.Anything, "eth_getTransactionCount", "0xdef", "pending").Return(rpcFail(ctx)).Once()

	bal, err := ec.GetBalance(ctx, "0xabc", "latest")
	require.NoError(t, err)
	assert.Equal(t, int64(5), bal.BigInt().Int64())

	count, err := ec.GetTransactionCount(ctx, "0xabc", "pending")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), count.Uint64())

	_, err = ec.GetBalance(ctx, "0xdef", "latest")
	assert.Regexp(t, "TL010006.*0xdef", err)

	_, err = ec.GetTransactionCount(ctx, "0xdef", "pending")
	assert.Regexp(t, "TL010004.*0xdef", err)
}

func TestGetTransactionReceiptNotYetMined(t *testing.T) {
	ctx, ec, mRPC := newTestClient(t)
	mRPC.On("CallRPC", mock.Anything, mock.Anything, "eth_getTransactionReceipt", testTXHash).Return(nil).Once()

	receipt, err := ec.GetTransactionReceipt(ctx, testTXHash)
	require.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestGetTransactionReceiptMined(t *testing.T) {
	ctx, ec, mRPC := newTestClient(t)
	mRPC.On("CallRPC", mock.Anything, mock.Anything, "eth_getTransactionReceipt", testTXHash).Return(nil).Run(func(args mock.Arguments) {
		err := json.Unmarshal([]byte(`{
			"transactionHash": "`+testTXHash+`",
			"blockNumber": "0x10",
			"gasUsed": "0x5208",
			"status": "0x1"
		}`), args[1])
		assert.NoError(t, err)
	}).Once()

	receipt, err := ec.GetTransactionReceipt(ctx, testTXHash)
	require.NoError(t, err)
	assert.True(t, receipt.Success())
	assert.Equal(t, uint64(16), receipt.BlockNumberUint64())
	assert.Equal(t, uint64(21000), receipt.GasUsedUint64())
	assert.Equal(t, testTXHash, receipt.TransactionHash.String())
}

func TestGetTransactionReceiptFail(t *testing.T) {
	ctx, ec, mRPC := newTestClient(t)
	mRPC.On("CallRPC", mock.Anything, mock.Anything, "eth_getTransactionReceipt", testTXHash).Return(rpcFail(ctx)).Once()

	_, err := ec.GetTransactionReceipt(ctx, testTXHash)
	assert.Regexp(t, "TL010000.*eth_getTransactionReceipt", err)
}

func TestSendRawTransaction(t *testing.T) {
	ctx, ec, mRPC := newTestClient(t)
	raw := ethtypes.MustNewHexBytes0xPrefix("0x02f86b")
	mRPC.On("CallRPC", mock.Anything, mock.Anything, MethodSendRawTransaction, raw).Return(nil).Run(func(args mock.Arguments) {
		*args[1].(*ethtypes.HexBytes0xPrefix) = ethtypes.MustNewHexBytes0xPrefix(testTXHash)
	}).Once()

	hash, err := ec.SendRawTransaction(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, testTXHash, hash.String())
}

func TestSendRawTransactionBadHash(t *testing.T) {
	ctx, ec, mRPC := newTestClient(t)
	mRPC.On("CallRPC", mock.Anything, mock.Anything, MethodSendRawTransaction, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		*args[1].(*ethtypes.HexBytes0xPrefix) = ethtypes.MustNewHexBytes0xPrefix("0x1234")
	}).Once()

	_, err := ec.SendRawTransaction(ctx, ethtypes.MustNewHexBytes0xPrefix("0x02"))
	assert.Regexp(t, "TL010008", err)
}

func TestSendRawTransactionRejected(t *testing.T) {
	ctx, ec, mRPC := newTestClient(t)
	mRPC.On("CallRPC", mock.Anything, mock.Anything, MethodSendRawTransaction, mock.Anything).Return(rpcFail(ctx)).Once()

	_, err := ec.SendRawTransaction(ctx, ethtypes.MustNewHexBytes0xPrefix("0xfeedbeef"))
	assert.Regexp(t, "TL010000.*eth_sendRawTransaction", err)
}

func TestSendRawTransactionSyncVariants(t *testing.T) {
	for _, method := range []string{MethodSendRawTransactionSync, MethodSendRawTransactionRealtime} {
		t.Run(method, func(t *testing.T) {
			ctx, ec, mRPC := newTestClient(t)
			mRPC.On("CallRPC", mock.Anything, mock.Anything, method, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
				err := json.Unmarshal([]byte(`{"transactionHash":"`+testTXHash+`","status":"0x0"}`), args[1])
				assert.NoError(t, err)
			}).Once()
			mRPC.On("CallRPC", mock.Anything, mock.Anything, method, mock.Anything).Return(nil).Once()

			send := ec.SendRawTransactionSync
			if method == MethodSendRawTransactionRealtime {
				send = ec.SendRawTransactionRealtime
			}

			receipt, err := send(ctx, ethtypes.MustNewHexBytes0xPrefix("0x02"))
			require.NoError(t, err)
			assert.False(t, receipt.Success())
			assert.Equal(t, int64(0), receipt.StatusCode())

			_, err = send(ctx, ethtypes.MustNewHexBytes0xPrefix("0x02"))
			assert.Regexp(t, "TL010003", err)
		})
	}
}

func TestNewHTTPClientBadURL(t *testing.T) {
	_, err := NewHTTPClient(context.Background(), &conf.HTTPClientConfig{URL: "wss://nope"})
	assert.Regexp(t, "TL010007", err)

	_, err = NewHTTPClient(context.Background(), &conf.HTTPClientConfig{})
	assert.Regexp(t, "TL010007", err)
}

func TestNewHTTPClientRealServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		_ = json.Unmarshal(body, &req)
		assert.Equal(t, "eth_chainId", req.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":"0x2a"}`))
	}))
	defer server.Close()

	ec, err := NewHTTPClient(context.Background(), &conf.HTTPClientConfig{URL: server.URL + "/"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), ec.ChainID())
}

func TestMapError(t *testing.T) {
	assert.Equal(t, ErrorReason(""), MapError(nil))
	assert.Equal(t, ErrorReason(""), MapError(fmt.Errorf("pop")))
	assert.Equal(t, ErrorReasonNonceTooLow, MapError(fmt.Errorf("Nonce too low: next nonce 5, tx nonce 4")))
	assert.Equal(t, ErrorReasonInsufficientFunds, MapError(fmt.Errorf("insufficient funds for gas * price + value")))
	assert.Equal(t, ErrorReasonTransactionUnderpriced, MapError(fmt.Errorf("transaction underpriced")))
	assert.Equal(t, ErrorKnownTransaction, MapError(fmt.Errorf("already known")))
	assert.Equal(t, ErrorReasonTransactionReverted, MapError(fmt.Errorf("execution reverted")))
	assert.Equal(t, ErrorReasonDownstreamDown, MapError(fmt.Errorf("dial tcp: connection refused")))
}
