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
	"testing"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/confutil"
	"github.com/SmoothBot/tx-latency-bench/mocks/ethclientmocks"
	"github.com/SmoothBot/tx-latency-bench/pkg/ethclient"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testChainID = int64(12345)

type testEngine[T any] struct {
	ctx       context.Context
	ec        *ethclientmocks.EthClient
	signer    ethclient.Signer
	ledger    *Ledger[T]
	metrics   *Metrics
	submitter *Submitter[T]
}

func newTestSigner(t *testing.T) ethclient.Signer {
	kp, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)
	signer, err := ethclient.NewKeySigner(context.Background(), ethtypes.HexBytes0xPrefix(kp.PrivateKeyBytes()).String())
	require.NoError(t, err)
	return signer
}

func newTestEngine[T any](t *testing.T, strategy Strategy, maxAttempts int) *testEngine[T] {
	ctx := context.Background()
	mEC := ethclientmocks.NewEthClient(t)
	mEC.On("ChainID").Return(testChainID).Maybe()

	te := &testEngine[T]{
		ctx:     ctx,
		ec:      mEC,
		signer:  newTestSigner(t),
		ledger:  NewLedger[T](10),
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	poller := NewReceiptPoller(mEC, &conf.PollerConfig{
		Interval:    confutil.P("1ms"),
		MaxAttempts: confutil.P(maxAttempts),
	})
	te.submitter = NewSubmitter[T](ctx, mEC, te.signer, poller, te.ledger, te.metrics, &SubmitterOptions{
		Strategy:         strategy,
		Fees:             BenchmarkFeePolicy(&conf.FeeConfig{}),
		BaselineGasPrice: big.NewInt(1000000000),
		GasLimit:         21000,
	})
	return te
}

// mockAcceptSend makes the node accept any raw transaction and return its real hash
func (te *testEngine[T]) mockAcceptSend() *mock.Call {
	return te.ec.On("SendRawTransaction", mock.Anything, mock.Anything).Return(
		func(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) ethtypes.HexBytes0xPrefix {
			return ethclient.CalculateTransactionHash(rawTX)
		}, nil)
}

func successReceipt() *ethclient.TransactionReceipt {
	return &ethclient.TransactionReceipt{
		Status:      ethtypes.NewHexInteger64(1),
		BlockNumber: ethtypes.NewHexInteger64(100),
		GasUsed:     ethtypes.NewHexInteger64(21000),
	}
}

func failedReceipt() *ethclient.TransactionReceipt {
	return &ethclient.TransactionReceipt{
		Status: ethtypes.NewHexInteger64(0),
	}
}

func decodeRaw(t *testing.T, rawTX ethtypes.HexBytes0xPrefix) *ethsigner.Transaction {
	_, decoded, err := ethsigner.RecoverRawTransaction(context.Background(), rawTX, testChainID)
	require.NoError(t, err)
	return decoded.Transaction
}
