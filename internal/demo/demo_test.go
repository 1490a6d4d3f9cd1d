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

package demo

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"math/rand"
	"testing"
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/session"
	"github.com/SmoothBot/tx-latency-bench/internal/snake"
	"github.com/SmoothBot/tx-latency-bench/internal/txengine"
	"github.com/SmoothBot/tx-latency-bench/mocks/ethclientmocks"
	"github.com/SmoothBot/tx-latency-bench/pkg/ethclient"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testChainID = int64(12345)

func newTestController(t *testing.T) (*Controller, *ethclientmocks.EthClient) {
	kp, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)
	signer, err := ethclient.NewKeySigner(context.Background(), ethtypes.HexBytes0xPrefix(kp.PrivateKeyBytes()).String())
	require.NoError(t, err)

	ec := ethclientmocks.NewEthClient(t)
	ec.On("ChainID").Return(testChainID).Maybe()
	sess := &session.Session{
		Client:           ec,
		Signer:           signer,
		Strategy:         txengine.StrategySyncOnce,
		Fees:             txengine.DemoFeePolicy(&conf.FeeConfig{}),
		Nonces:           txengine.NewNonceSequencer(0),
		BaselineGasPrice: big.NewInt(1000000000),
		GasLimit:         21000,
	}
	c := NewController(context.Background(), &conf.Config{}, sess, nil, rand.New(rand.NewSource(1)))
	return c, ec
}

// syncReceipts makes the node confirm every transaction synchronously, reporting the move it carried
func syncReceipts(t *testing.T, ec *ethclientmocks.EthClient, values chan<- int64) {
	ec.On("SendRawTransactionSync", mock.Anything, mock.Anything).Return(&ethclient.TransactionReceipt{
		Status: ethtypes.NewHexInteger64(1),
	}, nil).Run(func(args mock.Arguments) {
		_, decoded, err := ethsigner.RecoverRawTransaction(context.Background(), args[1].(ethtypes.HexBytes0xPrefix), testChainID)
		assert.NoError(t, err)
		if values != nil {
			values <- decoded.Transaction.Value.Int64()
		}
	})
}

func TestParseKeys(t *testing.T) {
	assert.Equal(t, []Key{KeyUp, KeyDown, KeyRight, KeyLeft}, ParseKeys([]byte("\x1b[A\x1b[B\x1b[C\x1b[D")))
	assert.Equal(t, []Key{KeyUp}, ParseKeys([]byte("\x1bOA")))
	assert.Equal(t, []Key{KeyQuit, KeyQuit, KeyReset, KeyReset, KeyQuit}, ParseKeys([]byte("qQrR\x03")))
	assert.Empty(t, ParseKeys([]byte("x\x1b")))

	d, ok := KeyLeft.Direction()
	assert.True(t, ok)
	assert.Equal(t, snake.Left, d)
	_, ok = KeyQuit.Direction()
	assert.False(t, ok)
}

func TestReadKeys(t *testing.T) {
	keys := make(chan Key, 10)
	ReadKeys(context.Background(), bytes.NewReader([]byte("\x1b[Aq")), keys)
	assert.Equal(t, KeyUp, <-keys)
	assert.Equal(t, KeyQuit, <-keys)
	_, ok := <-keys
	assert.False(t, ok)
}

func TestControllerAppliesConfirmedMove(t *testing.T) {
	ctx := context.Background()
	c, ec := newTestController(t)
	values := make(chan int64, 1)
	syncReceipts(t, ec, values)

	assert.True(t, c.Move(ctx, snake.Up))
	assert.Equal(t, int64(snake.Up), <-values)
	c.Wait()

	v := c.View()
	require.Len(t, v.Transactions, 1)
	assert.Equal(t, txengine.StatusConfirmed, v.Transactions[0].Status)
	assert.Equal(t, 1, v.Pending)

	head := v.Body[0]
	c.Tick(ctx)
	v = c.View()
	assert.Equal(t, snake.Position{X: head.X, Y: head.Y - 1}, v.Body[0])
	assert.Equal(t, 0, v.Pending)
	assert.True(t, v.Transactions[0].Applied)
}

func TestControllerRejectsReverseAndGameOver(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t)

	// heading right, so left is a reversal and nothing is submitted
	assert.False(t, c.Move(ctx, snake.Left))

	for !c.View().GameOver {
		c.Tick(ctx)
	}
	assert.False(t, c.Move(ctx, snake.Up))
	assert.Equal(t, 0, c.View().Pending)
}

func TestControllerPendingLimit(t *testing.T) {
	ctx := context.Background()
	c, ec := newTestController(t)
	gate := make(chan struct{})
	ec.On("SendRawTransactionSync", mock.Anything, mock.Anything).Return(&ethclient.TransactionReceipt{
		Status: ethtypes.NewHexInteger64(1),
	}, nil).Run(func(args mock.Arguments) {
		<-gate
	})

	for i := 0; i < 4; i++ {
		assert.True(t, c.Move(ctx, snake.Down))
	}
	assert.False(t, c.Move(ctx, snake.Down))
	assert.Equal(t, 4, c.View().Pending)

	close(gate)
	c.Wait()
	c.Reset(ctx)
	v := c.View()
	assert.Equal(t, 0, v.Pending)
	assert.Empty(t, v.Transactions)
	assert.Equal(t, 0, v.Score)
}

func TestRender(t *testing.T) {
	confirmedAfter := 42 * time.Millisecond
	v := &View{
		Width:    4,
		Height:   4,
		Body:     []snake.Position{{X: 1, Y: 1}, {X: 0, Y: 1}},
		Food:     snake.Position{X: 3, Y: 3},
		Score:    10,
		Speed:    200 * time.Millisecond,
		Strategy: txengine.StrategyPolled,
		Pending:  2,
		Transactions: []txengine.LedgerEntry[snake.Direction]{
			{Nonce: 7, Status: txengine.StatusConfirmed, ConfirmedAfter: &confirmedAfter},
			{Nonce: 8, Status: txengine.StatusPending},
			{Nonce: 9, Status: txengine.StatusFailed},
		},
		MaxPending: 4,
		GameOver:   true,
	}
	buf := new(bytes.Buffer)
	require.NoError(t, Render(buf, v))
	out := buf.String()
	assert.Contains(t, out, "ONCHAIN SNAKE GAME")
	assert.Contains(t, out, "+--------+")
	assert.Contains(t, out, "@@")
	assert.Contains(t, out, "##")
	assert.Contains(t, out, "**")
	assert.Contains(t, out, "Nonce | Status     | Time")
	assert.Contains(t, out, "42ms")
	assert.Contains(t, out, "    8 | ")
	assert.Contains(t, out, "Failed")
	assert.Contains(t, out, "Score: 10 | Speed: 200 | Method: async")
	assert.Contains(t, out, "Pending Moves: 2/4")
	assert.Contains(t, out, "GAME OVER! Press R to restart")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("pop")
}

func TestRunQuitsOnKey(t *testing.T) {
	ctx := context.Background()
	c, ec := newTestController(t)
	syncReceipts(t, ec, nil)

	keys := make(chan Key, 3)
	keys <- KeyUp
	keys <- KeyReset
	keys <- KeyQuit
	out := new(bytes.Buffer)
	require.NoError(t, Run(ctx, c, keys, out, time.Millisecond))
	c.Wait()
	assert.Contains(t, out.String(), "ONCHAIN SNAKE GAME")
}

func TestRunClosedKeys(t *testing.T) {
	c, _ := newTestController(t)
	keys := make(chan Key)
	close(keys)
	require.NoError(t, Run(context.Background(), c, keys, new(bytes.Buffer), time.Millisecond))
}

func TestRunRenderError(t *testing.T) {
	c, _ := newTestController(t)
	err := Run(context.Background(), c, make(chan Key), failingWriter{}, time.Millisecond)
	assert.Regexp(t, "pop", err)
}
