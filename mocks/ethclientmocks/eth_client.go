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

package ethclientmocks

import (
	"context"

	"github.com/SmoothBot/tx-latency-bench/pkg/ethclient"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/stretchr/testify/mock"
)

// EthClient is a mock type for the ethclient.EthClient type
type EthClient struct {
	mock.Mock
}

// ChainID provides a mock function with no fields
func (_m *EthClient) ChainID() int64 {
	ret := _m.Called()

	var r0 int64
	if rf, ok := ret.Get(0).(func() int64); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(int64)
	}
	return r0
}

// URL provides a mock function with no fields
func (_m *EthClient) URL() string {
	ret := _m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}
	return r0
}

// GasPrice provides a mock function with given fields: ctx
func (_m *EthClient) GasPrice(ctx context.Context) (*ethtypes.HexInteger, error) {
	ret := _m.Called(ctx)

	var r0 *ethtypes.HexInteger
	if rf, ok := ret.Get(0).(func(context.Context) *ethtypes.HexInteger); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*ethtypes.HexInteger)
	}
	return r0, ret.Error(1)
}

// GetBalance provides a mock function with given fields: ctx, address, block
func (_m *EthClient) GetBalance(ctx context.Context, address string, block string) (*ethtypes.HexInteger, error) {
	ret := _m.Called(ctx, address, block)

	var r0 *ethtypes.HexInteger
	if rf, ok := ret.Get(0).(func(context.Context, string, string) *ethtypes.HexInteger); ok {
		r0 = rf(ctx, address, block)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*ethtypes.HexInteger)
	}
	return r0, ret.Error(1)
}

// GetTransactionCount provides a mock function with given fields: ctx, fromAddr, block
func (_m *EthClient) GetTransactionCount(ctx context.Context, fromAddr string, block string) (*ethtypes.HexUint64, error) {
	ret := _m.Called(ctx, fromAddr, block)

	var r0 *ethtypes.HexUint64
	if rf, ok := ret.Get(0).(func(context.Context, string, string) *ethtypes.HexUint64); ok {
		r0 = rf(ctx, fromAddr, block)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*ethtypes.HexUint64)
	}
	return r0, ret.Error(1)
}

// GetTransactionReceipt provides a mock function with given fields: ctx, txHash
func (_m *EthClient) GetTransactionReceipt(ctx context.Context, txHash string) (*ethclient.TransactionReceipt, error) {
	ret := _m.Called(ctx, txHash)

	var r0 *ethclient.TransactionReceipt
	if rf, ok := ret.Get(0).(func(context.Context, string) *ethclient.TransactionReceipt); ok {
		r0 = rf(ctx, txHash)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*ethclient.TransactionReceipt)
	}
	return r0, ret.Error(1)
}

// SendRawTransaction provides a mock function with given fields: ctx, rawTX
func (_m *EthClient) SendRawTransaction(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (ethtypes.HexBytes0xPrefix, error) {
	ret := _m.Called(ctx, rawTX)

	var r0 ethtypes.HexBytes0xPrefix
	if rf, ok := ret.Get(0).(func(context.Context, ethtypes.HexBytes0xPrefix) ethtypes.HexBytes0xPrefix); ok {
		r0 = rf(ctx, rawTX)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(ethtypes.HexBytes0xPrefix)
	}
	return r0, ret.Error(1)
}

// SendRawTransactionSync provides a mock function with given fields: ctx, rawTX
func (_m *EthClient) SendRawTransactionSync(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (*ethclient.TransactionReceipt, error) {
	ret := _m.Called(ctx, rawTX)

	var r0 *ethclient.TransactionReceipt
	if rf, ok := ret.Get(0).(func(context.Context, ethtypes.HexBytes0xPrefix) *ethclient.TransactionReceipt); ok {
		r0 = rf(ctx, rawTX)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*ethclient.TransactionReceipt)
	}
	return r0, ret.Error(1)
}

// SendRawTransactionRealtime provides a mock function with given fields: ctx, rawTX
func (_m *EthClient) SendRawTransactionRealtime(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (*ethclient.TransactionReceipt, error) {
	ret := _m.Called(ctx, rawTX)

	var r0 *ethclient.TransactionReceipt
	if rf, ok := ret.Get(0).(func(context.Context, ethtypes.HexBytes0xPrefix) *ethclient.TransactionReceipt); ok {
		r0 = rf(ctx, rawTX)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*ethclient.TransactionReceipt)
	}
	return r0, ret.Error(1)
}

// NewEthClient creates a new instance of EthClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewEthClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *EthClient {
	m := &EthClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
