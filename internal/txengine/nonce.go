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
	"sync"

	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/pkg/ethclient"
)

type NextNonceCallback func(ctx context.Context, signer string) (uint64, error)

// NonceSequencer hands out strictly increasing nonces for a single signing key.
// The starting value is read once from the node, then only ever advanced locally.
// A nonce assigned to an operation that later fails is not reused.
type NonceSequencer struct {
	lock sync.Mutex
	next uint64
}

func NewNonceSequencer(start uint64) *NonceSequencer {
	return &NonceSequencer{next: start}
}

// InitNonceSequencer queries the starting nonce. The lock is never held across this call.
func InitNonceSequencer(ctx context.Context, signer string, nextNonceCB NextNonceCallback) (*NonceSequencer, error) {
	start, err := nextNonceCB(ctx, signer)
	if err != nil {
		log.L(ctx).Errorf("failed to get next nonce for %s", signer)
		return nil, err
	}
	log.L(ctx).Debugf("nonce sequencer for %s starting at %d", signer, start)
	return NewNonceSequencer(start), nil
}

// NodeNonceCallback reads the confirmed transaction count of the signer
func NodeNonceCallback(ec ethclient.EthClient) NextNonceCallback {
	return func(ctx context.Context, signer string) (uint64, error) {
		count, err := ec.GetTransactionCount(ctx, signer, "latest")
		if err != nil {
			return 0, err
		}
		return count.Uint64(), nil
	}
}

func (ns *NonceSequencer) Next() uint64 {
	ns.lock.Lock()
	defer ns.lock.Unlock()
	value := ns.next
	ns.next++
	return value
}

// Peek returns the nonce the next call to Next will assign
func (ns *NonceSequencer) Peek() uint64 {
	ns.lock.Lock()
	defer ns.lock.Unlock()
	return ns.next
}
