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
)

// OperationBuilder turns a proposed payload into the operation submitted for it
type OperationBuilder[T any] func(nonce uint64, payload T) *Operation

type slot struct {
	once     sync.Once
	inflight *InFlight
}

func (s *slot) release() {
	s.once.Do(s.inflight.Release)
}

// discard consumes the slot without touching the counter
func (s *slot) discard() {
	s.once.Do(func() {})
}

// SpeculativeApplier submits payload-tagged operations in the background, and hands back
// the payloads of confirmed operations, oldest first, each exactly once.
//
// Every proposal holds one in-flight slot from submission until it is applied, fails,
// or drops out of the ledger. Each slot is released exactly once whichever of those
// happens first.
type SpeculativeApplier[T any] struct {
	nonces    *NonceSequencer
	submitter *Submitter[T]
	ledger    *Ledger[T]
	inflight  *InFlight
	metrics   *Metrics
	build     OperationBuilder[T]

	slotsLock  sync.Mutex
	slots      map[uint64]*slot
	generation uint64
	wg         sync.WaitGroup
}

func NewSpeculativeApplier[T any](nonces *NonceSequencer, submitter *Submitter[T], ledger *Ledger[T], inflight *InFlight, metrics *Metrics, build OperationBuilder[T]) *SpeculativeApplier[T] {
	sa := &SpeculativeApplier[T]{
		nonces:    nonces,
		submitter: submitter,
		ledger:    ledger,
		inflight:  inflight,
		metrics:   metrics,
		build:     build,
		slots:     make(map[uint64]*slot),
	}
	ledger.OnEvict(func(e LedgerEntry[T]) {
		if !e.Applied {
			log.L(context.Background()).Debugf("Nonce %d evicted from ledger before being applied (status=%s)", e.Nonce, e.Status)
			sa.releaseSlot(e.Nonce)
		}
	})
	return sa
}

// Propose submits the payload on a background goroutine. Returns false, with nothing
// submitted, when the in-flight limit has been reached.
func (sa *SpeculativeApplier[T]) Propose(ctx context.Context, payload T) bool {
	sa.slotsLock.Lock()
	if !sa.inflight.TryAcquire() {
		sa.slotsLock.Unlock()
		log.L(ctx).Debugf("In-flight limit %d reached, dropping proposal", sa.inflight.Capacity())
		return false
	}
	nonce := sa.nonces.Next()
	sa.slots[nonce] = &slot{inflight: sa.inflight}
	generation := sa.generation
	sa.slotsLock.Unlock()
	sa.metrics.SetInFlight(sa.inflight.Count())

	op := sa.build(nonce, payload)
	op.Nonce = nonce
	sa.wg.Add(1)
	go sa.run(ctx, op, payload, generation)
	return true
}

func (sa *SpeculativeApplier[T]) run(ctx context.Context, op *Operation, payload T, generation uint64) {
	defer sa.wg.Done()
	h, err := sa.submitter.Submit(ctx, op, &payload)
	if err != nil {
		log.L(ctx).Errorf("Speculative submission of nonce %d failed: %s", op.Nonce, err)
		sa.releaseSlot(op.Nonce)
		return
	}
	if sa.currentGeneration() != generation {
		// reset while the submission was running, the entry may have gone into the new ledger
		log.L(ctx).Debugf("Dropping nonce %d proposed before reset", op.Nonce)
		sa.ledger.Remove(op.Nonce)
	}
	outcome, err := h.Wait(ctx)
	if err != nil || outcome.Status != StatusConfirmed {
		sa.releaseSlot(op.Nonce)
	}
	// confirmed operations keep their slot until applied
}

// Next returns the payload of the oldest confirmed operation that has not yet been applied,
// marking it applied. Only one caller can ever receive a given payload.
func (sa *SpeculativeApplier[T]) Next() (T, bool) {
	for {
		entry, ok := sa.ledger.TakeNextConfirmed()
		if !ok {
			var zero T
			return zero, false
		}
		// an entry with no slot was proposed before the last reset
		if sa.releaseSlot(entry.Nonce) {
			return *entry.Payload, true
		}
		log.L(context.Background()).Debugf("Skipping nonce %d proposed before reset", entry.Nonce)
	}
}

func (sa *SpeculativeApplier[T]) InFlight() int {
	return sa.inflight.Count()
}

func (sa *SpeculativeApplier[T]) Capacity() int {
	return sa.inflight.Capacity()
}

func (sa *SpeculativeApplier[T]) Ledger() *Ledger[T] {
	return sa.ledger
}

// Reset clears the ledger and the in-flight count, and starts a new generation.
// Operations still in flight continue but no longer hold a slot, and their payloads
// are never returned by Next.
func (sa *SpeculativeApplier[T]) Reset() {
	sa.slotsLock.Lock()
	sa.generation++
	for nonce, s := range sa.slots {
		s.discard()
		delete(sa.slots, nonce)
	}
	sa.ledger.Reset()
	sa.inflight.Reset()
	sa.slotsLock.Unlock()
	sa.metrics.SetInFlight(0)
}

// Wait blocks until every background submission has settled
func (sa *SpeculativeApplier[T]) Wait() {
	sa.wg.Wait()
}

func (sa *SpeculativeApplier[T]) currentGeneration() uint64 {
	sa.slotsLock.Lock()
	defer sa.slotsLock.Unlock()
	return sa.generation
}

// releaseSlot returns false if the nonce held no slot of the current generation
func (sa *SpeculativeApplier[T]) releaseSlot(nonce uint64) bool {
	sa.slotsLock.Lock()
	s := sa.slots[nonce]
	delete(sa.slots, nonce)
	if s != nil {
		s.release()
	}
	count := sa.inflight.Count()
	sa.slotsLock.Unlock()
	if s == nil {
		return false
	}
	sa.metrics.SetInFlight(count)
	return true
}
