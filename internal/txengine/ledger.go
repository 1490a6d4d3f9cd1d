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
	"sync"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// LedgerEntry tracks one submitted operation. Payload is an optional tag carried for the
// speculative path, and Applied is set once the payload effect has been applied.
type LedgerEntry[T any] struct {
	Nonce          uint64
	Hash           string
	Status         Status
	SubmittedAt    time.Time
	ConfirmedAfter *time.Duration
	Payload        *T
	Applied        bool
}

// Ledger is a bounded FIFO of recent submissions, oldest first.
// Status only moves from pending to a terminal state once, and an entry that has
// been evicted is never resurrected by a late status update.
type Ledger[T any] struct {
	lock     sync.Mutex
	capacity int
	entries  []*LedgerEntry[T]
	onEvict  func(LedgerEntry[T])
}

func NewLedger[T any](capacity int) *Ledger[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ledger[T]{
		capacity: capacity,
		entries:  make([]*LedgerEntry[T], 0, capacity+1),
	}
}

// OnEvict registers a callback, invoked outside the ledger lock, for each entry dropped
// off the front of the ledger
func (l *Ledger[T]) OnEvict(fn func(LedgerEntry[T])) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.onEvict = fn
}

func (l *Ledger[T]) Capacity() int {
	return l.capacity
}

func (l *Ledger[T]) Record(entry *LedgerEntry[T]) {
	var evicted []LedgerEntry[T]
	l.lock.Lock()
	stored := *entry
	l.entries = append(l.entries, &stored)
	for len(l.entries) > l.capacity {
		evicted = append(evicted, *l.entries[0])
		l.entries[0] = nil
		l.entries = l.entries[1:]
	}
	onEvict := l.onEvict
	l.lock.Unlock()

	if onEvict != nil {
		for _, e := range evicted {
			onEvict(e)
		}
	}
}

// UpdateStatus settles a pending entry. Returns false if the entry is no longer in
// the ledger, or was already settled.
func (l *Ledger[T]) UpdateStatus(hash string, status Status, confirmedAfter *time.Duration) bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, e := range l.entries {
		if e.Hash == hash {
			if e.Status != StatusPending {
				return false
			}
			e.Status = status
			e.ConfirmedAfter = confirmedAfter
			return true
		}
	}
	return false
}

// MarkApplied returns true only for the call that moved the entry to applied
func (l *Ledger[T]) MarkApplied(nonce uint64) bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, e := range l.entries {
		if e.Nonce == nonce {
			if e.Applied || e.Status != StatusConfirmed || e.Payload == nil {
				return false
			}
			e.Applied = true
			return true
		}
	}
	return false
}

// TakeNextConfirmed finds the oldest confirmed entry with a payload that has not been applied,
// and marks it applied in the same critical section
func (l *Ledger[T]) TakeNextConfirmed() (LedgerEntry[T], bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, e := range l.entries {
		if e.Status == StatusConfirmed && e.Payload != nil && !e.Applied {
			e.Applied = true
			return *e, true
		}
	}
	return LedgerEntry[T]{}, false
}

// Remove drops the entry for a nonce without invoking the eviction callback
func (l *Ledger[T]) Remove(nonce uint64) bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	for i, e := range l.entries {
		if e.Nonce == nonce {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (l *Ledger[T]) Snapshot() []LedgerEntry[T] {
	l.lock.Lock()
	defer l.lock.Unlock()
	snapshot := make([]LedgerEntry[T], len(l.entries))
	for i, e := range l.entries {
		snapshot[i] = *e
	}
	return snapshot
}

func (l *Ledger[T]) Len() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.entries)
}

// Reset drops every entry without invoking the eviction callback
func (l *Ledger[T]) Reset() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.entries = make([]*LedgerEntry[T], 0, l.capacity+1)
}
