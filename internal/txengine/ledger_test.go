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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMove int

func recordN(l *Ledger[testMove], from, to int, withPayload bool) {
	for i := from; i < to; i++ {
		e := &LedgerEntry[testMove]{
			Nonce:       uint64(i),
			Hash:        fmt.Sprintf("0x%02d", i),
			Status:      StatusPending,
			SubmittedAt: time.Now(),
		}
		if withPayload {
			p := testMove(i)
			e.Payload = &p
		}
		l.Record(e)
	}
}

func TestLedgerEvictsOldestFirst(t *testing.T) {
	l := NewLedger[testMove](10)
	var evicted []uint64
	l.OnEvict(func(e LedgerEntry[testMove]) { evicted = append(evicted, e.Nonce) })

	recordN(l, 0, 12, false)
	assert.Equal(t, 10, l.Len())
	assert.Equal(t, []uint64{0, 1}, evicted)

	snapshot := l.Snapshot()
	require.Len(t, snapshot, 10)
	assert.Equal(t, uint64(2), snapshot[0].Nonce)
	assert.Equal(t, uint64(11), snapshot[9].Nonce)

	// late updates for evicted entries are ignored, and do not resurrect them
	assert.False(t, l.UpdateStatus("0x00", StatusConfirmed, nil))
	assert.False(t, l.UpdateStatus("0x01", StatusFailed, nil))
	assert.Equal(t, 10, l.Len())
	assert.Equal(t, uint64(2), l.Snapshot()[0].Nonce)
}

func TestLedgerRemove(t *testing.T) {
	l := NewLedger[testMove](10)
	evictions := 0
	l.OnEvict(func(e LedgerEntry[testMove]) { evictions++ })
	recordN(l, 0, 3, true)

	assert.True(t, l.Remove(1))
	assert.False(t, l.Remove(1))
	assert.Equal(t, 0, evictions)

	snapshot := l.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, uint64(0), snapshot[0].Nonce)
	assert.Equal(t, uint64(2), snapshot[1].Nonce)
}

func TestLedgerEvictsRegardlessOfStatus(t *testing.T) {
	l := NewLedger[testMove](2)
	recordN(l, 0, 2, false)
	assert.True(t, l.UpdateStatus("0x01", StatusFailed, nil))
	recordN(l, 2, 4, false)

	snapshot := l.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, uint64(2), snapshot[0].Nonce)
	assert.Equal(t, uint64(3), snapshot[1].Nonce)
}

func TestLedgerStatusTransitionsOnce(t *testing.T) {
	l := NewLedger[testMove](10)
	recordN(l, 0, 1, false)

	after := 150 * time.Millisecond
	assert.True(t, l.UpdateStatus("0x00", StatusConfirmed, &after))
	assert.False(t, l.UpdateStatus("0x00", StatusFailed, nil))

	e := l.Snapshot()[0]
	assert.Equal(t, StatusConfirmed, e.Status)
	assert.Equal(t, after, *e.ConfirmedAfter)
	assert.False(t, l.UpdateStatus("0xff", StatusConfirmed, nil))
}

func TestLedgerSnapshotIsCopy(t *testing.T) {
	l := NewLedger[testMove](10)
	recordN(l, 0, 1, false)
	snapshot := l.Snapshot()
	snapshot[0].Status = StatusFailed
	assert.Equal(t, StatusPending, l.Snapshot()[0].Status)
}

func TestLedgerMarkApplied(t *testing.T) {
	l := NewLedger[testMove](10)
	recordN(l, 0, 2, true)
	recordN(l, 2, 3, false)

	// pending cannot be applied
	assert.False(t, l.MarkApplied(0))

	l.UpdateStatus("0x00", StatusConfirmed, nil)
	l.UpdateStatus("0x02", StatusConfirmed, nil)
	assert.True(t, l.MarkApplied(0))
	assert.False(t, l.MarkApplied(0))
	// no payload
	assert.False(t, l.MarkApplied(2))
	// not present
	assert.False(t, l.MarkApplied(99))
	assert.True(t, l.Snapshot()[0].Applied)
}

func TestLedgerTakeNextConfirmedInInsertionOrder(t *testing.T) {
	l := NewLedger[testMove](10)
	recordN(l, 0, 3, true)

	_, ok := l.TakeNextConfirmed()
	assert.False(t, ok)

	// later entry confirms first, earlier one still pending
	l.UpdateStatus("0x02", StatusConfirmed, nil)
	e, ok := l.TakeNextConfirmed()
	require.True(t, ok)
	assert.Equal(t, uint64(2), e.Nonce)

	l.UpdateStatus("0x00", StatusConfirmed, nil)
	l.UpdateStatus("0x01", StatusConfirmed, nil)
	e, ok = l.TakeNextConfirmed()
	require.True(t, ok)
	assert.Equal(t, testMove(0), *e.Payload)
	e, ok = l.TakeNextConfirmed()
	require.True(t, ok)
	assert.Equal(t, testMove(1), *e.Payload)
	_, ok = l.TakeNextConfirmed()
	assert.False(t, ok)
}

func TestLedgerAppliedExactlyOnceUnderRace(t *testing.T) {
	l := NewLedger[testMove](10)
	recordN(l, 0, 2, true)
	l.UpdateStatus("0x00", StatusConfirmed, nil)
	l.UpdateStatus("0x01", StatusConfirmed, nil)

	var lock sync.Mutex
	var applied []testMove
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if e, ok := l.TakeNextConfirmed(); ok {
				lock.Lock()
				applied = append(applied, *e.Payload)
				lock.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.ElementsMatch(t, []testMove{0, 1}, applied)
}

func TestLedgerReset(t *testing.T) {
	l := NewLedger[testMove](3)
	evictions := 0
	l.OnEvict(func(e LedgerEntry[testMove]) { evictions++ })
	recordN(l, 0, 3, false)
	l.Reset()
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, evictions)
	assert.Equal(t, 3, l.Capacity())
	assert.Equal(t, 1, NewLedger[testMove](0).Capacity())
}
