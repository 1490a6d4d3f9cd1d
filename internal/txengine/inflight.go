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

import "sync"

// InFlight bounds the number of speculative operations that have been proposed
// but not yet applied or failed
type InFlight struct {
	lock     sync.Mutex
	count    int
	capacity int
}

func NewInFlight(capacity int) *InFlight {
	if capacity < 1 {
		capacity = 1
	}
	return &InFlight{capacity: capacity}
}

// TryAcquire takes a slot, or returns false without changing the count if none are free
func (f *InFlight) TryAcquire() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.count >= f.capacity {
		return false
	}
	f.count++
	return true
}

// Release never takes the count below zero
func (f *InFlight) Release() {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.count > 0 {
		f.count--
	}
}

func (f *InFlight) Count() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.count
}

func (f *InFlight) Capacity() int {
	return f.capacity
}

func (f *InFlight) Reset() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.count = 0
}
