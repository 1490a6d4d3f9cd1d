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

package latency

import (
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/txengine"
)

// Sample is the timing record of one submitted operation
type Sample struct {
	Index   int             `json:"index" yaml:"index"`
	Nonce   uint64          `json:"nonce" yaml:"nonce"`
	Hash    string          `json:"hash,omitempty" yaml:"hash,omitempty"`
	Status  txengine.Status `json:"status" yaml:"status"`
	Reason  string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	Send    time.Duration   `json:"-" yaml:"-"`
	Confirm time.Duration   `json:"-" yaml:"-"`
	Total   time.Duration   `json:"-" yaml:"-"`
}

// Settled samples are the ones included in the statistics. A sample that never reached
// the node (transport or signing error on submission) is reported but not measured.
func (s *Sample) Settled() bool {
	return s.Status == txengine.StatusConfirmed || s.Status == txengine.StatusFailed
}

// Stat values are whole milliseconds
type Stat struct {
	Min int64 `json:"min" yaml:"min"`
	Max int64 `json:"max" yaml:"max"`
	Avg int64 `json:"avg" yaml:"avg"`
}

type Summary struct {
	Count     int  `json:"count" yaml:"count"`
	Confirmed int  `json:"confirmed" yaml:"confirmed"`
	Failed    int  `json:"failed" yaml:"failed"`
	Errored   int  `json:"errored" yaml:"errored"`
	Send      Stat `json:"send" yaml:"send"`
	Confirm   Stat `json:"confirm" yaml:"confirm"`
	Total     Stat `json:"total" yaml:"total"`
}

// Summarize computes min/max/avg independently for the three intervals over the settled
// samples. Every interval is truncated to milliseconds before aggregation, and the average
// is the truncated integer mean, so min <= avg <= max always holds.
func Summarize(samples []Sample) Summary {
	var s Summary
	var send, confirm, total []int64
	for i := range samples {
		sample := &samples[i]
		switch sample.Status {
		case txengine.StatusConfirmed:
			s.Confirmed++
		case txengine.StatusFailed:
			s.Failed++
		default:
			s.Errored++
		}
		if !sample.Settled() {
			continue
		}
		send = append(send, sample.Send.Milliseconds())
		confirm = append(confirm, sample.Confirm.Milliseconds())
		total = append(total, sample.Total.Milliseconds())
	}
	s.Count = len(send)
	s.Send = stat(send)
	s.Confirm = stat(confirm)
	s.Total = stat(total)
	return s
}

func stat(values []int64) Stat {
	if len(values) == 0 {
		return Stat{}
	}
	st := Stat{Min: values[0], Max: values[0]}
	var sum int64
	for _, v := range values {
		if v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
		}
		sum += v
	}
	st.Avg = sum / int64(len(values))
	return st
}
