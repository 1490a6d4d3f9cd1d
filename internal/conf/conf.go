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

package conf

import "github.com/SmoothBot/tx-latency-bench/internal/confutil"

type Config struct {
	RPC         HTTPClientConfig  `json:"rpc"`
	SigningKey  string            `json:"signingKey"`
	Strategy    *string           `json:"strategy"`
	Fees        FeeConfig         `json:"fees"`
	Poller      PollerConfig      `json:"poller"`
	Ledger      LedgerConfig      `json:"ledger"`
	Speculative SpeculativeConfig `json:"speculative"`
	Bench       BenchConfig       `json:"bench"`
	Snake       SnakeConfig       `json:"snake"`
	Metrics     MetricsConfig     `json:"metrics"`
	Log         LogConfig         `json:"log"`
}

type HTTPClientConfig struct {
	URL               string  `json:"url"`
	RequestTimeout    *string `json:"requestTimeout,omitempty"`
	ConnectionTimeout *string `json:"connectionTimeout,omitempty"`
}

type FeeConfig struct {
	// multiplier applied to eth_gasPrice for the benchmark
	BenchMultiplier *int64 `json:"benchMultiplier"`
	// multiplier applied to eth_gasPrice for the interactive demo
	DemoMultiplier *int64 `json:"demoMultiplier"`
	// used when the node reports a gas price of zero (wei)
	Floor *string `json:"floor"`
	// max priority fee for EIP-1559 submissions (wei)
	PriorityFee *string `json:"priorityFee"`
	GasLimit    *int64  `json:"gasLimit"`
}

type PollerConfig struct {
	Interval    *string `json:"interval"`
	MaxAttempts *int    `json:"maxAttempts"`
}

type LedgerConfig struct {
	Capacity *int `json:"capacity"`
}

type SpeculativeConfig struct {
	MaxInFlight *int `json:"maxInFlight"`
}

type BenchConfig struct {
	Transactions            *int    `json:"transactions"`
	MaxSubmissionsPerSecond *int    `json:"maxSubmissionsPerSecond"`
	ReportFile              *string `json:"reportFile"`
	ReportFormat            *string `json:"reportFormat"`
}

type SnakeConfig struct {
	Width        *int    `json:"width"`
	Height       *int    `json:"height"`
	TickInterval *string `json:"tickInterval"`
	MinInterval  *string `json:"minInterval"`
}

type MetricsConfig struct {
	Enabled         *bool   `json:"enabled"`
	Address         *string `json:"address"`
	Port            *int    `json:"port"`
	ShutdownTimeout *string `json:"shutdownTimeout"`
}

var Defaults = &Config{
	RPC: HTTPClientConfig{
		RequestTimeout:    confutil.P("30s"),
		ConnectionTimeout: confutil.P("30s"),
	},
	Strategy: confutil.P("async"),
	Fees: FeeConfig{
		BenchMultiplier: confutil.P(int64(3)),
		DemoMultiplier:  confutil.P(int64(2)),
		Floor:           confutil.P("1000000000"),
		PriorityFee:     confutil.P("1000000000"),
		GasLimit:        confutil.P(int64(21000)),
	},
	Poller: PollerConfig{
		Interval:    confutil.P("100ms"),
		MaxAttempts: confutil.P(300),
	},
	Ledger: LedgerConfig{
		Capacity: confutil.P(10),
	},
	Speculative: SpeculativeConfig{
		MaxInFlight: confutil.P(4),
	},
	Bench: BenchConfig{
		Transactions:            confutil.P(10),
		MaxSubmissionsPerSecond: confutil.P(0),
		ReportFormat:            confutil.P("json"),
	},
	Snake: SnakeConfig{
		Width:        confutil.P(20),
		Height:       confutil.P(20),
		TickInterval: confutil.P("200ms"),
		MinInterval:  confutil.P("50ms"),
	},
	Metrics: MetricsConfig{
		Enabled:         confutil.P(false),
		Address:         confutil.P("127.0.0.1"),
		Port:            confutil.P(9100),
		ShutdownTimeout: confutil.P("10s"),
	},
	Log: *LogDefaults,
}
