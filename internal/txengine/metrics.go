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
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

var METRICS_NAMESPACE = "txlatency"
var METRICS_SUBSYSTEM = "engine"

var latencyBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// Metrics is nil safe, so components can be run without a registry
type Metrics struct {
	submitted   *prometheus.CounterVec
	settled     *prometheus.CounterVec
	sendTime    *prometheus.HistogramVec
	confirmTime *prometheus.HistogramVec
	totalTime   *prometheus.HistogramVec
	inFlight    prometheus.Gauge
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Subsystem: METRICS_SUBSYSTEM,
			Name:      "submitted_total",
		}, []string{"strategy"}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Subsystem: METRICS_SUBSYSTEM,
			Name:      "settled_total",
		}, []string{"strategy", "status", "reason"}),
		sendTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: METRICS_NAMESPACE,
			Subsystem: METRICS_SUBSYSTEM,
			Name:      "send_duration_seconds",
			Buckets:   latencyBuckets,
		}, []string{"strategy"}),
		confirmTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: METRICS_NAMESPACE,
			Subsystem: METRICS_SUBSYSTEM,
			Name:      "confirm_duration_seconds",
			Buckets:   latencyBuckets,
		}, []string{"strategy"}),
		totalTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: METRICS_NAMESPACE,
			Subsystem: METRICS_SUBSYSTEM,
			Name:      "total_duration_seconds",
			Buckets:   latencyBuckets,
		}, []string{"strategy"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: METRICS_NAMESPACE,
			Subsystem: METRICS_SUBSYSTEM,
			Name:      "speculative_in_flight",
		}),
	}
	registerer.MustRegister(m.submitted, m.settled, m.sendTime, m.confirmTime, m.totalTime, m.inFlight)
	return m
}

func (m *Metrics) RecordSubmitted(strategy Strategy, sendTime time.Duration) {
	if m == nil {
		return
	}
	m.submitted.WithLabelValues(string(strategy)).Inc()
	m.sendTime.WithLabelValues(string(strategy)).Observe(sendTime.Seconds())
}

func (m *Metrics) RecordSettled(strategy Strategy, outcome *Outcome, total time.Duration) {
	if m == nil {
		return
	}
	m.settled.WithLabelValues(string(strategy), string(outcome.Status), string(outcome.Reason)).Inc()
	if outcome.Status == StatusConfirmed {
		m.confirmTime.WithLabelValues(string(strategy)).Observe(outcome.ConfirmTime.Seconds())
		m.totalTime.WithLabelValues(string(strategy)).Observe(total.Seconds())
	}
}

func (m *Metrics) SetInFlight(count int) {
	if m == nil {
		return
	}
	m.inFlight.Set(float64(count))
}

// SubmittedCount reads back the submission counter for a strategy
func (m *Metrics) SubmittedCount(strategy Strategy) float64 {
	if m == nil {
		return 0
	}
	return getMetricVal(m.submitted.WithLabelValues(string(strategy)))
}

func (m *Metrics) SettledCount(strategy Strategy, status Status, reason FailureReason) float64 {
	if m == nil {
		return 0
	}
	return getMetricVal(m.settled.WithLabelValues(string(strategy), string(status), string(reason)))
}

func getMetricVal(collector prometheus.Collector) float64 {
	collectorChannel := make(chan prometheus.Metric, 1)
	collector.Collect(collectorChannel)
	metric := dto.Metric{}
	err := (<-collectorChannel).Write(&metric)
	if err != nil {
		log.L(context.Background()).Errorf("error writing metric: %s", err)
	}
	if metric.Counter != nil {
		return *metric.Counter.Value
	} else if metric.Gauge != nil {
		return *metric.Gauge.Value
	}
	return 0
}
