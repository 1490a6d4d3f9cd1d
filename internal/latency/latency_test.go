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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/txengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func testSamples() []Sample {
	return []Sample{
		{Index: 1, Nonce: 5, Hash: "0x01", Status: txengine.StatusConfirmed, Send: ms(10), Confirm: ms(300), Total: ms(310)},
		{Index: 2, Nonce: 6, Hash: "0x02", Status: txengine.StatusConfirmed, Send: ms(20) + 900*time.Microsecond, Confirm: ms(400), Total: ms(421)},
		{Index: 3, Nonce: 7, Hash: "0x03", Status: txengine.StatusFailed, Reason: "reverted", Send: ms(15), Confirm: ms(101), Total: ms(116)},
		{Index: 4, Nonce: 8, Status: "error", Reason: "transport"},
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s)
}

func TestSummarizeSettledOnly(t *testing.T) {
	s := Summarize(testSamples())
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.Confirmed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Errored)

	// 20.9ms truncates to 20ms before aggregation
	assert.Equal(t, Stat{Min: 10, Max: 20, Avg: 15}, s.Send)
	assert.Equal(t, Stat{Min: 101, Max: 400, Avg: 267}, s.Confirm)
	assert.Equal(t, Stat{Min: 116, Max: 421, Avg: 282}, s.Total)
}

func TestSummarizeOrdering(t *testing.T) {
	samples := []Sample{}
	for i := 1; i <= 25; i++ {
		samples = append(samples, Sample{
			Index:   i,
			Status:  txengine.StatusConfirmed,
			Send:    ms(i*7%13) + 333*time.Microsecond,
			Confirm: ms(i * i % 97),
			Total:   ms(i*7%13 + i*i%97),
		})
	}
	s := Summarize(samples)
	for _, st := range []Stat{s.Send, s.Confirm, s.Total} {
		assert.LessOrEqual(t, st.Min, st.Avg)
		assert.LessOrEqual(t, st.Avg, st.Max)
	}
}

func TestSummarizeSyncStrategy(t *testing.T) {
	// synchronous strategies report no confirm time, and total equals send
	s := Summarize([]Sample{
		{Index: 1, Status: txengine.StatusFailed, Send: ms(42), Total: ms(42)},
	})
	assert.Equal(t, Stat{}, s.Confirm)
	assert.Equal(t, s.Send, s.Total)
}

func TestWriteReport(t *testing.T) {
	samples := testSamples()
	buf := new(bytes.Buffer)
	WriteReport(buf, samples, Summarize(samples), ms(1234))
	out := buf.String()
	assert.Contains(t, out, "TX#")
	assert.Contains(t, out, "HASH")
	assert.Contains(t, out, "LATENCY STATISTICS:")
	assert.Contains(t, out, "failed(reverted)")
	assert.Contains(t, out, "error(transport)")
	assert.Regexp(t, "Send time:\\s+10\\s+20\\s+15", out)
	assert.Contains(t, out, "SUMMARY: 3 transactions sent and settled sequentially in 1234 ms (confirmed: 2, failed: 1, errored: 1) (min: 116 ms, max: 421 ms, avg: 282 ms)")
}

func TestWriteReportNothingSettled(t *testing.T) {
	samples := []Sample{{Index: 1, Status: "error"}}
	buf := new(bytes.Buffer)
	WriteReport(buf, samples, Summarize(samples), ms(5))
	assert.NotContains(t, buf.String(), "LATENCY STATISTICS")
	assert.Contains(t, buf.String(), "no transactions settled in 5 ms (1 errored)")
}

func TestExportJSON(t *testing.T) {
	ctx := context.Background()
	samples := testSamples()
	r := NewReport(samples, Summarize(samples), ms(1000))
	r.RunID = "run1"
	r.Strategy = "async"

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, r.Export(ctx, path, "JSON"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &parsed))
	assert.Equal(t, "run1", parsed["runId"])
	assert.Equal(t, float64(1000), parsed["batchElapsedMs"])
	first := parsed["samples"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "0x01", first["hash"])
	assert.Equal(t, float64(310), first["totalMs"])
	assert.Equal(t, "confirmed", first["status"])
}

func TestExportYAML(t *testing.T) {
	ctx := context.Background()
	samples := testSamples()
	r := NewReport(samples, Summarize(samples), ms(1000))

	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, r.Export(ctx, path, "yaml"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var parsed struct {
		Summary Summary `yaml:"summary"`
		Samples []struct {
			Nonce   uint64 `yaml:"nonce"`
			TotalMS int64  `yaml:"totalMs"`
		} `yaml:"samples"`
	}
	require.NoError(t, yaml.Unmarshal(b, &parsed))
	assert.Equal(t, 3, parsed.Summary.Count)
	assert.Len(t, parsed.Samples, 4)
	assert.Equal(t, uint64(6), parsed.Samples[1].Nonce)
	assert.Equal(t, int64(421), parsed.Samples[1].TotalMS)
}

func TestExportErrors(t *testing.T) {
	ctx := context.Background()
	r := NewReport(nil, Summary{}, 0)
	err := r.Export(ctx, filepath.Join(t.TempDir(), "r.csv"), "csv")
	assert.Regexp(t, "TL010302", err)

	err = r.Export(ctx, filepath.Join(t.TempDir(), "missing", "r.json"), "json")
	assert.Regexp(t, "TL010301", err)
}

func TestParseFormat(t *testing.T) {
	ctx := context.Background()
	for in, expected := range map[string]string{"json": FormatJSON, "JSON": FormatJSON, " Yaml ": FormatYAML} {
		f, err := ParseFormat(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, expected, f)
	}
	_, err := ParseFormat(ctx, "xml")
	assert.Regexp(t, "TL010302.*xml", err)
}
