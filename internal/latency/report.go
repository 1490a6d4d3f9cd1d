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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteReport prints the per-transaction table, then the statistics block and summary line.
// Failed and errored samples appear in the table with their status.
func WriteReport(w io.Writer, samples []Sample, summary Summary, batchElapsed time.Duration) {
	fmt.Fprintf(w, "\n===== SUMMARY =====\n")
	fmt.Fprintf(w, "Total time for all transactions: %s\n\n", batchElapsed)

	fmt.Fprintf(w, "Individual Transaction Results:\n")
	fmt.Fprintf(w, "%-5s %-12s %-12s %-12s %-10s %-66s\n", "TX#", "SEND (ms)", "CONFIRM (ms)", "TOTAL (ms)", "STATUS", "HASH")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, s := range samples {
		status := string(s.Status)
		if s.Reason != "" {
			status = fmt.Sprintf("%s(%s)", status, s.Reason)
		}
		fmt.Fprintf(w, "%-5d %-12d %-12d %-12d %-10s %-66s\n",
			s.Index, s.Send.Milliseconds(), s.Confirm.Milliseconds(), s.Total.Milliseconds(), status, s.Hash)
	}

	if summary.Count == 0 {
		fmt.Fprintf(w, "\nSUMMARY: no transactions settled in %d ms (%d errored)\n", batchElapsed.Milliseconds(), summary.Errored)
		return
	}

	fmt.Fprintf(w, "\nLATENCY STATISTICS:\n")
	fmt.Fprintf(w, "%-13s %-10s %-10s %-10s\n", "", "MIN (ms)", "MAX (ms)", "AVG (ms)")
	fmt.Fprintln(w, strings.Repeat("-", 45))
	fmt.Fprintf(w, "%-13s %-10d %-10d %-10d\n", "Send time:", summary.Send.Min, summary.Send.Max, summary.Send.Avg)
	fmt.Fprintf(w, "%-13s %-10d %-10d %-10d\n", "Confirm time:", summary.Confirm.Min, summary.Confirm.Max, summary.Confirm.Avg)
	fmt.Fprintf(w, "%-13s %-10d %-10d %-10d\n", "Total time:", summary.Total.Min, summary.Total.Max, summary.Total.Avg)

	fmt.Fprintf(w, "\nSUMMARY: %d transactions sent and settled sequentially in %d ms (confirmed: %d, failed: %d, errored: %d) (min: %d ms, max: %d ms, avg: %d ms)\n",
		summary.Count, batchElapsed.Milliseconds(), summary.Confirmed, summary.Failed, summary.Errored,
		summary.Total.Min, summary.Total.Max, summary.Total.Avg)
}

type SampleRecord struct {
	Sample    `json:",inline" yaml:",inline"`
	SendMS    int64 `json:"sendMs" yaml:"sendMs"`
	ConfirmMS int64 `json:"confirmMs" yaml:"confirmMs"`
	TotalMS   int64 `json:"totalMs" yaml:"totalMs"`
}

// Report is the exported form of a benchmark run
type Report struct {
	RunID          string         `json:"runId" yaml:"runId"`
	Strategy       string         `json:"strategy" yaml:"strategy"`
	RPCURL         string         `json:"rpcUrl" yaml:"rpcUrl"`
	ChainID        int64          `json:"chainId" yaml:"chainId"`
	StartTime      time.Time      `json:"startTime" yaml:"startTime"`
	BatchElapsedMS int64          `json:"batchElapsedMs" yaml:"batchElapsedMs"`
	Summary        Summary        `json:"summary" yaml:"summary"`
	Samples        []SampleRecord `json:"samples" yaml:"samples"`
}

func NewReport(samples []Sample, summary Summary, batchElapsed time.Duration) *Report {
	r := &Report{
		BatchElapsedMS: batchElapsed.Milliseconds(),
		Summary:        summary,
		Samples:        make([]SampleRecord, len(samples)),
	}
	for i, s := range samples {
		r.Samples[i] = SampleRecord{
			Sample:    s,
			SendMS:    s.Send.Milliseconds(),
			ConfirmMS: s.Confirm.Milliseconds(),
			TotalMS:   s.Total.Milliseconds(),
		}
	}
	return r
}

// ParseFormat accepts json or yaml in any case, and returns the lower case name
func ParseFormat(ctx context.Context, format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", i18n.NewError(ctx, msgs.MsgReportFormatInvalid, format)
	}
}

func (r *Report) Marshal(ctx context.Context, format string) ([]byte, error) {
	f, err := ParseFormat(ctx, format)
	if err != nil {
		return nil, err
	}
	if f == FormatYAML {
		return yaml.Marshal(r)
	}
	return json.MarshalIndent(r, "", "  ")
}

// Export writes the report to a file in json or yaml format
func (r *Report) Export(ctx context.Context, path string, format string) error {
	b, err := r.Marshal(ctx, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgReportWriteFailed, path)
	}
	log.L(ctx).Infof("Report written to %s (%s)", path, format)
	return nil
}
