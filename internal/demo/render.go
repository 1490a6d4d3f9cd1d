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

package demo

import (
	"fmt"
	"io"
	"strings"

	"github.com/SmoothBot/tx-latency-bench/internal/snake"
	"github.com/SmoothBot/tx-latency-bench/internal/txengine"
	"github.com/mgutz/ansi"
)

const (
	clearScreen = "\x1b[2J\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	title       = "ONCHAIN SNAKE GAME"
	panelGap    = "     "
)

var (
	colorTitle     = ansi.ColorFunc("cyan+b")
	colorHead      = ansi.ColorFunc("green+b")
	colorBody      = ansi.ColorFunc("green")
	colorFood      = ansi.ColorFunc("red")
	colorBold      = ansi.ColorFunc("white+b")
	colorPending   = ansi.ColorFunc("yellow")
	colorConfirmed = ansi.ColorFunc("green")
	colorFailed    = ansi.ColorFunc("red")
	colorGameOver  = ansi.ColorFunc("red+b")
)

// Render draws one full frame. Lines end in CRLF as the terminal is in raw mode.
func Render(w io.Writer, v *View) error {
	board := renderBoard(v)
	panel := renderTransactions(v)

	var sb strings.Builder
	sb.WriteString(clearScreen)
	sb.WriteString(hideCursor)
	boardWidth := v.Width*2 + 2
	pad := 0
	if boardWidth > len(title) {
		pad = (boardWidth - len(title)) / 2
	}
	sb.WriteString(strings.Repeat(" ", pad) + colorTitle(title) + "\r\n")
	for i, line := range board {
		sb.WriteString(line)
		if i < len(panel) {
			sb.WriteString(panelGap)
			sb.WriteString(panel[i])
		}
		sb.WriteString("\r\n")
	}
	sb.WriteString("\r\n")
	fmt.Fprintf(&sb, "Score: %d | Speed: %d | Method: %s\r\n", v.Score, v.Speed.Milliseconds(), v.Strategy)
	fmt.Fprintf(&sb, "Pending Moves: %d/%d\r\n", v.Pending, v.MaxPending)
	sb.WriteString("Controls: Arrow keys to move, Q to quit, R to reset\r\n")
	if v.GameOver {
		sb.WriteString("\r\n" + colorGameOver("GAME OVER! Press R to restart") + "\r\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func renderBoard(v *View) []string {
	cells := make([][]string, v.Height)
	for y := range cells {
		cells[y] = make([]string, v.Width)
		for x := range cells[y] {
			cells[y][x] = "  "
		}
	}
	place := func(p snake.Position, s string) {
		if p.Y >= 0 && p.Y < v.Height && p.X >= 0 && p.X < v.Width {
			cells[p.Y][p.X] = s
		}
	}
	place(v.Food, colorFood("**"))
	for i := len(v.Body) - 1; i >= 0; i-- {
		if i == 0 {
			place(v.Body[i], colorHead("@@"))
		} else {
			place(v.Body[i], colorBody("##"))
		}
	}

	border := "+" + strings.Repeat("-", v.Width*2) + "+"
	lines := make([]string, 0, v.Height+2)
	lines = append(lines, border)
	for _, row := range cells {
		lines = append(lines, "|"+strings.Join(row, "")+"|")
	}
	return append(lines, border)
}

func renderTransactions(v *View) []string {
	lines := []string{
		colorBold("TRANSACTIONS"),
		"Nonce | Status     | Time",
		"------------------------",
	}
	for _, tx := range v.Transactions {
		var status string
		switch tx.Status {
		case txengine.StatusConfirmed:
			status = colorConfirmed(fmt.Sprintf("%-10s", "Confirmed"))
		case txengine.StatusFailed:
			status = colorFailed(fmt.Sprintf("%-10s", "Failed"))
		default:
			status = colorPending(fmt.Sprintf("%-10s", "Pending"))
		}
		confirmTime := "-"
		if tx.ConfirmedAfter != nil {
			confirmTime = fmt.Sprintf("%dms", tx.ConfirmedAfter.Milliseconds())
		}
		lines = append(lines, fmt.Sprintf("%5d | %s | %s", tx.Nonce, status, confirmTime))
	}
	return lines
}
