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
	"context"
	"io"
	"os"

	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/SmoothBot/tx-latency-bench/internal/snake"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/term"
)

type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyQuit
	KeyReset
)

func (k Key) Direction() (snake.Direction, bool) {
	switch k {
	case KeyUp:
		return snake.Up, true
	case KeyDown:
		return snake.Down, true
	case KeyLeft:
		return snake.Left, true
	case KeyRight:
		return snake.Right, true
	default:
		return 0, false
	}
}

// ParseKeys decodes a chunk of raw terminal input. Arrow keys arrive as ESC [ A-D.
func ParseKeys(b []byte) []Key {
	var keys []Key
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case 0x1b:
			if i+2 < len(b) && (b[i+1] == '[' || b[i+1] == 'O') {
				switch b[i+2] {
				case 'A':
					keys = append(keys, KeyUp)
				case 'B':
					keys = append(keys, KeyDown)
				case 'C':
					keys = append(keys, KeyRight)
				case 'D':
					keys = append(keys, KeyLeft)
				}
				i += 2
			}
		case 'q', 'Q', 0x03:
			keys = append(keys, KeyQuit)
		case 'r', 'R':
			keys = append(keys, KeyReset)
		}
	}
	return keys
}

// ReadKeys forwards decoded keys until the reader fails. The read cannot be interrupted,
// so this runs outside of any group that is waited on.
func ReadKeys(ctx context.Context, r io.Reader, keys chan<- Key) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, k := range ParseKeys(buf[:n]) {
			select {
			case keys <- k:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			log.L(ctx).Debugf("Key input ended: %s", err)
			close(keys)
			return
		}
	}
}

// Terminal switches stdin into raw mode for the life of the game
type Terminal struct {
	fd    int
	state *term.State
	out   io.Writer
}

func OpenTerminal(ctx context.Context) (*Terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, i18n.NewError(ctx, msgs.MsgTerminalSetupFailed)
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgTerminalSetupFailed)
	}
	return &Terminal{fd: fd, state: state, out: os.Stdout}, nil
}

func (t *Terminal) Close() {
	_, _ = io.WriteString(t.out, clearScreen+showCursor)
	_ = term.Restore(t.fd, t.state)
}
