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
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"golang.org/x/sync/errgroup"
)

// DefaultFrameInterval is how often the screen is redrawn and keys are handled
const DefaultFrameInterval = 10 * time.Millisecond

// Run plays until Q is pressed, the key channel closes, or the context is cancelled.
// Input handling and the game loop run concurrently, sharing only the controller.
func Run(ctx context.Context, c *Controller, keys <-chan Key, out io.Writer, frameInterval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case k, ok := <-keys:
				if !ok || k == KeyQuit {
					log.L(gCtx).Infof("Quit requested")
					return nil
				}
				if k == KeyReset {
					c.Reset(gCtx)
				} else if d, isMove := k.Direction(); isMove {
					c.Move(gCtx, d)
				}
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		lastTick := time.Now()
		for {
			if err := Render(out, c.View()); err != nil {
				return err
			}
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
			}
			if time.Since(lastTick) >= c.Speed() {
				c.Tick(gCtx)
				lastTick = time.Now()
			}
		}
	})

	return g.Wait()
}
