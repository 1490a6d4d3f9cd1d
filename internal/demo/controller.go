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
	"math/rand"
	"sync"
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/confutil"
	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/session"
	"github.com/SmoothBot/tx-latency-bench/internal/snake"
	"github.com/SmoothBot/tx-latency-bench/internal/txengine"
)

// Controller drives the game from confirmed move transactions. A key press only proposes a move,
// the snake turns when the transaction for it confirms, in the order the moves were made.
type Controller struct {
	lock     sync.Mutex
	game     *snake.Game
	applier  *txengine.SpeculativeApplier[snake.Direction]
	strategy txengine.Strategy
}

// View is a consistent copy of everything rendered for one frame
type View struct {
	Width, Height int
	Body          []snake.Position
	Food          snake.Position
	Score         int
	Speed         time.Duration
	GameOver      bool
	Strategy      txengine.Strategy
	Pending       int
	MaxPending    int
	Transactions  []txengine.LedgerEntry[snake.Direction]
}

func NewController(ctx context.Context, cfg *conf.Config, sess *session.Session, metrics *txengine.Metrics, rng *rand.Rand) *Controller {
	ledger := txengine.NewLedger[snake.Direction](confutil.IntMin(cfg.Ledger.Capacity, 1, *conf.Defaults.Ledger.Capacity))
	poller := txengine.NewReceiptPoller(sess.Client, &cfg.Poller)
	submitter := txengine.NewSubmitter(ctx, sess.Client, sess.Signer, poller, ledger, metrics, sess.SubmitterOptions())
	inflight := txengine.NewInFlight(confutil.IntMin(cfg.Speculative.MaxInFlight, 1, *conf.Defaults.Speculative.MaxInFlight))
	return &Controller{
		game:     snake.NewGame(&cfg.Snake, rng),
		strategy: sess.Strategy,
		applier: txengine.NewSpeculativeApplier(sess.Nonces, submitter, ledger, inflight, metrics,
			func(nonce uint64, d snake.Direction) *txengine.Operation {
				return &txengine.Operation{Value: d.Value()}
			}),
	}
}

// Move proposes a direction change. Moves are ignored once the game is over, when they reverse
// the current direction, or when the in-flight limit is reached.
func (c *Controller) Move(ctx context.Context, d snake.Direction) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.game.GameOver() || !c.game.IsValidMove(d) {
		return false
	}
	if !c.applier.Propose(ctx, d) {
		log.L(ctx).Debugf("Ignoring move %s - already have %d pending moves", d, c.applier.Capacity())
		return false
	}
	return true
}

// Tick applies at most one confirmed move, then advances the snake
func (c *Controller) Tick(ctx context.Context) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.game.GameOver() {
		return
	}
	if d, ok := c.applier.Next(); ok {
		if !c.game.Turn(d) {
			log.L(ctx).Debugf("Confirmed move %s would reverse the snake, ignored", d)
		}
	}
	c.game.Tick()
	if c.game.GameOver() {
		log.L(ctx).Infof("Game over with score %d", c.game.Score())
	}
}

// Reset starts a new game and forgets all outstanding moves
func (c *Controller) Reset(ctx context.Context) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.game.Reset()
	c.applier.Reset()
	log.L(ctx).Infof("Game reset")
}

func (c *Controller) Speed() time.Duration {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.game.Speed()
}

func (c *Controller) View() *View {
	c.lock.Lock()
	defer c.lock.Unlock()
	return &View{
		Width:        c.game.Width(),
		Height:       c.game.Height(),
		Body:         c.game.Body(),
		Food:         c.game.Food(),
		Score:        c.game.Score(),
		Speed:        c.game.Speed(),
		GameOver:     c.game.GameOver(),
		Strategy:     c.strategy,
		Pending:      c.applier.InFlight(),
		MaxPending:   c.applier.Capacity(),
		Transactions: c.applier.Ledger().Snapshot(),
	}
}

// Wait blocks until all background submissions have settled
func (c *Controller) Wait() {
	c.applier.Wait()
}
