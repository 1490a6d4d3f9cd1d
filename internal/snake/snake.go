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

package snake

import (
	"math/big"
	"math/rand"
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/confutil"
)

const (
	pointsPerFood  = 10
	speedUpEvery   = 50
	speedUpBy      = 10 * time.Millisecond
	initialLength  = 3
	minBoardLength = initialLength + 1
)

type Position struct {
	X int
	Y int
}

// Direction values are the transaction value sent for each move
type Direction int

const (
	Up    Direction = 1
	Down  Direction = 2
	Left  Direction = 3
	Right Direction = 4
)

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

func (d Direction) Value() *big.Int {
	return big.NewInt(int64(d))
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

func DirectionFromValue(v uint64) (Direction, bool) {
	d := Direction(v)
	if d < Up || d > Right {
		return 0, false
	}
	return d, true
}

// Game is the board state. It is not safe for concurrent use, the demo loop is its only owner.
type Game struct {
	width, height int
	initialSpeed  time.Duration
	minSpeed      time.Duration
	rng           *rand.Rand

	body      []Position // head first
	direction Direction
	food      Position
	score     int
	speed     time.Duration
	gameOver  bool
}

func NewGame(sc *conf.SnakeConfig, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &Game{
		width:        confutil.IntMin(sc.Width, minBoardLength, *conf.Defaults.Snake.Width),
		height:       confutil.IntMin(sc.Height, minBoardLength, *conf.Defaults.Snake.Height),
		initialSpeed: confutil.DurationMin(sc.TickInterval, time.Millisecond, *conf.Defaults.Snake.TickInterval),
		minSpeed:     confutil.DurationMin(sc.MinInterval, time.Millisecond, *conf.Defaults.Snake.MinInterval),
		rng:          rng,
	}
	g.Reset()
	return g
}

// Reset starts a new game with the snake in the middle of the board heading right
func (g *Game) Reset() {
	head := Position{X: g.width / 2, Y: g.height / 2}
	g.body = make([]Position, 0, initialLength)
	for i := 0; i < initialLength; i++ {
		g.body = append(g.body, Position{X: head.X - i, Y: head.Y})
	}
	g.direction = Right
	g.score = 0
	g.speed = g.initialSpeed
	g.gameOver = false
	g.spawnFood()
}

func (g *Game) spawnFood() {
	if len(g.body) >= g.width*g.height {
		return
	}
	for {
		food := Position{X: g.rng.Intn(g.width), Y: g.rng.Intn(g.height)}
		if !g.occupied(food) {
			g.food = food
			return
		}
	}
}

func (g *Game) occupied(p Position) bool {
	for _, b := range g.body {
		if b == p {
			return true
		}
	}
	return false
}

// IsValidMove is false for a reversal onto the snake's own neck
func (g *Game) IsValidMove(d Direction) bool {
	return d != g.direction.Opposite()
}

// Turn changes direction unless the move is a reversal, which is ignored
func (g *Game) Turn(d Direction) bool {
	if !g.IsValidMove(d) {
		return false
	}
	g.direction = d
	return true
}

// Tick advances the snake one cell. Hitting a wall or itself ends the game.
func (g *Game) Tick() {
	if g.gameOver {
		return
	}
	head := g.body[0]
	switch g.direction {
	case Up:
		head.Y--
	case Down:
		head.Y++
	case Left:
		head.X--
	case Right:
		head.X++
	}
	if head.X < 0 || head.Y < 0 || head.X >= g.width || head.Y >= g.height || g.occupied(head) {
		g.gameOver = true
		return
	}
	g.body = append([]Position{head}, g.body[:len(g.body)-1]...)

	if head == g.food {
		// grow by repeating the tail, it separates on the next move
		g.body = append(g.body, g.body[len(g.body)-1])
		g.score += pointsPerFood
		g.spawnFood()
		if g.score%speedUpEvery == 0 && g.speed > g.minSpeed {
			g.speed -= speedUpBy
			if g.speed < g.minSpeed {
				g.speed = g.minSpeed
			}
		}
	}
}

func (g *Game) Width() int {
	return g.width
}

func (g *Game) Height() int {
	return g.height
}

// Body returns a copy, head first
func (g *Game) Body() []Position {
	return append([]Position(nil), g.body...)
}

func (g *Game) Head() Position {
	return g.body[0]
}

func (g *Game) Direction() Direction {
	return g.direction
}

func (g *Game) Food() Position {
	return g.food
}

func (g *Game) Score() int {
	return g.score
}

// Speed is the interval between ticks
func (g *Game) Speed() time.Duration {
	return g.speed
}

func (g *Game) GameOver() bool {
	return g.gameOver
}
