// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package match plays single games of othello between two players.
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/flippy/pkg/othello"
)

// Config configures a single game. Players[0] has the black discs and
// Players[1] the white ones. The opening moves are played before the
// players take over.
type Config struct {
	Opening []othello.Square
	Players [2]Player
	Time    TimeControl
}

// Run plays a game and returns its result, from the black player's point
// of view, along with the reason the game ended. A player which returns
// an error, an illegal move, or runs out of time loses.
func Run(ctx context.Context, config *Config) (Result, string) {
	game, err := othello.NewGameFrom(config.Opening)
	if err != nil {
		return Draw, err.Error()
	}

	remaining := [2]time.Duration{config.Time.Base, config.Time.Base}

	for !game.Position().IsTerminal() {
		pos := game.Position()
		side := int(pos.Turn())
		player := config.Players[side]

		moveCtx, cancel := ctx, context.CancelFunc(func() {})
		if config.Time.Limited() {
			moveCtx, cancel = context.WithTimeout(ctx, remaining[side])
		}

		start := time.Now()
		move, err := player.Move(moveCtx, pos)
		spent := time.Since(start)
		cancel()

		if ctx.Err() != nil {
			return Draw, "aborted"
		}

		if config.Time.Limited() {
			remaining[side] -= spent
			if remaining[side] <= 0 || errors.Is(err, context.DeadlineExceeded) {
				return GameLostBy[side], fmt.Sprintf("%s ran out of time", player.Name())
			}

			remaining[side] += config.Time.Inc
		}

		if err != nil {
			return GameLostBy[side], fmt.Sprintf("%s failed: %v", player.Name(), err)
		}

		if err := game.Play(move); err != nil {
			return GameLostBy[side], fmt.Sprintf("%s played an illegal move %s", player.Name(), move)
		}

		logrus.WithFields(logrus.Fields{
			"player": player.Name(),
			"ply":    game.Ply(),
		}).Tracef("match: %s", move)
	}

	reason := game.Status()
	switch game.Outcome() {
	case othello.BlackWins:
		return Win, reason
	case othello.WhiteWins:
		return Loss, reason
	default:
		return Draw, reason
	}
}
