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

package match

// PairResult is the combined result of a game pair, where the two
// players meet once with each color.
type PairResult int

const (
	WinWin   = PairResult(Win + Win)   // player 1 wins both
	WinDraw  = PairResult(Win + Draw)  // player 1 wins one and holds
	DrawDraw = PairResult(Draw + Draw) // a win each, or two draws
	DrawLoss = PairResult(Draw + Loss) // player 2 wins one and holds
	LossLoss = PairResult(Loss + Loss) // player 2 wins both
)

// GetPairResult returns the PairResult of a game pair, given the results
// of both games from player 1's point of view.
func GetPairResult(result1, result2 Result) PairResult {
	return PairResult(result1 + result2)
}

// Result is the result of a single game from the point of view of the
// player who had the black discs.
type Result int

const (
	Win  Result = +1
	Draw Result = 0
	Loss Result = -1
)

// GameLostBy maps the losing player to the game's Result.
var GameLostBy = [2]Result{
	0: Loss,
	1: Win,
}

// Flip returns the result from the other player's point of view.
func (result Result) Flip() Result {
	return -result
}

func (result Result) String() string {
	switch result {
	case Win:
		return "1-0"
	case Draw:
		return "1/2-1/2"
	case Loss:
		return "0-1"
	default:
		return "?-?"
	}
}
