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

// Package stats estimates the strength difference between two players
// from their game results.
package stats

import "math"

// WDL is a tally of game results from one player's point of view.
type WDL struct {
	Wins, Draws, Losses int
}

// Games returns the number of games in the tally.
func (wdl WDL) Games() int {
	return wdl.Wins + wdl.Draws + wdl.Losses
}

// Elo returns the likely elo difference along with its lower and upper
// bounds at p < 0.05. A Dirichlet(0.5, 0.5, 0.5) prior keeps the
// estimate finite for one sided results.
func (wdl WDL) Elo() (lower, elo, upper float64) {
	n := float64(wdl.Games()) + 1.5

	w := (float64(wdl.Wins) + 0.5) / n
	d := (float64(wdl.Draws) + 0.5) / n
	l := (float64(wdl.Losses) + 0.5) / n

	mu := w + d/2
	sigma := math.Sqrt(
		w*math.Pow(1-mu, 2)+
			d*math.Pow(0.5-mu, 2)+
			l*math.Pow(0-mu, 2),
	) / math.Sqrt(n)

	return scoreToElo(mu + phiInv(0.025)*sigma),
		scoreToElo(mu),
		scoreToElo(mu + phiInv(0.975)*sigma)
}

// LLR returns the log-likelihood ratio of the elo1 hypothesis against
// the elo0 hypothesis, for a sequential probability ratio test.
func (wdl WDL) LLR(elo0, elo1 float64) float64 {
	w := float64(wdl.Wins) + 0.5
	d := float64(wdl.Draws) + 0.5
	l := float64(wdl.Losses) + 0.5

	n := w + d + l
	_, dlo := wdlToElo(w/n, d/n, l/n)

	w0, d0, l0 := eloToWDL(elo0, dlo)
	w1, d1, l1 := eloToWDL(elo1, dlo)

	return w*math.Log(w1/w0) +
		d*math.Log(d1/d0) +
		l*math.Log(l1/l0)
}

// StoppingBounds returns the log-likelihood ratios at which a test with
// the given type I and type II error probabilities accepts elo0 (lower)
// or elo1 (upper).
func StoppingBounds(alpha, beta float64) (lower, upper float64) {
	lower = math.Log(beta / (1 - alpha))
	upper = math.Log((1 - beta) / alpha)
	return lower, upper
}

func scoreToElo(x float64) float64 {
	switch {
	case x <= 0, x >= 1:
		return 0
	default:
		return -400 * math.Log10(1/x-1)
	}
}

// eloToWDL converts a bayesian elo to win, draw and loss probabilities.
func eloToWDL(elo, dlo float64) (w, d, l float64) {
	w = 1 / (1 + math.Pow(10, (-elo+dlo)/400))
	l = 1 / (1 + math.Pow(10, (+elo+dlo)/400))
	d = 1 - w - l
	return w, d, l
}

// wdlToElo converts win, draw and loss probabilities to a bayesian elo
// and draw elo.
func wdlToElo(w, d, l float64) (elo, dlo float64) {
	elo = 200 * math.Log10((w/l)*((1-l)/(1-w)))
	dlo = 200 * math.Log10(((1-l)/l)*((1-w)/w))
	return elo, dlo
}

func phiInv(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

func normalizedEloToScore(nelo, r float64) float64 {
	return nelo*math.Sqrt2*r/(800/math.Ln10) + 0.5
}
