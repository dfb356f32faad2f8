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

package stats

import "math"

// Pentanomial is a tally of game pair results, where each pair is worth
// from 0 (both games lost) to 4 (both games won) half points. Pairs
// cancel out most of the advantage of the opening and the first move,
// so they give tighter estimates than single games.
type Pentanomial [5]int

// Add records a pair worth the given number of points from -2 to +2,
// a win counting +1 and a loss -1.
func (penta *Pentanomial) Add(points int) {
	penta[points+2]++
}

// Pairs returns the number of pairs in the tally.
func (penta Pentanomial) Pairs() int {
	return penta[0] + penta[1] + penta[2] + penta[3] + penta[4]
}

// probabilities returns the frequency of each pair result, with half a
// pair added to each for a prior.
func (penta Pentanomial) probabilities() (p [5]float64, n float64) {
	n = float64(penta.Pairs()) + 2.5
	for i, count := range penta {
		p[i] = (float64(count) + 0.5) / n
	}

	return p, n
}

// variance returns the variance of a pair's score about mu.
func variance(p [5]float64, mu float64) float64 {
	v := 0.0
	for i, prob := range p {
		v += prob * math.Pow(float64(i)/4-mu, 2)
	}

	return v
}

func mean(p [5]float64) float64 {
	mu := 0.0
	for i, prob := range p {
		mu += prob * float64(i) / 4
	}

	return mu
}

// Elo returns the likely elo difference along with its lower and upper
// bounds at p < 0.05.
func (penta Pentanomial) Elo() (lower, elo, upper float64) {
	p, n := penta.probabilities()

	mu := mean(p)
	sigma := math.Sqrt(variance(p, mu)) / math.Sqrt(n)

	return scoreToElo(mu + phiInv(0.025)*sigma),
		scoreToElo(mu),
		scoreToElo(mu + phiInv(0.975)*sigma)
}

// LLR returns an approximation of the log-likelihood ratio of the elo1
// hypothesis against the elo0 hypothesis, in normalized elo.
func (penta Pentanomial) LLR(elo0, elo1 float64) float64 {
	p, n := penta.probabilities()

	r := math.Sqrt(variance(p, mean(p)))
	r0 := variance(p, normalizedEloToScore(elo0, r))
	r1 := variance(p, normalizedEloToScore(elo1, r))

	if r0 == 0 || r1 == 0 {
		return 0
	}

	return 0.5 * n * math.Log(r0/r1)
}
