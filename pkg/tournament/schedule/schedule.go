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

// Package schedule decides which players meet in a tournament round.
package schedule

import (
	"fmt"
)

// New returns the scheduler with the given name.
func New(name string) (Scheduler, error) {
	switch name {
	case "round-robin", "":
		return &RoundRobin{}, nil
	case "gauntlet":
		return &Gauntlet{}, nil
	default:
		return nil, fmt.Errorf("new scheduler: invalid scheduler %s", name)
	}
}

// Scheduler produces the encounters of one round between n players.
type Scheduler interface {
	Initialize(n int)
	NextEncounter() (int, int)
	TotalEncounters() int
}

// RoundRobin makes every player meet every other player once per round.
// Encounters are ordered with the circle method, so that consecutive
// encounters involve different players where possible.
type RoundRobin struct {
	encounters [][2]int
	next       int
}

func (rr *RoundRobin) Initialize(n int) {
	rr.encounters = rr.encounters[:0]
	rr.next = 0

	// an odd number of players gets a ghost player n, who sits out
	total := n + n%2
	circle := make([]int, total)
	for i := range circle {
		circle[i] = i
	}

	for turn := 0; turn < total-1; turn++ {
		for i := 0; i < total/2; i++ {
			p1, p2 := circle[i], circle[total-1-i]
			if p1 < n && p2 < n {
				rr.encounters = append(rr.encounters, [2]int{p1, p2})
			}
		}

		// keep the first player fixed and rotate the rest
		last := circle[total-1]
		copy(circle[2:], circle[1:total-1])
		circle[1] = last
	}
}

func (rr *RoundRobin) NextEncounter() (int, int) {
	encounter := rr.encounters[rr.next%len(rr.encounters)]
	rr.next++
	return encounter[0], encounter[1]
}

func (rr *RoundRobin) TotalEncounters() int {
	return len(rr.encounters)
}
