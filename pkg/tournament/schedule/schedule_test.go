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

package schedule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundRobin(t *testing.T) {
	for n := 2; n <= 7; n++ {
		rr, err := New("round-robin")
		require.NoError(t, err)

		rr.Initialize(n)
		require.Equal(t, n*(n-1)/2, rr.TotalEncounters())

		seen := map[[2]int]bool{}
		for i := 0; i < rr.TotalEncounters(); i++ {
			p1, p2 := rr.NextEncounter()
			require.NotEqual(t, p1, p2)
			require.Less(t, p1, n)
			require.Less(t, p2, n)

			if p1 > p2 {
				p1, p2 = p2, p1
			}

			require.False(t, seen[[2]int{p1, p2}], "%d-%d met twice", p1, p2)
			seen[[2]int{p1, p2}] = true
		}
	}
}

func TestGauntlet(t *testing.T) {
	g, err := New("gauntlet")
	require.NoError(t, err)

	g.Initialize(4)
	require.Equal(t, 3, g.TotalEncounters())

	for want := 1; want <= 3; want++ {
		p1, p2 := g.NextEncounter()
		require.Equal(t, 0, p1)
		require.Equal(t, want, p2)
	}
}

func TestNew(t *testing.T) {
	_, err := New("swiss")
	require.Error(t, err)
}
