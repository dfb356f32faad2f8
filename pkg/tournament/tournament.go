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

// Package tournament runs self-play tournaments between othello players.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"laptudirm.com/x/flippy/pkg/analysis"
	"laptudirm.com/x/flippy/pkg/match"
	"laptudirm.com/x/flippy/pkg/othello"
	"laptudirm.com/x/flippy/pkg/stats"
	"laptudirm.com/x/flippy/pkg/tournament/schedule"
)

// Config configures a tournament.
//
//	1 Tournament = {Rounds} Rounds
//	1 Round      = {SOME_N} Encounters
//	1 Encounter  = {GamePairs} Game Pairs
//	1 Game Pair  = 2 Games, one with each color
type Config struct {
	// The players participating in the tournament.
	Players []match.PlayerConfig `yaml:"players"`

	// Number of games that will be played concurrently.
	Concurrency int `yaml:"concurrency"`

	Scheduler string `yaml:"scheduler"`
	Rounds    int    `yaml:"rounds"`
	GamePairs int    `yaml:"game-pairs"`

	// Time control of every game, as base+increment in seconds.
	TimeControl string `yaml:"tc"`

	Openings struct {
		File  string `yaml:"file"`
		Order string `yaml:"order"`
		Seed  uint64 `yaml:"seed"`
	} `yaml:"openings"`

	// Stop a two player tournament early once either elo hypothesis is
	// accepted. Disabled if Elo0 == Elo1.
	Sprt struct {
		Elo0  float64 `yaml:"elo0"`
		Elo1  float64 `yaml:"elo1"`
		Alpha float64 `yaml:"alpha"`
		Beta  float64 `yaml:"beta"`
	} `yaml:"sprt"`
}

// LoadConfig reads a yaml tournament config.
func LoadConfig(path string) (Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("load config: %w", err)
	}

	return config, nil
}

// Score is a player's tally of results.
type Score struct {
	Games stats.WDL
	Pairs stats.Pentanomial
}

// Tournament is a running tournament.
type Tournament struct {
	Config Config

	scheduler schedule.Scheduler
	openings  *match.OpeningBook
	time      match.TimeControl
	analyzer  *analysis.Analyzer

	mu      sync.Mutex
	played  int
	scores  []Score
	pending map[int]match.Result
}

// New prepares a tournament. The analyzer is only needed if some of the
// players are oracle players.
func New(config Config, analyzer *analysis.Analyzer) (*Tournament, error) {
	if len(config.Players) < 2 {
		return nil, errors.New("new tournament: need at least two players")
	}

	config.Concurrency = max(config.Concurrency, 1)
	config.Rounds = max(config.Rounds, 1)
	config.GamePairs = max(config.GamePairs, 1)

	if config.Sprt.Alpha <= 0 || config.Sprt.Beta <= 0 {
		config.Sprt.Alpha, config.Sprt.Beta = 0.05, 0.05
	}

	tour := Tournament{
		Config:   config,
		analyzer: analyzer,
		scores:   make([]Score, len(config.Players)),
		pending:  make(map[int]match.Result),
	}

	// check that every player can be created before any game starts
	for _, player := range config.Players {
		if _, err := match.NewPlayer(player, analyzer); err != nil {
			return nil, fmt.Errorf("new tournament: %w", err)
		}
	}

	var err error
	if tour.time, err = match.ParseTime(config.TimeControl); err != nil {
		return nil, fmt.Errorf("new tournament: %w", err)
	}

	if config.Openings.File == "" {
		tour.openings = match.SingleOpening(nil)
	} else {
		tour.openings, err = match.NewOpeningBook(config.Openings.File, config.Openings.Order, config.Openings.Seed)
		if err != nil {
			return nil, fmt.Errorf("new tournament: %w", err)
		}
	}

	if tour.scheduler, err = schedule.New(config.Scheduler); err != nil {
		return nil, err
	}

	return &tour, nil
}

// Game is a single game of the tournament.
type Game struct {
	match.Config

	Round, Number    int
	Pair             int
	Player1, Player2 int
}

// Result is the result of a tournament game from Player1's point of view.
type Result struct {
	Game *Game

	Result  match.Result
	Reason  string
	Aborted bool
}

func (result Result) String() string {
	switch result.Result {
	case match.Win:
		return fmt.Sprintf("%s wins: %s", result.Game.Players[0].Name(), result.Reason)
	case match.Loss:
		return fmt.Sprintf("%s wins: %s", result.Game.Players[1].Name(), result.Reason)
	default:
		return fmt.Sprintf("draw: %s", result.Reason)
	}
}

// Games returns the total number of games in the tournament.
func (tour *Tournament) Games() int {
	scheduler, _ := schedule.New(tour.Config.Scheduler)
	scheduler.Initialize(len(tour.Config.Players))
	return tour.Config.Rounds * scheduler.TotalEncounters() * tour.Config.GamePairs * 2
}

// Played returns the number of games finished so far.
func (tour *Tournament) Played() int {
	tour.mu.Lock()
	defer tour.mu.Unlock()

	return tour.played
}

// Scores returns a copy of the players' scores.
func (tour *Tournament) Scores() []Score {
	tour.mu.Lock()
	defer tour.mu.Unlock()

	return append([]Score(nil), tour.scores...)
}

// Run plays the tournament until every game is finished, the sprt test
// concludes, or the context ends.
func (tour *Tournament) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	games := make(chan *Game)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < tour.Config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for game := range games {
				results <- tour.play(ctx, game)
			}
		}()
	}

	go func() {
		defer close(games)
		tour.schedule(ctx, games)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		if result.Aborted {
			continue
		}

		logrus.Infof(
			"\x1b[32mFinished\x1b[0m Round #%d Game #%d: %s vs %s: %s",
			result.Game.Round,
			result.Game.Number,
			result.Game.Players[0].Name(),
			result.Game.Players[1].Name(),
			result,
		)

		if tour.record(result) {
			logrus.Info("tournament: sprt test concluded")
			cancel()
		}
	}

	return parent.Err()
}

func (tour *Tournament) schedule(ctx context.Context, games chan<- *Game) {
	number := 0
	for round := 0; round < tour.Config.Rounds; round++ {
		tour.scheduler.Initialize(len(tour.Config.Players))

		for encounter := 0; encounter < tour.scheduler.TotalEncounters(); encounter++ {
			p1, p2 := tour.scheduler.NextEncounter()

			for pair := 0; pair < tour.Config.GamePairs; pair++ {
				opening := tour.openings.Current()
				for game := 0; game < 2; game++ {
					number++

					select {
					case games <- &Game{
						Config: match.Config{
							Opening: opening,
							Time:    tour.time,
						},
						Round:   round + 1,
						Number:  number,
						Pair:    (number + 1) / 2,
						Player1: p1,
						Player2: p2,
					}:
					case <-ctx.Done():
						return
					}

					// switch colors
					p1, p2 = p2, p1
				}

				tour.openings.Next()
			}
		}
	}
}

func (tour *Tournament) play(ctx context.Context, game *Game) Result {
	for i, index := range [2]int{game.Player1, game.Player2} {
		config := tour.Config.Players[index]
		config.Seed += uint64(game.Number)

		// players were checked when the tournament was created
		game.Players[i], _ = match.NewPlayer(config, tour.analyzer)
	}

	logrus.Infof(
		"\x1b[33mStarting\x1b[0m Round #%d Game #%d: %s vs %s (\x1b[33m%s\x1b[0m)",
		game.Round,
		game.Number,
		game.Players[0].Name(),
		game.Players[1].Name(),
		formatOpening(game.Opening),
	)

	result, reason := match.Run(ctx, &game.Config)
	return Result{
		Game:    game,
		Result:  result,
		Reason:  reason,
		Aborted: ctx.Err() != nil,
	}
}

// record adds a result to the scores. It reports whether the sprt test
// has concluded.
func (tour *Tournament) record(result Result) bool {
	tour.mu.Lock()
	defer tour.mu.Unlock()

	tour.played++

	game := result.Game
	p1, p2 := &tour.scores[game.Player1].Games, &tour.scores[game.Player2].Games
	switch result.Result {
	case match.Win:
		p1.Wins++
		p2.Losses++
	case match.Loss:
		p1.Losses++
		p2.Wins++
	default:
		p1.Draws++
		p2.Draws++
	}

	// pair results are kept from the point of view of the player who
	// had black in the pair's first game
	other, found := tour.pending[game.Pair]
	if !found {
		tour.pending[game.Pair] = result.Result
		return false
	}

	delete(tour.pending, game.Pair)

	var first, second int
	var points int
	if game.Number%2 == 0 {
		// this is the second game, where the colors are switched
		first, second = game.Player2, game.Player1
		points = int(match.GetPairResult(other, result.Result.Flip()))
	} else {
		first, second = game.Player1, game.Player2
		points = int(match.GetPairResult(result.Result, other.Flip()))
	}

	tour.scores[first].Pairs.Add(points)
	tour.scores[second].Pairs.Add(-points)

	return tour.sprtConcluded()
}

func (tour *Tournament) sprtConcluded() bool {
	sprt := tour.Config.Sprt
	if len(tour.scores) != 2 || sprt.Elo0 == sprt.Elo1 {
		return false
	}

	lower, upper := stats.StoppingBounds(sprt.Alpha, sprt.Beta)
	llr := tour.scores[0].Pairs.LLR(sprt.Elo0, sprt.Elo1)
	return llr <= lower || llr >= upper
}

// Report prints a table of the players' scores.
func (tour *Tournament) Report(w io.Writer) {
	scores := tour.Scores()

	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║    Name               Elo Error   Wins Loss Draw   Total ║")
	fmt.Fprintln(w, "╠══════════════════════════════════════════════════════════╣")
	for i, player := range tour.Config.Players {
		score := scores[i].Games
		lower, elo, upper := score.Elo()

		name := player.Name
		if name == "" {
			name = player.Kind
		}

		fmt.Fprintf(
			w, "║ %2d. %-15s   %+4.0f %4.0f   %4d %4d %4d   %5d ║\n",
			i+1, name,
			elo, math.Max(upper-elo, elo-lower),
			score.Wins, score.Losses, score.Draws,
			score.Games(),
		)
	}
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════╝")

	if sprt := tour.Config.Sprt; len(scores) == 2 && sprt.Elo0 != sprt.Elo1 {
		lower, upper := stats.StoppingBounds(sprt.Alpha, sprt.Beta)
		fmt.Fprintf(
			w, "SPRT [%g, %g]: LLR %.2f (%.2f, %.2f) Pairs %v\n",
			sprt.Elo0, sprt.Elo1,
			scores[0].Pairs.LLR(sprt.Elo0, sprt.Elo1), lower, upper,
			scores[0].Pairs,
		)
	}
}

func formatOpening(moves []othello.Square) string {
	if len(moves) == 0 {
		return "start"
	}

	return othello.FormatMoves(moves)
}
