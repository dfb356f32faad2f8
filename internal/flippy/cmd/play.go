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

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/flippy/pkg/analysis"
	"laptudirm.com/x/flippy/pkg/match"
	"laptudirm.com/x/flippy/pkg/othello"
)

func Play() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game with evaluations from the oracle",
		Long: heredoc.Doc(`
			Play starts an interactive game on the terminal. After every move
			the legal moves are listed with the final disc difference the
			oracle expects after playing them.

			Moves are entered as squares, like f5. The other commands are:

			  undo   take back the last move
			  new    start a new game
			  quit   leave the game

			With --computer, flippy plays one of the sides itself, choosing
			the best evaluated move.
		`),
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			computer, _ := cmd.Flags().GetString("computer")
			offline, _ := cmd.Flags().GetBool("offline")

			var side othello.Color
			switch computer {
			case "none":
			case "black":
				side = othello.Black
			case "white":
				side = othello.White
			default:
				return fmt.Errorf("play: invalid --computer %q", computer)
			}

			ctx, stop := interruptible(cmd)
			defer stop()

			analyzer := newAnalyzer(ctx, config, offline)
			player, err := match.NewPlayer(match.PlayerConfig{Name: "flippy", Kind: "oracle"}, analyzer)
			if err != nil {
				return err
			}

			session := &playSession{
				game:     othello.NewGame(),
				analyzer: analyzer,
				player:   player,
				computer: computer != "none",
				side:     side,
			}

			return session.run(ctx, bufio.NewScanner(os.Stdin))
		},
	}

	flags := cmd.Flags()
	flags.String("computer", "none", "Side played by flippy: black, white or none")
	flags.Bool("offline", false, "Play without connecting to the oracle")

	return cmd
}

type playSession struct {
	game     *othello.Game
	analyzer *analysis.Analyzer
	player   match.Player

	computer bool
	side     othello.Color
}

func (session *playSession) run(ctx context.Context, input *bufio.Scanner) error {
	for ctx.Err() == nil {
		pos := session.game.Position()

		go func() {
			if err := session.analyzer.Prefetch(ctx, pos); err != nil {
				logrus.WithError(err).Debug("prefetch failed")
			}
		}()

		if session.computer && !pos.IsTerminal() && pos.Turn() == session.side {
			move, err := session.player.Move(ctx, pos)
			if err != nil {
				return err
			}

			if err := session.game.Play(move); err != nil {
				return err
			}

			fmt.Printf("%s plays %s\n\n", session.player.Name(), move)
			continue
		}

		session.print(ctx, pos)

		fmt.Print("> ")
		if !input.Scan() {
			fmt.Println()
			return input.Err()
		}

		if quit := session.handle(strings.TrimSpace(input.Text())); quit {
			return nil
		}
	}

	return nil
}

// handle runs a single command, reporting whether the game should end.
func (session *playSession) handle(command string) bool {
	switch strings.ToLower(command) {
	case "":
	case "quit", "q", "exit":
		return true
	case "undo", "u":
		if !session.game.Undo() {
			fmt.Println("no moves to undo")
			break
		}

		// Take back the computer's reply along with the player's move.
		if session.computer && session.game.Position().Turn() == session.side {
			session.game.Undo()
		}
	case "new", "n":
		session.game.Reset()
		session.analyzer.Cache().Clear()
	default:
		move, err := othello.ParseSquare(command)
		if err == nil {
			err = session.game.Play(move)
		}

		if err != nil {
			fmt.Printf("%s: %v\n", command, err)
		}
	}

	fmt.Println()
	return false
}

func (session *playSession) print(ctx context.Context, pos othello.Position) {
	fmt.Println(pos)

	if pos.IsTerminal() {
		fmt.Println(session.game.Status())
		return
	}

	s := newSpinner("evaluating")
	s.Start()
	moves := session.analyzer.Analyze(ctx, pos)
	s.Stop()

	var builder strings.Builder
	for _, move := range moves {
		if move.Found {
			fmt.Fprintf(&builder, " %s %+d", move.Move, move.Score)
		} else {
			fmt.Fprintf(&builder, " %s ?", move.Move)
		}
	}

	fmt.Printf("moves:%s\n", builder.String())
}
