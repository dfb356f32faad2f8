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
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"laptudirm.com/x/flippy/pkg/othello"
)

func Show() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [moves]",
		Short: "Show a position with its canonical key",
		Long: heredoc.Doc(`
			Show draws the position reached by playing the given moves from
			the start position, like f5d6c3. A position can also be given by
			its key with the --key flag. Positions given by key have black to
			move.

			Along with the board, the canonical key of the position and the
			symmetry which maps the position onto its canonical form are
			printed.
		`),
		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			keyStr, _ := cmd.Flags().GetString("key")

			var pos othello.Position
			switch {
			case keyStr != "" && len(args) > 0:
				return fmt.Errorf("show: both moves and --key given")
			case keyStr != "":
				key, err := othello.ParseKey(keyStr)
				if err != nil {
					return err
				}

				pos = key.Position()
			default:
				var moves []othello.Square
				if len(args) > 0 {
					var err error
					if moves, err = othello.ParseMoves(args[0]); err != nil {
						return err
					}
				}

				game, err := othello.NewGameFrom(moves)
				if err != nil {
					return err
				}

				pos = game.Position()
			}

			_, symmetry := pos.Normalize()

			fmt.Println(pos)
			fmt.Println()
			fmt.Printf("key:       %s\n", pos.Key())
			fmt.Printf("symmetry:  %s\n", symmetry)
			fmt.Printf("empties:   %d\n", pos.Empties())
			fmt.Printf("moves:     %s\n", formatSquares(pos.LegalMoves().Squares()))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("key", "k", "", "Key of the position to show")

	return cmd
}

func formatSquares(squares []othello.Square) string {
	if len(squares) == 0 {
		return "none"
	}

	names := make([]string, len(squares))
	for i, sq := range squares {
		names[i] = sq.String()
	}

	return strings.Join(names, " ")
}
