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
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/flippy/pkg/book"
	"laptudirm.com/x/flippy/pkg/evaluation"
	"laptudirm.com/x/flippy/pkg/oracle"
	"laptudirm.com/x/flippy/pkg/othello"
)

func Book() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage the evaluation book",
		Args:  cobra.NoArgs,
	}

	cmd.PersistentFlags().StringP("book", "b", "", "Directory of the evaluation book")

	cmd.AddCommand(bookImport())
	cmd.AddCommand(bookGet())
	cmd.AddCommand(bookCount())

	return cmd
}

// openBook opens the book named by the --book flag or the config.
func openBook(cmd *cobra.Command) (*book.Book, error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	dir := config.Server.Book
	if flag, _ := cmd.Flags().GetString("book"); flag != "" {
		dir = flag
	}

	return book.Open(dir)
}

func closeBook(b *book.Book) {
	if err := b.Close(); err != nil {
		logrus.WithError(err).Error("closing book")
	}
}

func bookImport() *cobra.Command {
	return &cobra.Command{
		Use:   "import file",
		Short: "Import evaluations into the book",
		Long: heredoc.Doc(`
			Import reads evaluations from a file with one json evaluation per
			line, in the same form the oracle sends them:

			  {"position": "...", "level": 24, "depth": 20, "confidence": 98,
			   "score": 4, "best_moves": [19]}

			Positions may be in any orientation. Invalid lines are reported
			and skipped, and an evaluation only replaces a stored one with a
			lower level.
		`),
		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}

			defer file.Close()

			b, err := openBook(cmd)
			if err != nil {
				return err
			}

			defer closeBook(b)

			ctx, stop := interruptible(cmd)
			defer stop()

			s := newSpinner("importing " + args[0])
			s.Start()

			var saved, skipped, invalid int

			scanner := bufio.NewScanner(file)
			scanner.Buffer(make([]byte, 64*1024), 1024*1024)
			for line := 1; scanner.Scan(); line++ {
				if len(scanner.Bytes()) == 0 {
					continue
				}

				key, record, err := parseEvaluation(scanner.Bytes())
				if err != nil {
					logrus.WithField("line", line).WithError(err).Debug("skipping evaluation")
					invalid++
					continue
				}

				ok, err := b.Save(ctx, key, record)
				if err != nil {
					s.Stop()
					return fmt.Errorf("line %d: %w", line, err)
				}

				if ok {
					saved++
				} else {
					skipped++
				}
			}

			s.Stop()
			if err := scanner.Err(); err != nil {
				return err
			}

			fmt.Printf("saved %d, skipped %d, invalid %d\n", saved, skipped, invalid)
			return nil
		},
	}
}

// parseEvaluation decodes a line of an import file into a canonical key
// and the record in its orientation.
func parseEvaluation(line []byte) (othello.Key, evaluation.Record, error) {
	var e oracle.Evaluation
	if err := json.Unmarshal(line, &e); err != nil {
		return othello.Key{}, evaluation.Record{}, err
	}

	key, record, err := e.Record()
	if err != nil {
		return othello.Key{}, evaluation.Record{}, err
	}

	if err := record.ValidateFor(key.Position()); err != nil {
		return othello.Key{}, evaluation.Record{}, err
	}

	normalized, symmetry := key.Position().Normalize()
	return normalized.Key(), record.Transform(symmetry), nil
}

func bookGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get key",
		Short: "Show the stored evaluation of a position",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := othello.ParseKey(args[0])
			if err != nil {
				return err
			}

			b, err := openBook(cmd)
			if err != nil {
				return err
			}

			defer closeBook(b)

			pos := key.Position()
			normalized, symmetry := pos.Normalize()

			record, err := b.Get(normalized.Key())
			if errors.Is(err, book.ErrNotFound) {
				return fmt.Errorf("%s: %w", key, err)
			} else if err != nil {
				return err
			}

			record = record.Transform(symmetry.Inverse())

			fmt.Println(pos)
			fmt.Println()
			fmt.Printf("score:      %+d\n", record.Score)
			fmt.Printf("depth:      %d\n", record.Depth)
			fmt.Printf("level:      %d\n", record.Level)
			fmt.Printf("confidence: %d%% (%s)\n", record.Confidence, record.Source)
			fmt.Printf("best moves: %s\n", othello.FormatMoves(record.BestMoves))
			return nil
		},
	}
}

func bookCount() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count the positions in the book",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd)
			if err != nil {
				return err
			}

			defer closeBook(b)

			n, err := b.Count()
			if err != nil {
				return err
			}

			fmt.Println(n)
			return nil
		},
	}
}
