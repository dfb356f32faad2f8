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
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"laptudirm.com/x/flippy/pkg/analysis"
	"laptudirm.com/x/flippy/pkg/tournament"
)

func Tournament() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournament config-file",
		Short: "Run a tournament between players",
		Long: heredoc.Doc(`
			Tournament plays the games described by a yaml config file and
			prints the standings once they are over:

			  players:
			    - name: oracle
			      kind: oracle
			    - name: greedy
			      kind: greedy
			  scheduler: round-robin
			  rounds: 10
			  game-pairs: 1
			  tc: 10+0.1

			Oracle players evaluate moves through the configured oracle. An
			interrupt stops the tournament and prints the games played so
			far.
		`),
		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			tourConfig, err := tournament.LoadConfig(args[0])
			if err != nil {
				return err
			}

			ctx, stop := interruptible(cmd)
			defer stop()

			var analyzer *analysis.Analyzer
			for _, player := range tourConfig.Players {
				if player.Kind == "oracle" {
					offline, _ := cmd.Flags().GetBool("offline")
					analyzer = newAnalyzer(ctx, config, offline)
					break
				}
			}

			tour, err := tournament.New(tourConfig, analyzer)
			if err != nil {
				return err
			}

			s := newSpinner(progress(tour))
			s.Start()

			done := make(chan struct{})
			go func() {
				ticker := time.NewTicker(500 * time.Millisecond)
				defer ticker.Stop()

				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						s.Lock()
						s.Suffix = " " + progress(tour)
						s.Unlock()
					}
				}
			}()

			err = tour.Run(ctx)
			close(done)
			s.Stop()

			tour.Report(os.Stdout)
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		},
	}

	cmd.Flags().Bool("offline", false, "Run oracle players without connecting to the oracle")

	return cmd
}

func progress(tour *tournament.Tournament) string {
	return fmt.Sprintf("playing games %d/%d", tour.Played(), tour.Games())
}
