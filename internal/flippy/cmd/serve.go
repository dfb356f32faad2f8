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
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"laptudirm.com/x/flippy/pkg/book"
	"laptudirm.com/x/flippy/pkg/oracle"
)

func Serve() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve evaluations from a book over websockets",
		Long: heredoc.Doc(`
			Serve starts an oracle which answers evaluation requests from an
			evaluation book. Positions missing from the book are left out of
			the answers.

			Evaluations may be added to the book over http by posting them to
			/api/evaluations, and single positions may be inspected through
			/api/positions/{key}.
		`),
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if address, _ := cmd.Flags().GetString("address"); address != "" {
				config.Server.Address = address
			}

			if dir, _ := cmd.Flags().GetString("book"); dir != "" {
				config.Server.Book = dir
			}

			b, err := book.Open(config.Server.Book)
			if err != nil {
				return err
			}

			defer closeBook(b)

			ctx, stop := interruptible(cmd)
			defer stop()

			return oracle.NewServer(b, config.Server).ListenAndServe(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringP("address", "a", "", "Address to listen on")
	flags.StringP("book", "b", "", "Directory of the evaluation book")

	return cmd
}
