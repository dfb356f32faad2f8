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
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/flippy/pkg/common"
)

// LogLevelEnv overrides the logging level, like FLIPPY_LOG_LEVEL=debug.
const LogLevelEnv = "FLIPPY_LOG_LEVEL"

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "flippy",
		Short: "Play and analyze othello with the help of a scoring oracle",
		Args:  cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if level, found := os.LookupEnv(LogLevelEnv); found {
				parsed, err := logrus.ParseLevel(level)
				if err != nil {
					return fmt.Errorf("%s: %w", LogLevelEnv, err)
				}

				logrus.SetLevel(parsed)
			}

			// If --trace flag is provided, set logging level to Trace.
			if cmd.Flag("trace").Changed {
				logrus.SetLevel(logrus.TraceLevel)
			}

			common.Setup()
			return nil
		},
	}

	// global flags
	root.PersistentFlags().BoolP("help", "h", false, "Show Help Information")
	root.PersistentFlags().BoolP("version", "v", false, "Show Flippy's Version")
	root.PersistentFlags().BoolP("trace", "t", false, "Show Trace Information")
	root.PersistentFlags().StringP("config", "c", common.ConfigFile, "Configuration File")

	versionStr := "v0.1.0\n"
	root.SetVersionTemplate(versionStr)
	root.Version = versionStr

	// Register the various commands.
	root.AddCommand(Play())
	root.AddCommand(Serve())
	root.AddCommand(Show())
	root.AddCommand(Book())
	root.AddCommand(Tournament())

	return root
}

func loadConfig(cmd *cobra.Command) (common.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return common.Config{}, err
	}

	return common.LoadConfig(path)
}

// interruptible returns a context which ends on an interrupt.
func interruptible(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
