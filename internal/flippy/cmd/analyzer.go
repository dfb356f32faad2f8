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

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/flippy/pkg/analysis"
	"laptudirm.com/x/flippy/pkg/common"
	"laptudirm.com/x/flippy/pkg/evaluation"
	"laptudirm.com/x/flippy/pkg/oracle"
)

// newAnalyzer returns an analyzer backed by the configured oracle. The
// client keeps running in the background until the context ends, and
// offline analyzers only ever read from their cache.
func newAnalyzer(ctx context.Context, config common.Config, offline bool) *analysis.Analyzer {
	cache := evaluation.NewCache()
	if offline {
		return analysis.New(cache, nil)
	}

	client := oracle.NewClient(config.Oracle, nil)
	go func() {
		if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logrus.WithError(err).Warn("oracle client stopped")
		}
	}()

	s := newSpinner("connecting to " + config.Oracle.URL)
	s.Start()

	timeout := config.Oracle.Timeout
	if timeout <= 0 {
		timeout = oracle.DefaultTimeout
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	err := client.WaitFor(waitCtx, oracle.Connected)
	cancel()
	s.Stop()

	if err != nil {
		logrus.Warnf("oracle %s unavailable, will keep retrying", config.Oracle.URL)
	}

	return analysis.New(cache, client)
}
