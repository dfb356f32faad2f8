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

package match

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeControl is a clock of Base time to which Inc is added after every
// move. The zero TimeControl does not limit the players.
type TimeControl struct {
	Base, Inc time.Duration
}

// ParseTime parses a time control of the form base+increment, both in
// seconds. An empty string is the unlimited time control.
func ParseTime(str string) (TimeControl, error) {
	if str == "" {
		return TimeControl{}, nil
	}

	base, inc, found := strings.Cut(str, "+")
	if !found {
		return TimeControl{}, errors.New("parse tc: increment not found")
	}

	secs, err := strconv.ParseFloat(base, 64)
	if err != nil {
		return TimeControl{}, fmt.Errorf("parse tc: %w", err)
	}

	incs, err := strconv.ParseFloat(inc, 64)
	if err != nil {
		return TimeControl{}, fmt.Errorf("parse tc: %w", err)
	}

	if secs < 0 || incs < 0 {
		return TimeControl{}, errors.New("parse tc: negative time")
	}

	return TimeControl{
		Base: time.Duration(secs * float64(time.Second)),
		Inc:  time.Duration(incs * float64(time.Second)),
	}, nil
}

// Limited reports whether the time control limits the players.
func (tc TimeControl) Limited() bool {
	return tc.Base > 0
}

func (tc TimeControl) String() string {
	if !tc.Limited() {
		return "unlimited"
	}

	return fmt.Sprintf("%g+%g", tc.Base.Seconds(), tc.Inc.Seconds())
}
