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

package common

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"gopkg.in/yaml.v3"

	"laptudirm.com/x/flippy/pkg/oracle"
)

// DefaultConfig is written to the config file if it does not exist.
var DefaultConfig = heredoc.Doc(`
	# flippy configuration

	oracle:
	  # websocket endpoint of the scoring oracle
	  url: ws://localhost:8765/ws
	  # delay before reconnecting after the connection is lost
	  retry-delay: 1s
	  # time after which an unanswered request is given up
	  timeout: 10s

	server:
	  # address the reference oracle listens on
	  address: localhost:8765
	  # directory of the opening book, the default location if empty
	  book: ""
`)

// Config is flippy's configuration.
type Config struct {
	Oracle oracle.Config       `yaml:"oracle"`
	Server oracle.ServerConfig `yaml:"server"`
}

// ParseConfig parses a yaml config. Fields missing from the data keep
// their default values.
func ParseConfig(data []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(DefaultConfig), &config); err != nil {
		return config, fmt.Errorf("default config: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config: %w", err)
	}

	if config.Server.Book == "" {
		config.Server.Book = BookDirectory
	}

	return config, nil
}

// LoadConfig reads the config file at path, creating it with the default
// config if it does not exist.
func LoadConfig(path string) (Config, error) {
	TryCreate(path, []byte(DefaultConfig))

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return ParseConfig(data)
}
