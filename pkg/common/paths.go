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

// Package common holds the file system layout and configuration shared
// by flippy's commands.
package common

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const FilePermissions = 0755

var (
	// Directory holds flippy's data, like the opening book.
	Directory = filepath.Join(xdg.DataHome, "flippy")

	// BookDirectory holds the badger database of the opening book.
	BookDirectory = filepath.Join(Directory, "book")

	// ConfigFile is the default configuration file.
	ConfigFile = filepath.Join(xdg.ConfigHome, "flippy", "config.yaml")
)

func TryMkdir(dir string) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		_ = os.MkdirAll(dir, FilePermissions)
	}
}

func TryCreate(file string, data []byte) {
	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		TryMkdir(filepath.Dir(file))
		_ = os.WriteFile(file, data, 0644)
	}
}

// Setup creates flippy's directories if they do not exist yet.
func Setup() {
	TryMkdir(Directory)
	TryMkdir(BookDirectory)
}
