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

package othello

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

const (
	KeyLength      = 32 // length of a key's text form
	KeyBytesLength = 16 // length of a key's binary form
)

// Key is the canonical key of a position: the two bitboards of its
// normalized form. Keys are compared as values, and their text form is
// always upper case hex, mover first.
type Key struct {
	Mover    Bitboard
	Opponent Bitboard
}

// ParseKey parses the text form of a key. Hex digits of either case are
// accepted. The key is not required to be canonical.
func ParseKey(str string) (Key, error) {
	if len(str) != KeyLength {
		return Key{}, fmt.Errorf("parse key: want %d characters, got %d", KeyLength, len(str))
	}

	mover, err := strconv.ParseUint(str[:16], 16, 64)
	if err != nil {
		return Key{}, fmt.Errorf("parse key: mover: %w", err)
	}

	opponent, err := strconv.ParseUint(str[16:], 16, 64)
	if err != nil {
		return Key{}, fmt.Errorf("parse key: opponent: %w", err)
	}

	if mover&opponent != 0 {
		return Key{}, fmt.Errorf("parse key: %w", ErrOverlap)
	}

	return Key{Mover: Bitboard(mover), Opponent: Bitboard(opponent)}, nil
}

// KeyFromBytes decodes the binary form of a key.
func KeyFromBytes(b []byte) (Key, error) {
	if len(b) != KeyBytesLength {
		return Key{}, fmt.Errorf("key from bytes: want %d bytes, got %d", KeyBytesLength, len(b))
	}

	return Key{
		Mover:    Bitboard(binary.LittleEndian.Uint64(b[:8])),
		Opponent: Bitboard(binary.LittleEndian.Uint64(b[8:])),
	}, nil
}

func (key Key) String() string {
	return fmt.Sprintf("%016X%016X", uint64(key.Mover), uint64(key.Opponent))
}

// Bytes returns the binary form of the key: both bitboards little endian,
// mover first.
func (key Key) Bytes() []byte {
	b := make([]byte, KeyBytesLength)
	binary.LittleEndian.PutUint64(b[:8], uint64(key.Mover))
	binary.LittleEndian.PutUint64(b[8:], uint64(key.Opponent))
	return b
}

// Position returns the position the key was made from. Keys do not
// record colors, so black is taken to be the side to move.
func (key Key) Position() Position {
	return Position{mover: key.Mover, opponent: key.Opponent, turn: Black}
}

// IsCanonical reports whether the key is the key of its own position.
func (key Key) IsCanonical() bool {
	return key.Position().Key() == key
}

// Discs returns the number of discs on the board.
func (key Key) Discs() int {
	return (key.Mover | key.Opponent).Count()
}

// MarshalText implements encoding.TextMarshaler.
func (key Key) MarshalText() ([]byte, error) {
	return []byte(key.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (key *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}

	*key = parsed
	return nil
}
