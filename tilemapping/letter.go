package tilemapping

import (
	"fmt"
	"strings"
)

// A Letter is a single tile symbol. Letters 'A' through 'Z' are regular
// tiles; BlankLetter is the blank, which can stand for any letter once it
// is placed on the board.
type Letter byte

const (
	// BlankLetter is the symbol used for a blank tile in the bag and racks.
	BlankLetter Letter = '_'

	// RackTileLimit is the maximum number of tiles on a rack.
	RackTileLimit = 7
)

// IsBlank returns true if this is the blank symbol.
func (l Letter) IsBlank() bool {
	return l == BlankLetter
}

// IsAlpha returns true if this is one of the 26 regular letters.
func (l Letter) IsAlpha() bool {
	return l >= 'A' && l <= 'Z'
}

// Valid returns true if the letter is a tile that exists in the game.
func (l Letter) Valid() bool {
	return l.IsAlpha() || l.IsBlank()
}

func (l Letter) String() string {
	return string(rune(l))
}

// MarshalText writes the letter as its one-character symbol, so letters
// read as strings in JSON and YAML.
func (l Letter) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("cannot encode tile symbol %d", l)
	}
	return []byte{byte(l)}, nil
}

func (l *Letter) UnmarshalText(text []byte) error {
	nl, err := LetterFromString(string(text))
	if err != nil {
		return err
	}
	*l = nl
	return nil
}

// LetterFromString converts a one-character tile symbol into a Letter.
// Lower-case letters are upper-cased.
func LetterFromString(s string) (Letter, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("tile symbol must be one character: %q", s)
	}
	l := Letter(strings.ToUpper(s)[0])
	if !l.Valid() {
		return 0, fmt.Errorf("unknown tile symbol: %q", s)
	}
	return l, nil
}

// FromStrings converts a stored sequence of tile symbols back into letters.
func FromStrings(syms []string) ([]Letter, error) {
	letters := make([]Letter, len(syms))
	for i, s := range syms {
		l, err := LetterFromString(s)
		if err != nil {
			return nil, err
		}
		letters[i] = l
	}
	return letters, nil
}

// ToStrings turns letters into their one-character symbols, in order.
func ToStrings(letters []Letter) []string {
	syms := make([]string, len(letters))
	for i, l := range letters {
		syms[i] = l.String()
	}
	return syms
}

// UserVisible returns the letters joined into a single string.
func UserVisible(letters []Letter) string {
	var sb strings.Builder
	for _, l := range letters {
		sb.WriteByte(byte(l))
	}
	return sb.String()
}
