package move

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/domino14/xwordplay/board"
	"github.com/domino14/xwordplay/tilemapping"
)

// PlayedThroughMarker in a play string stands for a tile already on the
// board.
const PlayedThroughMarker = '.'

var upper = cases.Upper(language.Und)

// A TilePlacement is one tile a player puts down this turn. Letter is the
// letter the tile plays as; IsBlank means it comes off the rack as a blank.
type TilePlacement struct {
	Row     int                `json:"row" yaml:"row"`
	Col     int                `json:"col" yaml:"col"`
	Letter  tilemapping.Letter `json:"letter" yaml:"letter"`
	IsBlank bool               `json:"isBlank,omitempty" yaml:"isBlank,omitempty"`
}

// A Placement is every tile placed in a single move.
type Placement []TilePlacement

// NewPlacement copies the tiles, upper-cases their letters and runs the
// boundary checks. An empty placement is allowed through; the validator
// rejects it.
func NewPlacement(tiles []TilePlacement) (Placement, error) {
	p := make(Placement, len(tiles))
	for i, t := range tiles {
		if t.Letter >= 'a' && t.Letter <= 'z' {
			t.Letter -= 'a' - 'A'
		}
		p[i] = t
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p Placement) check() error {
	if len(p) > tilemapping.RackTileLimit {
		return fmt.Errorf("%w: %d tiles placed, at most %d allowed",
			ErrMalformedPlacement, len(p), tilemapping.RackTileLimit)
	}
	for _, t := range p {
		if !board.PosExists(t.Row, t.Col) {
			return fmt.Errorf("%w: square (%d, %d) is off the board", ErrMalformedPlacement, t.Row, t.Col)
		}
		if !t.Letter.IsAlpha() {
			return fmt.Errorf("%w: %q is not a letter", ErrMalformedPlacement, t.Letter.String())
		}
	}
	dupes := lo.FindDuplicatesBy(p, func(t TilePlacement) [2]int {
		return [2]int{t.Row, t.Col}
	})
	if len(dupes) > 0 {
		return fmt.Errorf("%w: square %s used more than once", ErrMalformedPlacement,
			ToBoardGameCoords(dupes[0].Row, dupes[0].Col, false))
	}
	return nil
}

// ParsePlay builds a placement from a coordinate and a play string, the way
// plays are typed in the shell: "8H CAT" goes across from 8H, "H8 CAT" goes
// down. A lower-case letter is a blank playing as that letter, and a '.'
// skips over a tile that is already on the board.
func ParsePlay(coords, word string) (Placement, error) {
	row, col, vertical, err := FromBoardGameCoords(upper.String(strings.TrimSpace(coords)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlacement, err)
	}
	dr, dc := 0, 1
	if vertical {
		dr, dc = 1, 0
	}
	tiles := []TilePlacement{}
	for i, c := range word {
		if c == PlayedThroughMarker {
			continue
		}
		t := TilePlacement{Row: row + i*dr, Col: col + i*dc}
		switch {
		case c >= 'A' && c <= 'Z':
			t.Letter = tilemapping.Letter(c)
		case c >= 'a' && c <= 'z':
			t.Letter = tilemapping.Letter(c - 'a' + 'A')
			t.IsBlank = true
		default:
			return nil, fmt.Errorf("%w: %q is not a letter", ErrMalformedPlacement, string(c))
		}
		tiles = append(tiles, t)
	}
	return NewPlacement(tiles)
}

// Tiles converts the placement into board tiles.
func (p Placement) Tiles() []board.Tile {
	return lo.Map(p, func(t TilePlacement, _ int) board.Tile {
		return board.Tile{Row: t.Row, Col: t.Col, Letter: t.Letter, Blank: t.IsBlank}
	})
}

// RackLetters returns the rack symbols this placement uses up: the letter
// itself, or the blank symbol for a blank.
func (p Placement) RackLetters() []tilemapping.Letter {
	return lo.Map(p, func(t TilePlacement, _ int) tilemapping.Letter {
		if t.IsBlank {
			return tilemapping.BlankLetter
		}
		return t.Letter
	})
}

// Coords returns the coordinate of the first tile in board game notation.
// A single tile is described as across.
func (p Placement) Coords() string {
	if len(p) == 0 {
		return ""
	}
	first := lo.MinBy(p, func(a, b TilePlacement) bool {
		return a.Row < b.Row || (a.Row == b.Row && a.Col < b.Col)
	})
	_, vertical := p.line()
	return ToBoardGameCoords(first.Row, first.Col, vertical)
}

// String shows the placement the way ParsePlay reads it, minus the
// played-through markers.
func (p Placement) String() string {
	var sb strings.Builder
	for _, t := range p {
		if t.IsBlank {
			sb.WriteString(strings.ToLower(t.Letter.String()))
		} else {
			sb.WriteString(t.Letter.String())
		}
	}
	return strings.TrimSpace(p.Coords() + " " + sb.String())
}

func (p Placement) singleRow() bool {
	return len(lo.UniqBy(p, func(t TilePlacement) int { return t.Row })) == 1
}

func (p Placement) singleCol() bool {
	return len(lo.UniqBy(p, func(t TilePlacement) int { return t.Col })) == 1
}

// line reports whether the tiles share a row or a column, and if they do,
// whether the line is vertical. A single tile is on both.
func (p Placement) line() (ok bool, vertical bool) {
	if p.singleRow() {
		return true, false
	}
	if p.singleCol() {
		return true, true
	}
	return false, false
}

func (p Placement) covers(row, col int) bool {
	return lo.ContainsBy(p, func(t TilePlacement) bool {
		return t.Row == row && t.Col == col
	})
}
