package board

import (
	"fmt"
	"strings"

	"github.com/domino14/xwordplay/tilemapping"
)

// A Square is a single square of the board. An empty square has a zero
// Letter. Points is the value the tile scores from now on: a blank keeps 0
// no matter what letter it stands for.
type Square struct {
	Letter tilemapping.Letter
	Points int
	Blank  bool
}

func (s Square) IsEmpty() bool {
	return s.Letter == 0
}

// DisplayString shows the tile, with blanks in lower case.
func (s Square) DisplayString(bonus BonusSquare) string {
	if s.IsEmpty() {
		if bonus == NoBonus {
			return " "
		}
		return string(bonus)
	}
	if s.Blank {
		return strings.ToLower(s.Letter.String())
	}
	return s.Letter.String()
}

// A GameBoard is the main board structure: the bonus layout plus the tiles
// placed so far.
type GameBoard struct {
	layout      *Layout
	squares     [Dim][Dim]Square
	tilesPlayed int
}

// MakeBoard creates an empty board with the given layout.
func MakeBoard(layout *Layout) *GameBoard {
	return &GameBoard{layout: layout}
}

// Copy returns a deep copy of the board. The layout is shared; it is never
// modified.
func (g *GameBoard) Copy() *GameBoard {
	cp := *g
	return &cp
}

func (g *GameBoard) Layout() *Layout {
	return g.layout
}

// PosExists returns true if the row and column are on the board.
func PosExists(row, col int) bool {
	return row >= 0 && row < Dim && col >= 0 && col < Dim
}

func (g *GameBoard) GetSquare(row, col int) Square {
	return g.squares[row][col]
}

func (g *GameBoard) GetBonus(row, col int) BonusSquare {
	return g.layout.Bonus(row, col)
}

// IsOccupied is false for empty squares and for positions off the board.
func (g *GameBoard) IsOccupied(row, col int) bool {
	return PosExists(row, col) && !g.squares[row][col].IsEmpty()
}

// HasNeighbor returns true if any orthogonally adjacent square holds a tile.
func (g *GameBoard) HasNeighbor(row, col int) bool {
	return g.IsOccupied(row-1, col) || g.IsOccupied(row+1, col) ||
		g.IsOccupied(row, col-1) || g.IsOccupied(row, col+1)
}

// SetSquare places a tile. It does no rule checking.
func (g *GameBoard) SetSquare(row, col int, sq Square) {
	if g.squares[row][col].IsEmpty() && !sq.IsEmpty() {
		g.tilesPlayed++
	} else if !g.squares[row][col].IsEmpty() && sq.IsEmpty() {
		g.tilesPlayed--
	}
	g.squares[row][col] = sq
}

// TilesPlayed returns the number of tiles on the board.
func (g *GameBoard) TilesPlayed() int {
	return g.tilesPlayed
}

// IsEmpty returns if the board is empty.
func (g *GameBoard) IsEmpty() bool {
	return g.tilesPlayed == 0
}

// PlaceTiles puts already-validated tiles on the board.
func (g *GameBoard) PlaceTiles(tiles []Tile, ts *tilemapping.TileSet) {
	for _, t := range tiles {
		g.SetSquare(t.Row, t.Col, t.square(ts))
	}
}

// ToDisplayText renders the board with coordinates, for the shell and logs.
func (g *GameBoard) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString("   ")
	for i := 0; i < Dim; i++ {
		fmt.Fprintf(&sb, "%c ", 'A'+i)
	}
	sb.WriteString("\n   " + strings.Repeat("-", Dim*2) + "\n")
	for i := 0; i < Dim; i++ {
		fmt.Fprintf(&sb, "%2d|", i+1)
		for j := 0; j < Dim; j++ {
			sb.WriteString(g.squares[i][j].DisplayString(g.layout.Bonus(i, j)) + " ")
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("   " + strings.Repeat("-", Dim*2) + "\n")
	return "\n" + sb.String()
}
