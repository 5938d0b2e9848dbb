package board

import (
	"errors"
	"strings"

	"github.com/domino14/xwordplay/tilemapping"
)

// BingoBonus is awarded for playing every tile of a full rack in one move.
const BingoBonus = 50

// ErrNoWordFormed is returned when a placement is structurally fine but
// does not make any run of two or more tiles.
var ErrNoWordFormed = errors.New("no valid word formed")

type BoardDirection uint8

const (
	HorizontalDirection BoardDirection = iota
	VerticalDirection
)

func (bd BoardDirection) String() string {
	if bd == HorizontalDirection {
		return "horizontal"
	} else if bd == VerticalDirection {
		return "vertical"
	}
	return "none"
}

func (bd BoardDirection) delta() (int, int) {
	if bd == VerticalDirection {
		return 1, 0
	}
	return 0, 1
}

// A Tile is a tile being placed this turn. Letter is the letter it plays
// as; for a blank that is the chosen letter.
type Tile struct {
	Row    int
	Col    int
	Letter tilemapping.Letter
	Blank  bool
}

func (t Tile) square(ts *tilemapping.TileSet) Square {
	pts := 0
	if !t.Blank {
		pts = ts.Points(t.Letter)
	}
	return Square{Letter: t.Letter, Points: pts, Blank: t.Blank}
}

// A WordCell is one square of a formed word.
type WordCell struct {
	Row    int
	Col    int
	Letter tilemapping.Letter
	Points int
	New    bool
}

// A Word is a maximal run of tiles containing at least one new tile.
type Word struct {
	Row       int
	Col       int
	Direction BoardDirection
	Cells     []WordCell
	Score     int
}

// String returns the letters of the word.
func (w Word) String() string {
	var sb strings.Builder
	for _, c := range w.Cells {
		sb.WriteByte(byte(c.Letter))
	}
	return sb.String()
}

// A Play is the result of scoring a placement.
type Play struct {
	Words []Word
	Score int
	Bingo bool
}

// WordsText joins the words the way they are shown to players: "CAT, AT".
func (p Play) WordsText() string {
	ws := make([]string, len(p.Words))
	for i, w := range p.Words {
		ws[i] = w.String()
	}
	return strings.Join(ws, ", ")
}

type wordKey struct {
	row, col int
	dir      BoardDirection
	length   int
}

// FormedWords overlays the tiles on a copy of the board and returns every
// distinct run of two or more tiles that goes through at least one of them.
// Words are returned in the order they are discovered: for each new tile,
// horizontal first, then vertical. Scores are not filled in.
func (g *GameBoard) FormedWords(tiles []Tile, ts *tilemapping.TileSet) []Word {
	overlay := g.Copy()
	isNew := make(map[[2]int]bool, len(tiles))
	for _, t := range tiles {
		overlay.squares[t.Row][t.Col] = t.square(ts)
		isNew[[2]int{t.Row, t.Col}] = true
	}
	seen := make(map[wordKey]bool)
	words := []Word{}
	for _, t := range tiles {
		for _, dir := range []BoardDirection{HorizontalDirection, VerticalDirection} {
			w := overlay.wordAt(t.Row, t.Col, dir, isNew)
			if len(w.Cells) < 2 {
				continue
			}
			k := wordKey{w.Row, w.Col, dir, len(w.Cells)}
			if seen[k] {
				continue
			}
			seen[k] = true
			words = append(words, w)
		}
	}
	return words
}

// wordAt walks back to the start of the run through (row, col), then
// forward to its end.
func (g *GameBoard) wordAt(row, col int, dir BoardDirection, isNew map[[2]int]bool) Word {
	dr, dc := dir.delta()
	for g.IsOccupied(row-dr, col-dc) {
		row -= dr
		col -= dc
	}
	w := Word{Row: row, Col: col, Direction: dir}
	for r, c := row, col; g.IsOccupied(r, c); r, c = r+dr, c+dc {
		sq := g.squares[r][c]
		w.Cells = append(w.Cells, WordCell{
			Row: r, Col: c, Letter: sq.Letter, Points: sq.Points, New: isNew[[2]int{r, c}],
		})
	}
	return w
}

// scoreWord applies letter bonuses and word multipliers, but only for
// squares covered this turn.
func (g *GameBoard) scoreWord(w Word) int {
	score := 0
	wordMultiplier := 1
	for _, c := range w.Cells {
		ls := c.Points
		if c.New {
			bonus := g.layout.Bonus(c.Row, c.Col)
			ls *= bonus.LetterMultiplier()
			wordMultiplier *= bonus.WordMultiplier()
		}
		score += ls
	}
	return score * wordMultiplier
}

// ScorePlay finds and scores every word the tiles form. It expects the
// placement to have been validated already. The board is not modified.
func (g *GameBoard) ScorePlay(tiles []Tile, ts *tilemapping.TileSet) (Play, error) {
	words := g.FormedWords(tiles, ts)
	if len(words) == 0 {
		return Play{}, ErrNoWordFormed
	}
	play := Play{Words: words}
	for i := range play.Words {
		play.Words[i].Score = g.scoreWord(play.Words[i])
		play.Score += play.Words[i].Score
	}
	if len(tiles) == tilemapping.RackTileLimit {
		play.Bingo = true
		play.Score += BingoBonus
	}
	return play, nil
}
