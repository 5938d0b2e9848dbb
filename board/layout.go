package board

import (
	"fmt"
)

// Dim is the dimension of the board. The board is square.
const Dim = 15

const (
	// CenterRow and CenterCol locate the star square that the first play
	// must cover.
	CenterRow = 7
	CenterCol = 7
)

// A BonusSquare is a bonus square (duh)
type BonusSquare rune

const (
	NoBonus BonusSquare = ' '
	// Bonus3WS is a triple word score
	Bonus3WS BonusSquare = '='
	// Bonus2WS is a double word score
	Bonus2WS BonusSquare = '-'
	// Bonus3LS is a triple letter score
	Bonus3LS BonusSquare = '"'
	// Bonus2LS is a double letter score
	Bonus2LS BonusSquare = '\''
	// BonusCenter is the star. It scores as a double word.
	BonusCenter BonusSquare = '*'
)

var (
	// CrosswordGameBoard is the standard layout.
	CrosswordGameBoard = []string{
		`=  '   =   '  =`,
		` -   "   "   - `,
		`  -   ' '   -  `,
		`'  -   '   -  '`,
		`    -     -    `,
		` "   "   "   " `,
		`  '   ' '   '  `,
		`=  '   *   '  =`,
		`  '   ' '   '  `,
		` "   "   "   " `,
		`    -     -    `,
		`'  -   '   -  '`,
		`  -   ' '   -  `,
		` -   "   "   - `,
		`=  '   =   '  =`,
	}

	// StandardLayout is CrosswordGameBoard, parsed once.
	StandardLayout = mustLayout(CrosswordGameBoard)
)

// LetterMultiplier is what a freshly placed tile's value is multiplied by.
func (b BonusSquare) LetterMultiplier() int {
	switch b {
	case Bonus2LS:
		return 2
	case Bonus3LS:
		return 3
	}
	return 1
}

// WordMultiplier is what a word is multiplied by when a freshly placed tile
// sits on this square.
func (b BonusSquare) WordMultiplier() int {
	switch b {
	case Bonus2WS, BonusCenter:
		return 2
	case Bonus3WS:
		return 3
	}
	return 1
}

func (b BonusSquare) String() string {
	switch b {
	case Bonus3WS:
		return "triple-word"
	case Bonus2WS:
		return "double-word"
	case Bonus3LS:
		return "triple-letter"
	case Bonus2LS:
		return "double-letter"
	case BonusCenter:
		return "center"
	}
	return "none"
}

// A Layout is an immutable table of bonus squares.
type Layout struct {
	squares [Dim][Dim]BonusSquare
}

// MakeLayout creates a layout from a description string table, one string
// per row.
func MakeLayout(desc []string) (*Layout, error) {
	if len(desc) != Dim {
		return nil, fmt.Errorf("layout must have %d rows, has %d", Dim, len(desc))
	}
	l := &Layout{}
	centers := 0
	for r, s := range desc {
		row := []rune(s)
		if len(row) != Dim {
			return nil, fmt.Errorf("layout row %d must have %d squares, has %d", r, Dim, len(row))
		}
		for c, ch := range row {
			b := BonusSquare(ch)
			switch b {
			case NoBonus, Bonus3WS, Bonus2WS, Bonus3LS, Bonus2LS:
			case BonusCenter:
				if r != CenterRow || c != CenterCol {
					return nil, fmt.Errorf("center square must be at (%d,%d)", CenterRow, CenterCol)
				}
				centers++
			default:
				return nil, fmt.Errorf("unknown bonus square %q at (%d,%d)", ch, r, c)
			}
			l.squares[r][c] = b
		}
	}
	if centers != 1 {
		return nil, fmt.Errorf("layout must have exactly one center square")
	}
	return l, nil
}

func mustLayout(desc []string) *Layout {
	l, err := MakeLayout(desc)
	if err != nil {
		panic(err)
	}
	return l
}

// Bonus returns the bonus at the square.
func (l *Layout) Bonus(row, col int) BonusSquare {
	return l.squares[row][col]
}
