package game

import (
	"fmt"
	"strings"

	"github.com/domino14/xwordplay/board"
	"github.com/domino14/xwordplay/tilemapping"
)

// splitSubN cuts s into chunks of at most n runes.
func splitSubN(s string, n int) []string {
	subs := []string{}
	var sb strings.Builder
	count := 0
	for _, r := range s {
		sb.WriteRune(r)
		count++
		if count == n {
			subs = append(subs, sb.String())
			sb.Reset()
			count = 0
		}
	}
	if count > 0 {
		subs = append(subs, sb.String())
	}
	return subs
}

func addText(lines []string, row int, hpad int, text string) {
	maxTextSize := 42
	sp := splitSubN(text, maxTextSize)

	for _, chunk := range sp {
		if row >= len(lines) {
			return
		}
		lines[row] = lines[row] + strings.Repeat(" ", hpad) + chunk
		row++
	}
}

func (v PlayerView) gameBoard() *board.GameBoard {
	b := board.MakeBoard(board.StandardLayout)
	for r, row := range v.Board {
		for c, cell := range row {
			if cell == nil || len(cell.Letter) != 1 {
				continue
			}
			b.SetSquare(r, c, board.Square{
				Letter: tilemapping.Letter(cell.Letter[0]), Points: cell.Points, Blank: cell.Blank,
			})
		}
	}
	return b
}

// ToDisplayText renders the view next to the board: both players with
// the viewer's rack only, the bag count and the last move.
func (v PlayerView) ToDisplayText() string {
	bts := strings.Split(v.gameBoard().ToDisplayText(), "\n")
	hpadding := 3
	vpadding := 3

	names := [2]string{v.Player1Name, v.Player2Name}
	scores := [2]int{v.Player1Score, v.Player2Score}
	for pi := 0; pi < 2; pi++ {
		ps := &playerState{name: names[pi], points: scores[pi]}
		// The view's rack is shown as sent, whatever its symbols.
		rackText := ""
		if v.MyPlayerNum == pi+1 {
			rackText = strings.Join(v.MyRack, "")
		}
		onturn := v.Status == StatusActive && v.CurrentPlayer == pi+1
		addText(bts, vpadding+pi, hpadding, ps.stateString(onturn, rackText))
	}

	addText(bts, vpadding+3, hpadding, fmt.Sprintf("Bag: %d", v.BagCount))
	addText(bts, vpadding+5, hpadding, fmt.Sprintf("Game %s, turn %d (%s)", v.Code, v.Turn, v.Status))

	if lm := v.LastMove; lm != nil {
		summary := fmt.Sprintf("%s passed", lm.Player)
		if !lm.Pass {
			summary = fmt.Sprintf("%s played %s for %d: %s",
				lm.Player, lm.Play, lm.Score, strings.Join(lm.Words, ", "))
		}
		addText(bts, vpadding+7, hpadding, summary)
	}

	if v.Status == StatusFinished {
		result := "Game is over. Winner: " + v.Winner
		if v.Winner == TieMarker {
			result = "Game is over. It's a tie."
		}
		addText(bts, vpadding+11, hpadding, result)
	}
	return strings.Join(bts, "\n")
}
