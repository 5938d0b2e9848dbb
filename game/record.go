package game

import (
	"fmt"
	"time"

	"github.com/domino14/xwordplay/board"
	"github.com/domino14/xwordplay/tilemapping"
)

// A Cell is one occupied board square in a Record.
type Cell struct {
	Letter string `json:"letter" yaml:"letter"`
	Points int    `json:"pts" yaml:"pts"`
	Blank  bool   `json:"blank,omitempty" yaml:"blank,omitempty"`
}

// Record is the stored form of a game. Empty board squares are nil. The bag
// keeps its order: the next tile drawn is the last one. Version goes up by
// one on every save; a repository refuses a record whose previous version
// is not the one it holds.
type Record struct {
	ID                string    `json:"id" yaml:"id"`
	Code              string    `json:"gameCode" yaml:"gameCode"`
	Board             [][]*Cell `json:"board" yaml:"board"`
	Bag               []string  `json:"bag" yaml:"bag,flow"`
	Player1Name       string    `json:"player1Name" yaml:"player1Name"`
	Player2Name       string    `json:"player2Name,omitempty" yaml:"player2Name,omitempty"`
	Player1Rack       []string  `json:"player1Rack" yaml:"player1Rack,flow"`
	Player2Rack       []string  `json:"player2Rack" yaml:"player2Rack,flow"`
	Player1Score      int       `json:"player1Score" yaml:"player1Score"`
	Player2Score      int       `json:"player2Score" yaml:"player2Score"`
	CurrentPlayer     int       `json:"currentPlayer" yaml:"currentPlayer"`
	Status            Status    `json:"status" yaml:"status"`
	Winner            string    `json:"winner,omitempty" yaml:"winner,omitempty"`
	FirstMove         bool      `json:"firstMove" yaml:"firstMove"`
	ConsecutivePasses int       `json:"consecutivePasses" yaml:"consecutivePasses"`
	Turn              int       `json:"turn" yaml:"turn"`
	Version           int       `json:"version" yaml:"version"`
	LastMove          *LastMove `json:"lastMove,omitempty" yaml:"lastMove,omitempty"`
	CreatedAt         time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" yaml:"updatedAt"`
}

func boardCells(b *board.GameBoard) [][]*Cell {
	cells := make([][]*Cell, board.Dim)
	for r := range cells {
		cells[r] = make([]*Cell, board.Dim)
		for c := range cells[r] {
			sq := b.GetSquare(r, c)
			if sq.IsEmpty() {
				continue
			}
			cells[r][c] = &Cell{Letter: sq.Letter.String(), Points: sq.Points, Blank: sq.Blank}
		}
	}
	return cells
}

// Record returns the stored form of the game. It shares nothing with the
// game.
func (g *Game) Record() *Record {
	rec := &Record{
		ID:                g.id,
		Code:              g.code,
		Board:             boardCells(g.board),
		Bag:               tilemapping.ToStrings(g.bag.Tiles()),
		Player1Name:       g.players[0].name,
		Player2Name:       g.players[1].name,
		Player1Rack:       tilemapping.ToStrings(g.players[0].rack.TilesOn()),
		Player2Rack:       tilemapping.ToStrings(g.players[1].rack.TilesOn()),
		Player1Score:      g.players[0].points,
		Player2Score:      g.players[1].points,
		CurrentPlayer:     g.CurrentPlayer(),
		Status:            g.status,
		Winner:            g.winner,
		FirstMove:         g.firstMove,
		ConsecutivePasses: g.consecutivePasses,
		Turn:              g.turnnum,
		Version:           g.version,
		CreatedAt:         g.createdAt,
		UpdatedAt:         g.updatedAt,
	}
	if g.lastMove != nil {
		lm := *g.lastMove
		lm.Words = append([]string(nil), g.lastMove.Words...)
		rec.LastMove = &lm
	}
	return rec
}

// FromRecord rebuilds a game from its stored form. A record that breaks the
// game's invariants is rejected rather than repaired.
func FromRecord(rec *Record) (*Game, error) {
	switch rec.Status {
	case StatusWaiting, StatusActive, StatusFinished:
	default:
		return nil, fmt.Errorf("game %s: unknown status %q", rec.Code, rec.Status)
	}
	if rec.CurrentPlayer != 1 && rec.CurrentPlayer != 2 {
		return nil, fmt.Errorf("game %s: current player %d out of range", rec.Code, rec.CurrentPlayer)
	}
	if rec.Player1Name == "" {
		return nil, fmt.Errorf("game %s: missing first player", rec.Code)
	}
	g := &Game{
		id:                rec.ID,
		code:              rec.Code,
		tileSet:           tilemapping.English,
		board:             board.MakeBoard(board.StandardLayout),
		status:            rec.Status,
		onturn:            rec.CurrentPlayer - 1,
		firstMove:         rec.FirstMove,
		consecutivePasses: rec.ConsecutivePasses,
		winner:            rec.Winner,
		turnnum:           rec.Turn,
		version:           rec.Version,
		createdAt:         rec.CreatedAt,
		updatedAt:         rec.UpdatedAt,
	}
	if rec.LastMove != nil {
		lm := *rec.LastMove
		g.lastMove = &lm
	}

	bag, err := tilemapping.FromStrings(rec.Bag)
	if err != nil {
		return nil, fmt.Errorf("game %s: bag: %w", rec.Code, err)
	}
	g.bag = tilemapping.BagFromTiles(g.tileSet, bag)

	names := [2]string{rec.Player1Name, rec.Player2Name}
	racks := [2][]string{rec.Player1Rack, rec.Player2Rack}
	scores := [2]int{rec.Player1Score, rec.Player2Score}
	for i := range g.players {
		tiles, err := tilemapping.FromStrings(racks[i])
		if err != nil {
			return nil, fmt.Errorf("game %s: rack %d: %w", rec.Code, i+1, err)
		}
		if len(tiles) > tilemapping.RackTileLimit {
			return nil, fmt.Errorf("game %s: rack %d holds %d tiles", rec.Code, i+1, len(tiles))
		}
		g.players[i] = newPlayerState(names[i])
		g.players[i].rack.Add(tiles...)
		g.players[i].points = scores[i]
	}

	if err := g.loadBoard(rec.Board); err != nil {
		return nil, fmt.Errorf("game %s: %w", rec.Code, err)
	}
	if n := g.TileCount(); n != g.tileSet.NumTiles() {
		return nil, fmt.Errorf("game %s: %d tiles in play, expected %d", rec.Code, n, g.tileSet.NumTiles())
	}
	return g, nil
}

func (g *Game) loadBoard(cells [][]*Cell) error {
	if len(cells) != board.Dim {
		return fmt.Errorf("board has %d rows", len(cells))
	}
	for r, row := range cells {
		if len(row) != board.Dim {
			return fmt.Errorf("board row %d has %d squares", r, len(row))
		}
		for c, cell := range row {
			if cell == nil {
				continue
			}
			l, err := tilemapping.LetterFromString(cell.Letter)
			if err != nil || !l.IsAlpha() {
				return fmt.Errorf("bad tile %q at (%d, %d)", cell.Letter, r, c)
			}
			g.board.SetSquare(r, c, board.Square{Letter: l, Points: cell.Points, Blank: cell.Blank})
		}
	}
	return nil
}
