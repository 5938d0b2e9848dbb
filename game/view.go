package game

import (
	"github.com/domino14/xwordplay/tilemapping"
)

// PlayerView is the game as one player may see it: the whole board and both
// scores, but only their own rack and only the number of tiles in the bag.
type PlayerView struct {
	ID                string    `json:"id" yaml:"id"`
	Code              string    `json:"gameCode" yaml:"gameCode"`
	Board             [][]*Cell `json:"board" yaml:"board"`
	Player1Name       string    `json:"player1Name" yaml:"player1Name"`
	Player2Name       string    `json:"player2Name,omitempty" yaml:"player2Name,omitempty"`
	Player1Score      int       `json:"player1Score" yaml:"player1Score"`
	Player2Score      int       `json:"player2Score" yaml:"player2Score"`
	CurrentPlayer     int       `json:"currentPlayer" yaml:"currentPlayer"`
	Status            Status    `json:"status" yaml:"status"`
	Winner            string    `json:"winner,omitempty" yaml:"winner,omitempty"`
	FirstMove         bool      `json:"firstMove" yaml:"firstMove"`
	ConsecutivePasses int       `json:"consecutivePasses" yaml:"consecutivePasses"`
	Turn              int       `json:"turn" yaml:"turn"`
	BagCount          int       `json:"bagCount" yaml:"bagCount"`
	MyRack            []string  `json:"myRack" yaml:"myRack,flow"`
	MyPlayerNum       int       `json:"myPlayerNum" yaml:"myPlayerNum"`
	LastMove          *LastMove `json:"lastMove,omitempty" yaml:"lastMove,omitempty"`
}

// View projects the game for the named player. Someone who is not in the
// game gets slot 0 and an empty rack.
func (g *Game) View(name string) PlayerView {
	v := PlayerView{
		ID:                g.id,
		Code:              g.code,
		Board:             boardCells(g.board),
		Player1Name:       g.players[0].name,
		Player2Name:       g.players[1].name,
		Player1Score:      g.players[0].points,
		Player2Score:      g.players[1].points,
		CurrentPlayer:     g.CurrentPlayer(),
		Status:            g.status,
		Winner:            g.winner,
		FirstMove:         g.firstMove,
		ConsecutivePasses: g.consecutivePasses,
		Turn:              g.turnnum,
		BagCount:          g.bag.TilesRemaining(),
		MyRack:            []string{},
		MyPlayerNum:       g.players.slotOf(name),
	}
	if v.MyPlayerNum != 0 {
		v.MyRack = tilemapping.ToStrings(g.players[v.MyPlayerNum-1].rack.TilesOn())
	}
	if g.lastMove != nil {
		lm := *g.lastMove
		lm.Words = append([]string(nil), g.lastMove.Words...)
		v.LastMove = &lm
	}
	return v
}
