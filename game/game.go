// Package game holds the rules of a two-player crossword game: turn order,
// scoring moves, passes and the end of the game. A Game is not safe for
// concurrent use; callers serialize access per game.
package game

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/xwordplay/board"
	"github.com/domino14/xwordplay/move"
	"github.com/domino14/xwordplay/tilemapping"
)

// Status is where a game is in its lifecycle.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

const (
	// TieMarker is the winner of a game that ends with equal scores.
	TieMarker = "Tie"

	// MaxConsecutivePasses ends the game once reached.
	MaxConsecutivePasses = 4
)

// A LastMove summarizes the most recent play or pass, for display.
type LastMove struct {
	Player string   `json:"player" yaml:"player"`
	Pass   bool     `json:"pass,omitempty" yaml:"pass,omitempty"`
	Play   string   `json:"play,omitempty" yaml:"play,omitempty"`
	Words  []string `json:"words,omitempty" yaml:"words,omitempty"`
	Score  int      `json:"score" yaml:"score"`
}

// MoveResult is what an accepted move returns to the mover.
type MoveResult struct {
	Score     int      `json:"score"`
	Words     []string `json:"words"`
	WordsText string   `json:"wordsText"`
	Bingo     bool     `json:"bingo,omitempty"`
	GameOver  bool     `json:"gameOver"`
	Winner    string   `json:"winner,omitempty"`
}

// PassResult is what an accepted pass returns.
type PassResult struct {
	GameOver bool   `json:"gameOver"`
	Winner   string `json:"winner,omitempty"`
}

// Game is the aggregate root: board, bag, both racks and scores, and the
// turn state.
type Game struct {
	id      string
	code    string
	tileSet *tilemapping.TileSet
	board   *board.GameBoard
	bag     *tilemapping.Bag
	players playerStates

	status            Status
	onturn            int
	firstMove         bool
	consecutivePasses int
	winner            string
	turnnum           int
	lastMove          *LastMove

	createdAt time.Time
	updatedAt time.Time
	version   int
}

// New creates a game waiting for its second player. The bag is built and
// shuffled once, and the first player draws a full rack.
func New(id, code, player1 string, s tilemapping.Shuffler) *Game {
	g := &Game{
		id:        id,
		code:      code,
		tileSet:   tilemapping.English,
		board:     board.MakeBoard(board.StandardLayout),
		bag:       tilemapping.NewBag(tilemapping.English, s),
		players:   playerStates{newPlayerState(player1), newPlayerState("")},
		status:    StatusWaiting,
		firstMove: true,
	}
	g.players[0].rack.Add(g.bag.Draw(tilemapping.RackTileLimit)...)
	return g
}

// Join seats the second player, or finds the slot of a player who is
// already seated. Reconnecting changes nothing and works in any status.
func (g *Game) Join(name string) (int, error) {
	if slot := g.players.slotOf(name); slot != 0 {
		return slot, nil
	}
	if g.status != StatusWaiting {
		return 0, ErrGameFull
	}
	g.players[1] = newPlayerState(name)
	g.players[1].rack.Add(g.bag.Draw(tilemapping.RackTileLimit)...)
	g.status = StatusActive
	g.onturn = 0
	log.Debug().Str("game", g.code).Str("player", name).Msg("player-joined")
	return 2, nil
}

// onTurnFor checks that the game is being played and that it is the named
// player's turn. It returns the player's index.
func (g *Game) onTurnFor(name string) (int, error) {
	if g.status != StatusActive {
		return 0, ErrGameNotActive
	}
	slot := g.players.slotOf(name)
	if slot == 0 {
		return 0, ErrNotAParticipant
	}
	if slot-1 != g.onturn {
		return 0, ErrNotYourTurn
	}
	return slot - 1, nil
}

// SubmitMove validates and scores a placement and, if it is accepted,
// commits it. On any error the game is unchanged.
func (g *Game) SubmitMove(name string, p move.Placement) (MoveResult, error) {
	idx, err := g.onTurnFor(name)
	if err != nil {
		return MoveResult{}, err
	}
	player := g.players[idx]
	if err := move.Validate(g.board, player.rack, g.firstMove, p); err != nil {
		return MoveResult{}, err
	}
	tiles := p.Tiles()
	play, err := g.board.ScorePlay(tiles, g.tileSet)
	if err != nil {
		return MoveResult{}, err
	}

	g.board.PlaceTiles(tiles, g.tileSet)
	for _, l := range p.RackLetters() {
		player.rack.Take(l)
	}
	player.rack.Add(g.bag.Draw(len(p))...)
	player.points += play.Score
	g.firstMove = false
	g.consecutivePasses = 0
	g.onturn = otherPlayer(idx)
	g.turnnum++

	words := make([]string, len(play.Words))
	for i, w := range play.Words {
		words[i] = w.String()
	}
	g.lastMove = &LastMove{Player: name, Play: p.String(), Words: words, Score: play.Score}

	res := MoveResult{
		Score:     play.Score,
		Words:     words,
		WordsText: play.WordsText(),
		Bingo:     play.Bingo,
	}
	if g.bag.Empty() && player.rack.Empty() {
		g.finish()
		res.GameOver = true
		res.Winner = g.winner
	}
	log.Debug().Str("game", g.code).Str("player", name).Str("play", p.String()).
		Int("score", play.Score).Str("words", res.WordsText).Msg("move-accepted")
	return res, nil
}

// Pass gives up the turn. The fourth pass in a row ends the game; each
// player then loses the value of the tiles on their own rack.
func (g *Game) Pass(name string) (PassResult, error) {
	idx, err := g.onTurnFor(name)
	if err != nil {
		return PassResult{}, err
	}
	g.consecutivePasses++
	g.onturn = otherPlayer(idx)
	g.turnnum++
	g.lastMove = &LastMove{Player: name, Pass: true}

	if g.consecutivePasses < MaxConsecutivePasses {
		return PassResult{}, nil
	}
	for _, p := range g.players {
		pts := p.rack.ScoreOn(g.tileSet)
		p.points -= pts
		log.Debug().Str("game", g.code).Str("player", p.name).Int("rack-pts", pts).
			Msg("end-of-game-rack-penalty")
	}
	g.finish()
	return PassResult{GameOver: true, Winner: g.winner}, nil
}

func (g *Game) finish() {
	g.status = StatusFinished
	p1, p2 := g.players[0], g.players[1]
	switch {
	case p1.points > p2.points:
		g.winner = p1.name
	case p2.points > p1.points:
		g.winner = p2.name
	default:
		g.winner = TieMarker
	}
	log.Info().Str("game", g.code).Str("winner", g.winner).
		Int("p1", p1.points).Int("p2", p2.points).Msg("game-over")
}

func otherPlayer(idx int) int {
	return (idx + 1) % 2
}

// TileCount counts every tile in the game: bag, board and both racks. It is
// always the size of the tile set.
func (g *Game) TileCount() int {
	return g.bag.TilesRemaining() + g.board.TilesPlayed() +
		g.players[0].rack.NumTiles() + g.players[1].rack.NumTiles()
}

// Stamp prepares the game for a save: it bumps the version and records the
// save time. The creation time is set on the first call.
func (g *Game) Stamp(now time.Time) {
	if g.createdAt.IsZero() {
		g.createdAt = now
	}
	g.updatedAt = now
	g.version++
}

// Version is the number of times the game has been stamped for saving.
func (g *Game) Version() int {
	return g.version
}

func (g *Game) ID() string {
	return g.id
}

func (g *Game) Code() string {
	return g.code
}

func (g *Game) Status() Status {
	return g.status
}

func (g *Game) Winner() string {
	return g.winner
}

func (g *Game) FirstMove() bool {
	return g.firstMove
}

func (g *Game) ConsecutivePasses() int {
	return g.consecutivePasses
}

func (g *Game) Turn() int {
	return g.turnnum
}

func (g *Game) Board() *board.GameBoard {
	return g.board
}

func (g *Game) Bag() *tilemapping.Bag {
	return g.bag
}

func (g *Game) TileSet() *tilemapping.TileSet {
	return g.tileSet
}

// CurrentPlayer is the 1-based slot of the player on turn.
func (g *Game) CurrentPlayer() int {
	return g.onturn + 1
}

// PlayerName returns the name in a 1-based slot; it is empty until the
// slot is taken.
func (g *Game) PlayerName(slot int) string {
	return g.players[slot-1].name
}

// PointsFor returns the score of a 1-based slot.
func (g *Game) PointsFor(slot int) int {
	return g.players[slot-1].points
}

// RackFor returns the rack of a 1-based slot.
func (g *Game) RackFor(slot int) *tilemapping.Rack {
	return g.players[slot-1].rack
}

// SlotOf returns the 1-based slot of the named player, or 0 if they are
// not in this game.
func (g *Game) SlotOf(name string) int {
	return g.players.slotOf(name)
}
