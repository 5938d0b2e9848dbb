package relay

import (
	"github.com/domino14/xwordplay/game"
	"github.com/domino14/xwordplay/move"
)

// Ops are the last token of each request subject.
const (
	OpCreate = "create"
	OpJoin   = "join"
	OpMove   = "move"
	OpPass   = "pass"
	OpState  = "state"
)

var ops = []string{OpCreate, OpJoin, OpMove, OpPass, OpState}

// A Request is the JSON body of every request. Fields an op does not use
// are ignored.
type Request struct {
	GameCode   string               `json:"gameCode,omitempty"`
	PlayerName string               `json:"playerName"`
	Placements []move.TilePlacement `json:"placements,omitempty"`
}

// A Response is the JSON reply to every request. When OK is false, Error
// says what went wrong and ErrorKind names the rejection (see game.Kind).
type Response struct {
	OK        bool             `json:"ok"`
	Error     string           `json:"error,omitempty"`
	ErrorKind string           `json:"errorKind,omitempty"`
	GameID    string           `json:"gameId,omitempty"`
	GameCode  string           `json:"gameCode,omitempty"`
	PlayerNum int              `json:"playerNum,omitempty"`
	Move      *game.MoveResult `json:"move,omitempty"`
	Pass      *game.PassResult `json:"pass,omitempty"`
	State     *game.PlayerView `json:"state,omitempty"`
}

func errorResponse(err error) *Response {
	return &Response{Error: err.Error(), ErrorKind: game.Kind(err)}
}

// RemoteError is a rejection that came back over the wire. It matches the
// game's sentinel errors with errors.Is.
type RemoteError struct {
	Kind    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return game.ErrForKind(e.Kind)
}
