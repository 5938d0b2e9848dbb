package game

import (
	"errors"

	"github.com/domino14/xwordplay/board"
	"github.com/domino14/xwordplay/move"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameFull          = errors.New("game already full")
	ErrNotAParticipant   = errors.New("you are not in this game")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrGameNotActive     = errors.New("game is not active")
	ErrMissingPlayerName = errors.New("player name is required")

	// Repository conflicts.
	ErrCodeInUse   = errors.New("join code already in use")
	ErrStaleRecord = errors.New("game was changed by another action")

	// Placement rejections come from the packages that detect them.
	ErrMalformedPlacement     = move.ErrMalformedPlacement
	ErrInvalidPlacementShape  = move.ErrInvalidPlacementShape
	ErrFirstMoveRuleViolation = move.ErrFirstMoveRuleViolation
	ErrDisconnectedPlacement  = move.ErrDisconnectedPlacement
	ErrTileNotInRack          = move.ErrTileNotInRack
	ErrNoWordFormed           = board.ErrNoWordFormed
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrGameNotFound, "GameNotFound"},
	{ErrGameFull, "GameFull"},
	{ErrNotAParticipant, "NotAParticipant"},
	{ErrNotYourTurn, "NotYourTurn"},
	{ErrGameNotActive, "GameNotActive"},
	{ErrMissingPlayerName, "MissingPlayerName"},
	{ErrMalformedPlacement, "MalformedPlacement"},
	{ErrInvalidPlacementShape, "InvalidPlacementShape"},
	{ErrFirstMoveRuleViolation, "FirstMoveRuleViolation"},
	{ErrDisconnectedPlacement, "DisconnectedPlacement"},
	{ErrTileNotInRack, "TileNotInRack"},
	{ErrNoWordFormed, "NoWordFormed"},
	{ErrStaleRecord, "StaleRecord"},
}

// Kind maps an error onto a stable name that clients can switch on. Errors
// that are not game rejections are "Internal"; a nil error has no kind.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "Internal"
}

// ErrForKind returns the sentinel error for a kind name, or nil if the kind
// is unknown. It undoes Kind for errors that crossed the wire.
func ErrForKind(kind string) error {
	for _, k := range kinds {
		if k.kind == kind {
			return k.err
		}
	}
	return nil
}
