package move

import (
	"errors"
	"fmt"

	"github.com/domino14/xwordplay/tilemapping"
)

var (
	// ErrMalformedPlacement is returned by the boundary checks: a square off
	// the board, a symbol that is not a letter, the same square twice, or
	// more tiles than fit on a rack.
	ErrMalformedPlacement = errors.New("malformed placement")

	ErrInvalidPlacementShape  = errors.New("invalid placement shape")
	ErrFirstMoveRuleViolation = errors.New("first move rule violation")
	ErrDisconnectedPlacement  = errors.New("word must connect to existing tiles")
	ErrTileNotInRack          = errors.New("tile not in rack")
)

// MissingTileError names the first placed tile the player could not supply.
type MissingTileError struct {
	Letter tilemapping.Letter
	Blank  bool
}

func (e *MissingTileError) Error() string {
	if e.Blank {
		return fmt.Sprintf("tile '%s' (blank) not in your rack", e.Letter)
	}
	return fmt.Sprintf("tile '%s' not in your rack", e.Letter)
}

func (e *MissingTileError) Is(target error) bool {
	return target == ErrTileNotInRack
}
