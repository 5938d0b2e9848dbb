package move

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/domino14/xwordplay/board"
	"github.com/domino14/xwordplay/tilemapping"
)

// Validate checks a placement against the board, the mover's rack and the
// first-move flag. Rules are checked in a fixed order and the first failure
// is returned. Neither the board nor the rack is modified.
func Validate(b *board.GameBoard, rack *tilemapping.Rack, firstMove bool, p Placement) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no tiles placed", ErrInvalidPlacementShape)
	}
	if err := p.check(); err != nil {
		return err
	}
	for _, t := range p {
		if b.IsOccupied(t.Row, t.Col) {
			return fmt.Errorf("%w: square %s is already occupied", ErrInvalidPlacementShape,
				ToBoardGameCoords(t.Row, t.Col, false))
		}
	}

	ok, vertical := p.line()
	if !ok {
		return fmt.Errorf("%w: tiles must be in a single row or column", ErrInvalidPlacementShape)
	}
	if !contiguous(b, p, vertical) {
		return fmt.Errorf("%w: tiles must be contiguous", ErrInvalidPlacementShape)
	}

	if firstMove {
		if !p.covers(board.CenterRow, board.CenterCol) {
			return fmt.Errorf("%w: first word must cover the center star", ErrFirstMoveRuleViolation)
		}
		if len(p) < 2 {
			return fmt.Errorf("%w: first word must be at least 2 letters", ErrFirstMoveRuleViolation)
		}
	} else if !lo.ContainsBy(p, func(t TilePlacement) bool { return b.HasNeighbor(t.Row, t.Col) }) {
		return ErrDisconnectedPlacement
	}

	return checkRack(rack, p)
}

// contiguous walks the line from the first to the last placed tile; every
// square in between must be a new tile or one already on the board.
func contiguous(b *board.GameBoard, p Placement, vertical bool) bool {
	along := func(t TilePlacement) int {
		if vertical {
			return t.Row
		}
		return t.Col
	}
	start := along(lo.MinBy(p, func(a, c TilePlacement) bool { return along(a) < along(c) }))
	end := along(lo.MaxBy(p, func(a, c TilePlacement) bool { return along(a) > along(c) }))
	for i := start; i <= end; i++ {
		row, col := p[0].Row, i
		if vertical {
			row, col = i, p[0].Col
		}
		if !b.IsOccupied(row, col) && !p.covers(row, col) {
			return false
		}
	}
	return true
}

// checkRack matches every tile against a copy of the rack, one rack tile
// per placed tile.
func checkRack(rack *tilemapping.Rack, p Placement) error {
	cp := rack.Copy()
	for i, l := range p.RackLetters() {
		if !cp.Take(l) {
			return &MissingTileError{Letter: p[i].Letter, Blank: p[i].IsBlank}
		}
	}
	return nil
}
