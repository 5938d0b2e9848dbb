package game

import (
	"fmt"

	"github.com/domino14/xwordplay/tilemapping"
)

type playerState struct {
	name   string
	rack   *tilemapping.Rack
	points int
}

func newPlayerState(name string) *playerState {
	return &playerState{name: name, rack: tilemapping.NewRack(nil)}
}

func (p *playerState) joined() bool {
	return p.name != ""
}

// stateString is one player's line next to the board. rackText is empty
// for a rack the viewer may not see.
func (p *playerState) stateString(myturn bool, rackText string) string {
	onturn := ""
	if myturn {
		onturn = "-> "
	}
	return fmt.Sprintf("%4v%20v%9v %4v", onturn, p.name, rackText, p.points)
}

type playerStates [2]*playerState

// slotOf returns the 1-based slot of the named player, or 0.
func (p playerStates) slotOf(name string) int {
	for i, ps := range p {
		if ps.joined() && ps.name == name {
			return i + 1
		}
	}
	return 0
}
