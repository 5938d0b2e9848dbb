package tilemapping

import (
	"github.com/samber/lo"
)

// Rack holds a player's tiles. It is a multiset; the slice order is kept
// only so that stored racks read back the way they were drawn.
type Rack struct {
	tiles []Letter
}

// NewRack creates a rack holding the given tiles.
func NewRack(tiles []Letter) *Rack {
	r := &Rack{tiles: make([]Letter, 0, RackTileLimit)}
	r.tiles = append(r.tiles, tiles...)
	return r
}

// RackFromString creates a rack from a string of tile symbols, e.g. "AEI_RST".
func RackFromString(s string) (*Rack, error) {
	tiles := make([]Letter, 0, len(s))
	for _, c := range s {
		l, err := LetterFromString(string(c))
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, l)
	}
	return NewRack(tiles), nil
}

// String returns a user-visible version of this rack.
func (r *Rack) String() string {
	return UserVisible(r.tiles)
}

// Copy returns a deep copy of this rack.
func (r *Rack) Copy() *Rack {
	return NewRack(r.tiles)
}

// Add puts tiles on the rack.
func (r *Rack) Add(letters ...Letter) {
	r.tiles = append(r.tiles, letters...)
}

// Has returns true if at least one copy of the letter is on the rack.
func (r *Rack) Has(l Letter) bool {
	return lo.Contains(r.tiles, l)
}

// CountOf returns how many copies of the letter are on the rack.
func (r *Rack) CountOf(l Letter) int {
	return lo.Count(r.tiles, l)
}

// Take removes one copy of the letter. It returns false, leaving the rack
// untouched, if the letter is not there.
func (r *Rack) Take(l Letter) bool {
	idx := lo.IndexOf(r.tiles, l)
	if idx == -1 {
		return false
	}
	r.tiles = append(r.tiles[:idx], r.tiles[idx+1:]...)
	return true
}

// TilesOn returns a copy of the rack's current tiles.
func (r *Rack) TilesOn() []Letter {
	ts := make([]Letter, len(r.tiles))
	copy(ts, r.tiles)
	return ts
}

// ScoreOn returns the total face value of the tiles on this rack.
func (r *Rack) ScoreOn(ts *TileSet) int {
	return lo.SumBy(r.tiles, ts.Points)
}

// NumTiles returns the current number of tiles on this rack.
func (r *Rack) NumTiles() int {
	return len(r.tiles)
}

func (r *Rack) Empty() bool {
	return len(r.tiles) == 0
}
