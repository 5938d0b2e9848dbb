package tilemapping

import (
	"lukechampine.com/frand"
)

// A Shuffler permutes n elements through the swap function.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type frandShuffler struct{}

func (frandShuffler) Shuffle(n int, swap func(i, j int)) {
	frand.Shuffle(n, swap)
}

// CryptoShuffler is the default shuffler. It uses a uniform Fisher-Yates
// shuffle driven by a cryptographically secure source.
var CryptoShuffler Shuffler = frandShuffler{}

// A Bag is the bag o'tiles. Tiles are drawn from the end; the order only
// matters in that it was shuffled exactly once, when the bag was made.
type Bag struct {
	tiles   []Letter
	tileSet *TileSet
}

// NewBag fills a bag with every tile of the set and shuffles it once.
func NewBag(ts *TileSet, s Shuffler) *Bag {
	tiles := make([]Letter, 0, ts.NumTiles())
	for _, l := range ts.letters {
		for i := 0; i < ts.counts[l]; i++ {
			tiles = append(tiles, l)
		}
	}
	s.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	return &Bag{tiles: tiles, tileSet: ts}
}

// BagFromTiles rebuilds a bag from a stored tile sequence, preserving its
// order. It does not shuffle.
func BagFromTiles(ts *TileSet, tiles []Letter) *Bag {
	b := &Bag{tiles: make([]Letter, len(tiles)), tileSet: ts}
	copy(b.tiles, tiles)
	return b
}

// Draw draws at most n tiles from the bag. It can draw fewer if there are
// fewer tiles than n, and even draw no tiles at all.
func (b *Bag) Draw(n int) []Letter {
	if n > len(b.tiles) {
		n = len(b.tiles)
	}
	if n <= 0 {
		return []Letter{}
	}
	drawn := make([]Letter, 0, n)
	for i := 0; i < n; i++ {
		last := len(b.tiles) - 1
		drawn = append(drawn, b.tiles[last])
		b.tiles = b.tiles[:last]
	}
	return drawn
}

// TilesRemaining returns how many tiles are left in the bag.
func (b *Bag) TilesRemaining() int {
	return len(b.tiles)
}

// Empty is true once every tile has been drawn.
func (b *Bag) Empty() bool {
	return len(b.tiles) == 0
}

// Tiles returns a copy of the remaining tiles, in draw order reversed (the
// next tile to be drawn is last).
func (b *Bag) Tiles() []Letter {
	ts := make([]Letter, len(b.tiles))
	copy(ts, b.tiles)
	return ts
}

// TileSet returns the set this bag was filled from.
func (b *Bag) TileSet() *TileSet {
	return b.tileSet
}
