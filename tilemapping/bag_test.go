package tilemapping

import (
	"testing"

	"github.com/matryer/is"
)

// noShuffle leaves the bag in table order, which makes draws predictable.
type noShuffle struct{}

func (noShuffle) Shuffle(int, func(i, j int)) {}

func TestBag(t *testing.T) {
	is := is.New(t)

	bag := NewBag(English, CryptoShuffler)
	is.Equal(bag.TilesRemaining(), 100)
	tileMap := make(map[Letter]int)
	for !bag.Empty() {
		drew := bag.Draw(1)
		is.Equal(len(drew), 1)
		tileMap[drew[0]]++
	}
	for _, l := range English.Letters() {
		is.Equal(tileMap[l], English.Count(l))
	}
	is.Equal(len(bag.Draw(1)), 0)
}

func TestDrawFromEnd(t *testing.T) {
	is := is.New(t)
	bag := NewBag(English, noShuffle{})
	drew := bag.Draw(7)
	is.Equal(UserVisible(drew), "__ZYYXW")
	is.Equal(bag.TilesRemaining(), 93)
}

func TestDrawAtMost(t *testing.T) {
	is := is.New(t)
	bag := BagFromTiles(English, []Letter("ABC"))
	drew := bag.Draw(7)
	is.Equal(UserVisible(drew), "CBA")
	is.True(bag.Empty())
	is.Equal(len(bag.Draw(3)), 0)
	is.Equal(len(bag.Draw(-1)), 0)
}

func TestBagTilesIsCopy(t *testing.T) {
	is := is.New(t)
	bag := BagFromTiles(English, []Letter("AB"))
	tiles := bag.Tiles()
	tiles[0] = 'Z'
	is.Equal(UserVisible(bag.Tiles()), "AB")
}

func TestShuffleIsAPermutation(t *testing.T) {
	is := is.New(t)
	ordered := NewBag(English, noShuffle{}).Tiles()
	shuffled := NewBag(English, CryptoShuffler).Tiles()
	counts := make(map[Letter]int)
	for i := range ordered {
		counts[ordered[i]]++
		counts[shuffled[i]]--
	}
	for _, c := range counts {
		is.Equal(c, 0) // every letter appears equally often in both
	}
}
