package board

import (
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/xwordplay/tilemapping"
)

func horizontal(row, col int, word string) []Tile {
	tiles := []Tile{}
	for i, c := range word {
		if c == '.' {
			continue
		}
		t := Tile{Row: row, Col: col + i, Letter: tilemapping.Letter(c)}
		if c >= 'a' && c <= 'z' {
			t.Letter = tilemapping.Letter(c - 'a' + 'A')
			t.Blank = true
		}
		tiles = append(tiles, t)
	}
	return tiles
}

func vertical(row, col int, word string) []Tile {
	tiles := horizontal(0, 0, word)
	out := []Tile{}
	i := 0
	for j, c := range word {
		if c == '.' {
			continue
		}
		t := tiles[i]
		t.Row, t.Col = row+j, col
		out = append(out, t)
		i++
	}
	return out
}

func TestStandardLayout(t *testing.T) {
	is := is.New(t)
	b := MakeBoard(StandardLayout)
	is.Equal(b.GetBonus(7, 7), BonusCenter)
	is.Equal(b.GetBonus(0, 0), Bonus3WS)
	is.Equal(b.GetBonus(14, 7), Bonus3WS)
	is.Equal(b.GetBonus(1, 1), Bonus2WS)
	is.Equal(b.GetBonus(13, 13), Bonus2WS)
	is.Equal(b.GetBonus(5, 9), Bonus3LS)
	is.Equal(b.GetBonus(3, 7), Bonus2LS)
	is.Equal(b.GetBonus(7, 11), Bonus2LS)
	is.Equal(b.GetBonus(7, 8), NoBonus)

	counts := map[BonusSquare]int{}
	for r := 0; r < Dim; r++ {
		for c := 0; c < Dim; c++ {
			counts[b.GetBonus(r, c)]++
			// The layout is symmetric in both axes and the diagonal.
			is.Equal(b.GetBonus(r, c), b.GetBonus(c, r))
			is.Equal(b.GetBonus(r, c), b.GetBonus(Dim-1-r, c))
		}
	}
	is.Equal(counts[Bonus3WS], 8)
	is.Equal(counts[Bonus2WS], 16)
	is.Equal(counts[Bonus3LS], 12)
	is.Equal(counts[Bonus2LS], 24)
	is.Equal(counts[BonusCenter], 1)
}

func TestMakeLayoutErrors(t *testing.T) {
	is := is.New(t)
	_, err := MakeLayout(CrosswordGameBoard[:14])
	is.True(err != nil)

	noCenter := append([]string{}, CrosswordGameBoard...)
	noCenter[7] = strings.Replace(noCenter[7], "*", "-", 1)
	_, err = MakeLayout(noCenter)
	is.True(err != nil)

	badChar := append([]string{}, CrosswordGameBoard...)
	badChar[0] = "?" + badChar[0][1:]
	_, err = MakeLayout(badChar)
	is.True(err != nil)
}

func TestBonusMultipliers(t *testing.T) {
	is := is.New(t)
	is.Equal(BonusCenter.WordMultiplier(), 2)
	is.Equal(BonusCenter.LetterMultiplier(), 1)
	is.Equal(Bonus3WS.WordMultiplier(), 3)
	is.Equal(Bonus3LS.LetterMultiplier(), 3)
	is.Equal(Bonus2LS.LetterMultiplier(), 2)
	is.Equal(NoBonus.String(), "none")
	is.Equal(BonusCenter.String(), "center")
}

func TestScoreCatOnCenter(t *testing.T) {
	is := is.New(t)
	b := MakeBoard(StandardLayout)
	play, err := b.ScorePlay(horizontal(7, 6, "CAT"), tilemapping.English)
	is.NoErr(err)
	is.Equal(len(play.Words), 1)
	is.Equal(play.Words[0].String(), "CAT")
	is.Equal(play.Score, 10) // (3 + 1 + 1) * 2
	is.True(!play.Bingo)
	is.True(b.IsEmpty()) // scoring never touches the board
}

func TestBonusOnlyForNewTiles(t *testing.T) {
	is := is.New(t)
	b := MakeBoard(StandardLayout)
	// CAT with the C on the double letter at (7,3).
	b.PlaceTiles(horizontal(7, 3, "CAT"), tilemapping.English)
	// Extend to CATS: the S is new, C keeps its face value.
	play, err := b.ScorePlay(horizontal(7, 6, "S"), tilemapping.English)
	is.NoErr(err)
	is.Equal(play.WordsText(), "CATS")
	is.Equal(play.Score, 6) // 3 + 1 + 1 + 1, no double word from the old tiles
}

func TestCrossWords(t *testing.T) {
	is := is.New(t)
	b := MakeBoard(StandardLayout)
	b.PlaceTiles(horizontal(7, 7, "AT"), tilemapping.English)
	// Play "HE" in row 8 under "AT", forming HE, AH and TE.
	play, err := b.ScorePlay(horizontal(8, 7, "HE"), tilemapping.English)
	is.NoErr(err)
	is.Equal(play.WordsText(), "HE, AH, TE")
	// (8,8) is a double letter: HE = 4 + 1*2 = 6, AH = 1 + 4 = 5, TE = 1 + 2 = 3
	is.Equal(play.Score, 14)
}

func TestBlankScoresZero(t *testing.T) {
	is := is.New(t)
	b := MakeBoard(StandardLayout)
	play, err := b.ScorePlay(horizontal(7, 7, "zA"), tilemapping.English)
	is.NoErr(err)
	is.Equal(play.Score, 2) // (0 + 1) * 2
	b.PlaceTiles(horizontal(7, 7, "zA"), tilemapping.English)
	sq := b.GetSquare(7, 7)
	is.Equal(sq.Letter, tilemapping.Letter('Z'))
	is.Equal(sq.Points, 0)
	is.True(sq.Blank)
}

func TestWordMultipliersStack(t *testing.T) {
	is := is.New(t)
	b := MakeBoard(StandardLayout)
	b.PlaceTiles(horizontal(3, 4, "ABCDEFG"), tilemapping.English)
	// Cap both ends, covering the double words at (3,3) and (3,11).
	play, err := b.ScorePlay(horizontal(3, 3, "X.......Z"), tilemapping.English)
	is.NoErr(err)
	is.Equal(play.WordsText(), "XABCDEFGZ")
	// Old tiles: 16, no bonus for the old tile on (3,7). New: 8 + 10.
	is.Equal(play.Score, (16+8+10)*4)
}

func TestTwoWordsOneMultiplier(t *testing.T) {
	is := is.New(t)
	b := MakeBoard(StandardLayout)
	b.PlaceTiles(vertical(2, 2, "A"), tilemapping.English)
	play, err := b.ScorePlay(horizontal(1, 1, "BE"), tilemapping.English)
	is.NoErr(err)
	// The double word at (1,1) only counts for BE, not for EA.
	is.Equal(play.WordsText(), "BE, EA")
	is.Equal(play.Score, (3+1)*2+(1+1))
}

func TestBingo(t *testing.T) {
	is := is.New(t)
	b := MakeBoard(StandardLayout)
	play, err := b.ScorePlay(horizontal(7, 1, "RETAINS"), tilemapping.English)
	is.NoErr(err)
	is.True(play.Bingo)
	// R E(7,2) T(7,3 DL) A I N S(7,7 center): 1+1+2+1+1+1+1 = 8, *2 = 16, +50
	is.Equal(play.Score, 66)
}

func TestNoWordFormed(t *testing.T) {
	is := is.New(t)
	b := MakeBoard(StandardLayout)
	_, err := b.ScorePlay(horizontal(7, 7, "A"), tilemapping.English)
	is.Equal(err, ErrNoWordFormed)
}

func TestDedupeAcrossNewTiles(t *testing.T) {
	is := is.New(t)
	b := MakeBoard(StandardLayout)
	words := b.FormedWords(horizontal(7, 5, "HOUSE"), tilemapping.English)
	is.Equal(len(words), 1)
	is.Equal(words[0].Direction, HorizontalDirection)
	is.Equal(len(words[0].Cells), 5)
}

func TestPlaceTilesCounts(t *testing.T) {
	is := is.New(t)
	b := MakeBoard(StandardLayout)
	b.PlaceTiles(horizontal(7, 6, "CAT"), tilemapping.English)
	is.Equal(b.TilesPlayed(), 3)
	cp := b.Copy()
	cp.PlaceTiles(vertical(8, 6, "AB"), tilemapping.English)
	is.Equal(cp.TilesPlayed(), 5)
	is.Equal(b.TilesPlayed(), 3)
	is.True(!b.IsOccupied(8, 6))
	is.True(b.HasNeighbor(8, 6))
	is.True(!b.HasNeighbor(0, 0))
	is.True(strings.Contains(b.ToDisplayText(), "C A T"))
}
