package tilemapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// englishCSV is letter,quantity,value.
const englishCSV = `A,9,1
B,2,3
C,2,3
D,4,2
E,12,1
F,2,4
G,3,2
H,2,4
I,9,1
J,1,8
K,1,5
L,4,1
M,2,3
N,6,1
O,8,1
P,2,3
Q,1,10
R,6,1
S,4,1
T,6,1
U,4,1
V,2,4
W,2,4
X,1,8
Y,2,4
Z,1,10
_,2,0
`

// English is the standard 100-tile English set. It is built once and never
// modified.
var English = mustScanTileSet(strings.NewReader(englishCSV))

// A TileSet encodes how many of each tile exist and what each one is worth.
type TileSet struct {
	letters  []Letter
	counts   map[Letter]int
	points   map[Letter]int
	numTiles int
}

// ScanTileSet reads a tile set from csv rows of letter,quantity,value.
func ScanTileSet(data io.Reader) (*TileSet, error) {
	r := csv.NewReader(data)
	ts := &TileSet{
		counts: make(map[Letter]int),
		points: make(map[Letter]int),
	}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != 3 {
			return nil, fmt.Errorf("bad tile set row: %v", record)
		}
		l, err := LetterFromString(record[0])
		if err != nil {
			return nil, err
		}
		if _, ok := ts.counts[l]; ok {
			return nil, fmt.Errorf("duplicate tile set row for %v", l)
		}
		n, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, err
		}
		p, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, err
		}
		ts.letters = append(ts.letters, l)
		ts.counts[l] = n
		ts.points[l] = p
		ts.numTiles += n
	}
	return ts, nil
}

func mustScanTileSet(r io.Reader) *TileSet {
	ts, err := ScanTileSet(r)
	if err != nil {
		panic(err)
	}
	return ts
}

// Count returns how many copies of the letter are in a full set.
func (ts *TileSet) Count(l Letter) int {
	return ts.counts[l]
}

// Points returns the face value of the letter. Unknown letters are worth 0.
func (ts *TileSet) Points(l Letter) int {
	return ts.points[l]
}

// NumTiles is the total number of tiles in the set.
func (ts *TileSet) NumTiles() int {
	return ts.numTiles
}

// Letters returns the distinct letters of the set, in table order.
func (ts *TileSet) Letters() []Letter {
	ls := make([]Letter, len(ts.letters))
	copy(ls, ts.letters)
	return ls
}

// Score returns the summed face value of the given letters.
func (ts *TileSet) Score(letters []Letter) int {
	score := 0
	for _, l := range letters {
		score += ts.points[l]
	}
	return score
}
