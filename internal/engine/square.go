package engine

import "fmt"

// Square is an algebraic coordinate such as "e4".
type Square string

// Index addresses the grid. Row 0 is rank 8 and column 0 is file a.
type Index struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (i Index) add(d Index) Index {
	return Index{Row: i.Row + d.Row, Col: i.Col + d.Col}
}

func IsValidIndex(i Index) bool {
	return i.Row >= 0 && i.Row < 8 && i.Col >= 0 && i.Col < 8
}

func IsValidSquare(sq Square) bool {
	return len(sq) == 2 && sq[0] >= 'a' && sq[0] <= 'h' && sq[1] >= '1' && sq[1] <= '8'
}

func IndexToSquare(i Index) (Square, error) {
	if !IsValidIndex(i) {
		return "", fmt.Errorf("%w: (%d,%d)", ErrInvalidIndex, i.Row, i.Col)
	}
	return Square(fmt.Sprintf("%c%d", 'a'+i.Col, 8-i.Row)), nil
}

func SquareToIndex(sq Square) (Index, error) {
	if !IsValidSquare(sq) {
		return Index{}, fmt.Errorf("%w: %q", ErrInvalidSquare, sq)
	}
	return Index{Row: 8 - int(sq[1]-'0'), Col: int(sq[0] - 'a')}, nil
}

// mustSquare is for indices already known to be on the board.
func mustSquare(i Index) Square {
	sq, err := IndexToSquare(i)
	if err != nil {
		panic(err)
	}
	return sq
}
