package engine

import "errors"

var (
	ErrInvalidSquare         = errors.New("invalid square")
	ErrInvalidIndex          = errors.New("invalid index")
	ErrNotYourTurn           = errors.New("not your turn")
	ErrInvalidPieceSelection = errors.New("invalid piece selection")
	ErrInvalidMove           = errors.New("invalid move")
	ErrNoMovesToUndo         = errors.New("no moves to undo")
	ErrInvalidCastlingMove   = errors.New("invalid castling move")
	ErrInvalidSquareType     = errors.New("invalid square type")
)
