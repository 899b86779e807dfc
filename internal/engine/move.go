package engine

// Move is one of BasicMove, PawnMove or KingMove.
type Move interface {
	Base() MoveBase
	withCheck(bool) Move
}

type MoveBase struct {
	Destination Square    `json:"destination"`
	PieceKind   PieceKind `json:"pieceKind"`
	Color       Color     `json:"color"`
	IsCapture   bool      `json:"isCapture"`
	IsCheck     bool      `json:"isCheck"`
}

// BasicMove is a knight, bishop, rook or queen move.
type BasicMove struct {
	MoveBase
}

type PawnMove struct {
	MoveBase
	IsDoubleMove   bool
	IsPromotion    bool
	IsEnPassant    bool
	PromotionPiece PieceKind
}

type KingMove struct {
	MoveBase
	IsCastle bool
}

func (m BasicMove) Base() MoveBase { return m.MoveBase }
func (m PawnMove) Base() MoveBase  { return m.MoveBase }
func (m KingMove) Base() MoveBase  { return m.MoveBase }

func (m BasicMove) withCheck(c bool) Move {
	m.IsCheck = c
	return m
}

func (m PawnMove) withCheck(c bool) Move {
	m.IsCheck = c
	return m
}

func (m KingMove) withCheck(c bool) Move {
	m.IsCheck = c
	return m
}

// HistoryEntry records a committed move with the pieces that stood on its
// origin and destination beforehand.
type HistoryEntry struct {
	From Piece
	To   *Piece
	Move Move
}

func (h HistoryEntry) copy() HistoryEntry {
	return HistoryEntry{From: h.From, To: h.To.copy(), Move: h.Move}
}

// Player is the engine's view of a participant.
type Player struct {
	Color          Color   `json:"color"`
	IsTurn         bool    `json:"isTurn"`
	CapturedPieces []Piece `json:"capturedPieces"`
}

func NewPlayer(color Color) *Player {
	return &Player{Color: color, IsTurn: color == White, CapturedPieces: []Piece{}}
}
