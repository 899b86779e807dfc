package engine

import (
	"encoding/json"
	"fmt"
)

type wirePiece struct {
	Kind     PieceKind `json:"kind"`
	Color    Color     `json:"color"`
	Position Square    `json:"position"`
	HasMoved *bool     `json:"hasMoved,omitempty"`
}

type wireMove struct {
	Destination    Square    `json:"destination"`
	PieceKind      PieceKind `json:"pieceKind"`
	Color          Color     `json:"color"`
	IsCapture      bool      `json:"isCapture"`
	IsCheck        bool      `json:"isCheck"`
	IsDoubleMove   *bool     `json:"isDoubleMove,omitempty"`
	IsPromotion    *bool     `json:"isPromotion,omitempty"`
	IsEnPassant    *bool     `json:"isEnPassant,omitempty"`
	PromotionPiece PieceKind `json:"promotionPiece,omitempty"`
	IsCastle       *bool     `json:"isCastle,omitempty"`
}

type wireEntry struct {
	From *wirePiece `json:"from"`
	To   *wirePiece `json:"to"`
	Move wireMove   `json:"move"`
}

type wireBoard struct {
	Board             [8][8]*wirePiece `json:"board"`
	WhiteKingPosition Square           `json:"whiteKingPosition"`
	BlackKingPosition Square           `json:"blackKingPosition"`
	History           []wireEntry      `json:"history"`
}

func flag(v bool) *bool { return &v }

func encodePiece(p *Piece) *wirePiece {
	if p == nil {
		return nil
	}
	w := &wirePiece{Kind: p.Kind, Color: p.Color, Position: p.Position}
	if p.Kind.tracksMoved() {
		w.HasMoved = flag(p.HasMoved)
	}
	return w
}

func encodeMove(m Move) wireMove {
	b := m.Base()
	w := wireMove{
		Destination: b.Destination,
		PieceKind:   b.PieceKind,
		Color:       b.Color,
		IsCapture:   b.IsCapture,
		IsCheck:     b.IsCheck,
	}
	switch m := m.(type) {
	case PawnMove:
		w.IsDoubleMove = flag(m.IsDoubleMove)
		w.IsPromotion = flag(m.IsPromotion)
		w.IsEnPassant = flag(m.IsEnPassant)
		w.PromotionPiece = m.PromotionPiece
	case KingMove:
		w.IsCastle = flag(m.IsCastle)
	}
	return w
}

func (b *Board) MarshalJSON() ([]byte, error) {
	w := wireBoard{
		WhiteKingPosition: b.whiteKing,
		BlackKingPosition: b.blackKing,
		History:           make([]wireEntry, 0, len(b.history)),
	}
	for r := range b.grid {
		for c := range b.grid[r] {
			w.Board[r][c] = encodePiece(b.grid[r][c])
		}
	}
	for _, e := range b.history {
		from := e.From
		w.History = append(w.History, wireEntry{
			From: encodePiece(&from),
			To:   encodePiece(e.To),
			Move: encodeMove(e.Move),
		})
	}
	return json.Marshal(w)
}

// Serialize encodes the grid, king squares and full history.
func (b *Board) Serialize() (string, error) {
	data, err := b.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodePiece(w *wirePiece) (*Piece, error) {
	if w == nil {
		return nil, nil
	}
	if !w.Kind.valid() || !w.Color.valid() {
		return nil, fmt.Errorf("%w: %q %q", ErrInvalidSquareType, w.Color, w.Kind)
	}
	if !IsValidSquare(w.Position) {
		return nil, fmt.Errorf("%w: piece position %q", ErrInvalidSquareType, w.Position)
	}
	p := &Piece{Kind: w.Kind, Color: w.Color, Position: w.Position}
	if w.HasMoved != nil && w.Kind.tracksMoved() {
		p.HasMoved = *w.HasMoved
	}
	return p, nil
}

func isSet(v *bool) bool { return v != nil && *v }

func decodeMove(w wireMove) (Move, error) {
	if !IsValidSquare(w.Destination) || !w.PieceKind.valid() || !w.Color.valid() {
		return nil, fmt.Errorf("%w: move %s %s to %q", ErrInvalidSquareType, w.Color, w.PieceKind, w.Destination)
	}
	base := MoveBase{
		Destination: w.Destination,
		PieceKind:   w.PieceKind,
		Color:       w.Color,
		IsCapture:   w.IsCapture,
		IsCheck:     w.IsCheck,
	}
	pawnFlags := isSet(w.IsDoubleMove) || isSet(w.IsPromotion) || isSet(w.IsEnPassant) || w.PromotionPiece != ""
	if isSet(w.IsCastle) && w.PieceKind != King {
		return nil, fmt.Errorf("%w: %s cannot castle", ErrInvalidCastlingMove, w.PieceKind)
	}
	switch w.PieceKind {
	case Pawn:
		if w.PromotionPiece != "" && !w.PromotionPiece.IsPromotionChoice() {
			return nil, fmt.Errorf("%w: promotion piece %q", ErrInvalidSquareType, w.PromotionPiece)
		}
		return PawnMove{
			MoveBase:       base,
			IsDoubleMove:   isSet(w.IsDoubleMove),
			IsPromotion:    isSet(w.IsPromotion),
			IsEnPassant:    isSet(w.IsEnPassant),
			PromotionPiece: w.PromotionPiece,
		}, nil
	case King:
		if pawnFlags {
			return nil, fmt.Errorf("%w: pawn flags on a king move", ErrInvalidSquareType)
		}
		if isSet(w.IsCastle) {
			i, _ := SquareToIndex(w.Destination)
			if _, _, ok := castleRookSquares(i); !ok || i.Row != w.Color.homeRow() {
				return nil, fmt.Errorf("%w: king cannot castle to %s", ErrInvalidCastlingMove, w.Destination)
			}
		}
		return KingMove{MoveBase: base, IsCastle: isSet(w.IsCastle)}, nil
	}
	if pawnFlags {
		return nil, fmt.Errorf("%w: pawn flags on a %s move", ErrInvalidSquareType, w.PieceKind)
	}
	return BasicMove{MoveBase: base}, nil
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var w wireBoard
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSquareType, err)
	}
	next := NewEmptyBoard()
	for r := range w.Board {
		for c := range w.Board[r] {
			p, err := decodePiece(w.Board[r][c])
			if err != nil {
				return err
			}
			if p == nil {
				continue
			}
			if sq := mustSquare(Index{r, c}); p.Position != sq {
				return fmt.Errorf("%w: piece at %s claims %s", ErrInvalidSquareType, sq, p.Position)
			}
			next.grid[r][c] = p
		}
	}
	for _, king := range []struct {
		color Color
		sq    Square
	}{{White, w.WhiteKingPosition}, {Black, w.BlackKingPosition}} {
		if king.sq == "" {
			continue
		}
		p, err := next.Square(king.sq)
		if err != nil {
			return fmt.Errorf("%w: %s king position %q", ErrInvalidSquareType, king.color, king.sq)
		}
		if p == nil || p.Kind != King || p.Color != king.color {
			return fmt.Errorf("%w: no %s king on %s", ErrInvalidSquareType, king.color, king.sq)
		}
		next.setKingPosition(king.color, king.sq)
	}
	for _, we := range w.History {
		if we.From == nil {
			return fmt.Errorf("%w: history entry without a moving piece", ErrInvalidSquareType)
		}
		from, err := decodePiece(we.From)
		if err != nil {
			return err
		}
		to, err := decodePiece(we.To)
		if err != nil {
			return err
		}
		m, err := decodeMove(we.Move)
		if err != nil {
			return err
		}
		next.history = append(next.history, HistoryEntry{From: *from, To: to, Move: m})
	}
	*b = *next
	return nil
}

// Deserialize replaces the board with the encoded state. On error the board
// is left untouched.
func (b *Board) Deserialize(data string) error {
	return b.UnmarshalJSON([]byte(data))
}
