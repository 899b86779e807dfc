package model

import (
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/engine"
)

type WSMove struct {
	From      engine.Square    `json:"from"`
	To        engine.Square    `json:"to"`
	Promotion engine.PieceKind `json:"promotion"`
}

type WSPromotion struct {
	Piece engine.PieceKind `json:"piece"`
}

type Ply struct {
	Piece         engine.Piece     `json:"piece"`
	From          engine.Square    `json:"from"`
	To            engine.Square    `json:"to"`
	CapturedPiece *engine.Piece    `json:"capturedPiece"`
	IsCastle      bool             `json:"isCastle"`
	Promotion     engine.PieceKind `json:"promotion"`
	Notation      string           `json:"notation"`
}

// Move pairs a white ply with the black reply, as shown in the move list.
type Move struct {
	WhitePly *Ply `json:"whitePly"`
	BlackPly *Ply `json:"blackPly"`
}

type SimpleMove struct {
	From engine.Square `json:"from"`
	To   engine.Square `json:"to"`
}

func plyFromEntry(e engine.HistoryEntry) Ply {
	base := e.Move.Base()
	ply := Ply{
		Piece:         e.From,
		From:          e.From.Position,
		To:            base.Destination,
		CapturedPiece: capturedBy(e),
	}
	switch m := e.Move.(type) {
	case engine.PawnMove:
		ply.Promotion = m.PromotionPiece
	case engine.KingMove:
		ply.IsCastle = m.IsCastle
	}
	ply.Notation = notation(e)
	return ply
}

// capturedBy returns the piece removed by the entry's move, including a
// pawn taken en passant.
func capturedBy(e engine.HistoryEntry) *engine.Piece {
	if e.To != nil {
		p := *e.To
		return &p
	}
	if pm, ok := e.Move.(engine.PawnMove); ok && pm.IsEnPassant {
		sq := engine.Square(string(pm.Destination[0]) + string(e.From.Position[1]))
		return &engine.Piece{Kind: engine.Pawn, Color: pm.Color.Opponent(), Position: sq, HasMoved: true}
	}
	return nil
}

// notation renders a short move-list label. It is not meant to be parsed.
func notation(e engine.HistoryEntry) string {
	base := e.Move.Base()
	suffix := ""
	if base.IsCheck {
		suffix = "+"
	}
	if km, ok := e.Move.(engine.KingMove); ok && km.IsCastle {
		if base.Destination[0] == 'g' {
			return "O-O" + suffix
		}
		return "O-O-O" + suffix
	}
	prefix := ""
	if base.PieceKind != engine.Pawn {
		prefix = base.PieceKind.Symbol()
	} else if base.IsCapture {
		prefix = string(e.From.Position[0])
	}
	capture := ""
	if base.IsCapture {
		capture = "x"
	}
	promotion := ""
	if pm, ok := e.Move.(engine.PawnMove); ok && pm.PromotionPiece != "" {
		promotion = "=" + pm.PromotionPiece.Symbol()
	}
	return fmt.Sprintf("%s%s%s%s%s", prefix, capture, base.Destination, promotion, suffix)
}

// pairPlies groups the history into numbered move-list rows.
func pairPlies(history []engine.HistoryEntry) []Move {
	moves := make([]Move, 0, (len(history)+1)/2)
	for _, e := range history {
		ply := plyFromEntry(e)
		if e.Move.Base().Color == engine.White {
			moves = append(moves, Move{WhitePly: &ply})
			continue
		}
		if n := len(moves); n > 0 && moves[n-1].BlackPly == nil {
			moves[n-1].BlackPly = &ply
			continue
		}
		moves = append(moves, Move{BlackPly: &ply})
	}
	return moves
}
