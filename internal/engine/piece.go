package engine

import (
	"fmt"
	"math"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) valid() bool {
	return c == White || c == Black
}

// forward is the row delta of a pawn advance.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

func (c Color) homeRow() int {
	if c == White {
		return 7
	}
	return 0
}

type PieceKind string

const (
	Pawn   PieceKind = "pawn"
	Knight PieceKind = "knight"
	Bishop PieceKind = "bishop"
	Rook   PieceKind = "rook"
	Queen  PieceKind = "queen"
	King   PieceKind = "king"
)

func (k PieceKind) valid() bool {
	switch k {
	case Pawn, Knight, Bishop, Rook, Queen, King:
		return true
	}
	return false
}

// tracksMoved reports whether hasMoved matters for the kind.
func (k PieceKind) tracksMoved() bool {
	return k == Pawn || k == Rook || k == King
}

// Symbol is the single letter used by text renderers.
func (k PieceKind) Symbol() string {
	switch k {
	case Pawn:
		return "P"
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	return "?"
}

// IsPromotionChoice reports whether a pawn may promote to k.
func (k PieceKind) IsPromotionChoice() bool {
	switch k {
	case Knight, Bishop, Rook, Queen:
		return true
	}
	return false
}

type Piece struct {
	Kind     PieceKind `json:"kind"`
	Color    Color     `json:"color"`
	Position Square    `json:"position"`
	HasMoved bool      `json:"hasMoved"`
}

func NewPiece(kind PieceKind, color Color, pos Square) *Piece {
	return &Piece{Kind: kind, Color: color, Position: pos}
}

func (p *Piece) Value() int {
	switch p.Kind {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 9
	case King:
		return math.MaxInt
	}
	return 0
}

func (p *Piece) String() string {
	return fmt.Sprintf("%s %s@%s", p.Color, p.Kind, p.Position)
}

func (p *Piece) copy() *Piece {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Moves returns the legal moves of p on b.
func (p *Piece) Moves(b *Board) []Move {
	from, err := SquareToIndex(p.Position)
	if err != nil {
		return nil
	}
	return b.filterSelfCheck(from, p.candidates(b, from))
}

func (p *Piece) candidates(b *Board, from Index) []Move {
	switch p.Kind {
	case Pawn:
		return pawnCandidates(b, p, from)
	case Knight:
		return stepCandidates(b, p, from, knightOffsets)
	case Bishop:
		return rayCandidates(b, p, from, diagonals)
	case Rook:
		return rayCandidates(b, p, from, orthogonals)
	case Queen:
		return append(rayCandidates(b, p, from, diagonals), rayCandidates(b, p, from, orthogonals)...)
	case King:
		return kingCandidates(b, p, from)
	}
	return nil
}

// move updates p after it has been placed on to.
func (p *Piece) move(to Square) {
	p.Position = to
	if p.Kind.tracksMoved() {
		p.HasMoved = true
	}
}
