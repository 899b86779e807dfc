package engine

import "testing"

type fixture struct {
	kind     PieceKind
	color    Color
	square   Square
	hasMoved bool
}

func boardWith(t *testing.T, pieces ...fixture) *Board {
	t.Helper()
	b := NewEmptyBoard()
	for _, f := range pieces {
		p := NewPiece(f.kind, f.color, f.square)
		p.HasMoved = f.hasMoved
		if err := b.SetSquare(f.square, p); err != nil {
			t.Fatalf("placing %s %s on %s: %v", f.color, f.kind, f.square, err)
		}
	}
	return b
}

// match toggles turns between two players the way a session would.
type match struct {
	board   *Board
	players map[Color]*Player
}

func newMatch(b *Board, toMove Color) *match {
	m := &match{board: b, players: map[Color]*Player{White: NewPlayer(White), Black: NewPlayer(Black)}}
	m.players[White].IsTurn = toMove == White
	m.players[Black].IsTurn = toMove == Black
	return m
}

func (m *match) mover() *Player {
	if m.players[White].IsTurn {
		return m.players[White]
	}
	return m.players[Black]
}

func (m *match) play(t *testing.T, from, to Square, promotion PieceKind) Move {
	t.Helper()
	mv, err := m.board.MovePiece(from, to, m.mover(), promotion)
	if err != nil {
		t.Fatalf("move %s-%s: %v", from, to, err)
	}
	m.players[White].IsTurn = !m.players[White].IsTurn
	m.players[Black].IsTurn = !m.players[Black].IsTurn
	return mv
}

func serialized(t *testing.T, b *Board) string {
	t.Helper()
	s, err := b.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return s
}

func destinations(moves []Move) map[Square]Move {
	out := make(map[Square]Move, len(moves))
	for _, m := range moves {
		out[m.Base().Destination] = m
	}
	return out
}

func pieceAt(t *testing.T, b *Board, sq Square) *Piece {
	t.Helper()
	p, err := b.Square(sq)
	if err != nil {
		t.Fatalf("square %s: %v", sq, err)
	}
	return p
}
