package model

import (
	"testing"

	"github.com/benbeisheim/chess-backend/internal/engine"
)

func TestNotation(t *testing.T) {
	b := engine.NewBoard()
	players := map[engine.Color]*engine.Player{
		engine.White: engine.NewPlayer(engine.White),
		engine.Black: engine.NewPlayer(engine.Black),
	}
	line := [][2]engine.Square{
		{"e2", "e4"}, {"d7", "d5"}, {"e4", "d5"}, {"g8", "f6"},
		{"f1", "b5"}, {"c7", "c6"}, {"g1", "f3"}, {"c6", "b5"}, {"e1", "g1"},
	}
	turn := engine.White
	for _, mv := range line {
		if _, err := b.MovePiece(mv[0], mv[1], players[turn], ""); err != nil {
			t.Fatalf("%s-%s: %v", mv[0], mv[1], err)
		}
		players[turn].IsTurn = false
		turn = turn.Opponent()
		players[turn].IsTurn = true
	}
	want := []string{"e4", "d5", "exd5", "Nf6", "Bb5+", "c6", "Nf3", "cxb5", "O-O"}
	for i, e := range b.History() {
		if got := notation(e); got != want[i] {
			t.Errorf("ply %d notation = %q, want %q", i, got, want[i])
		}
	}
	moves := pairPlies(b.History())
	if len(moves) != 5 || moves[4].BlackPly != nil || moves[4].WhitePly.Notation != "O-O" {
		t.Fatalf("paired history = %+v", moves)
	}
}

func TestCapturedByEnPassant(t *testing.T) {
	e := engine.HistoryEntry{
		From: engine.Piece{Kind: engine.Pawn, Color: engine.White, Position: "a5", HasMoved: true},
		Move: engine.PawnMove{
			MoveBase:    engine.MoveBase{Destination: "b6", PieceKind: engine.Pawn, Color: engine.White, IsCapture: true},
			IsEnPassant: true,
		},
	}
	p := capturedBy(e)
	if p == nil || p.Position != "b5" || p.Color != engine.Black {
		t.Fatalf("captured = %v", p)
	}
	if got := notation(e); got != "axb6" {
		t.Fatalf("notation = %q", got)
	}
}
