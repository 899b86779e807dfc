package engine

import (
	"errors"
	"testing"
)

func TestNewBoardLayout(t *testing.T) {
	b := NewBoard()
	if got := b.KingPosition(White); got != "e1" {
		t.Errorf("white king at %s, want e1", got)
	}
	if got := b.KingPosition(Black); got != "e8" {
		t.Errorf("black king at %s, want e8", got)
	}
	count := 0
	for _, row := range b.Grid() {
		for _, p := range row {
			if p != nil {
				count++
			}
		}
	}
	if count != 32 {
		t.Fatalf("got %d pieces, want 32", count)
	}
	if q := pieceAt(t, b, "d1"); q == nil || q.Kind != Queen || q.Color != White {
		t.Errorf("d1 = %v, want white queen", q)
	}
	total := 0
	for _, moves := range b.LegalMoves(White) {
		total += len(moves)
	}
	if total != 20 {
		t.Errorf("white has %d opening moves, want 20", total)
	}
}

func TestGridIsASnapshot(t *testing.T) {
	b := NewBoard()
	g := b.Grid()
	g[7][4].Kind = Queen
	if pieceAt(t, b, "e1").Kind != King {
		t.Fatal("mutating the grid snapshot changed the board")
	}
}

func TestMovePieceRejections(t *testing.T) {
	tests := []struct {
		name     string
		from, to Square
		player   func(*match) *Player
		want     error
	}{
		{"not your turn", "e7", "e5", func(m *match) *Player { return m.players[Black] }, ErrNotYourTurn},
		{"nil player", "e2", "e4", func(*match) *Player { return nil }, ErrNotYourTurn},
		{"bad origin", "z2", "e4", (*match).mover, ErrInvalidSquare},
		{"bad destination", "e2", "e9", (*match).mover, ErrInvalidSquare},
		{"same square", "e2", "e2", (*match).mover, ErrInvalidMove},
		{"empty origin", "e4", "e5", (*match).mover, ErrInvalidPieceSelection},
		{"enemy piece", "e7", "e5", (*match).mover, ErrInvalidPieceSelection},
		{"illegal destination", "e2", "e5", (*match).mover, ErrInvalidMove},
		{"blocked bishop", "f1", "c4", (*match).mover, ErrInvalidMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMatch(NewBoard(), White)
			before := serialized(t, m.board)
			_, err := m.board.MovePiece(tt.from, tt.to, tt.player(m), "")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if after := serialized(t, m.board); after != before {
				t.Fatal("rejected move mutated the board")
			}
		})
	}
}

func TestMovePieceUpdatesStateAndHistory(t *testing.T) {
	m := newMatch(NewBoard(), White)
	mv := m.play(t, "e2", "e4", "")
	pm, ok := mv.(PawnMove)
	if !ok || !pm.IsDoubleMove {
		t.Fatalf("e2-e4 = %#v, want a double pawn move", mv)
	}
	if p := pieceAt(t, m.board, "e4"); p == nil || !p.HasMoved || p.Position != "e4" {
		t.Fatalf("e4 = %v, want moved pawn", p)
	}
	if p := pieceAt(t, m.board, "e2"); p != nil {
		t.Fatalf("e2 still holds %v", p)
	}
	h := m.board.History()
	if len(h) != 1 || h[0].From.Position != "e2" || h[0].From.HasMoved || h[0].To != nil {
		t.Fatalf("history = %#v", h)
	}
}

func TestCaptureIsTallied(t *testing.T) {
	m := newMatch(NewBoard(), White)
	m.play(t, "e2", "e4", "")
	m.play(t, "d7", "d5", "")
	mv := m.play(t, "e4", "d5", "")
	if !mv.Base().IsCapture {
		t.Fatal("exd5 not flagged as a capture")
	}
	captured := m.players[White].CapturedPieces
	if len(captured) != 1 || captured[0].Kind != Pawn || captured[0].Color != Black {
		t.Fatalf("white captured %v", captured)
	}
	if h := m.board.History(); h[2].To == nil || h[2].To.Position != "d5" {
		t.Fatalf("capture snapshot = %v", h[2].To)
	}
}

func TestPinnedPieceCannotLeaveLine(t *testing.T) {
	b := boardWith(t,
		fixture{King, White, "e1", false},
		fixture{Bishop, White, "e2", false},
		fixture{Rook, Black, "e8", false},
		fixture{King, Black, "a8", false},
	)
	if moves := pieceAt(t, b, "e2").Moves(b); len(moves) != 0 {
		t.Fatalf("pinned bishop has moves %v", moves)
	}
	m := newMatch(b, White)
	if _, err := b.MovePiece("e2", "d3", m.mover(), ""); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("err = %v, want ErrInvalidMove", err)
	}
}

func TestPinnedRookSlidesAlongPin(t *testing.T) {
	b := boardWith(t,
		fixture{King, White, "e1", false},
		fixture{Rook, White, "e3", true},
		fixture{Queen, Black, "e7", false},
		fixture{King, Black, "a8", false},
	)
	got := destinations(pieceAt(t, b, "e3").Moves(b))
	for _, sq := range []Square{"e2", "e4", "e5", "e6", "e7"} {
		if _, ok := got[sq]; !ok {
			t.Errorf("pinned rook cannot reach %s", sq)
		}
	}
	if len(got) != 5 {
		t.Errorf("pinned rook moves = %v", got)
	}
}

func TestKingCannotStepAlongCheckingRay(t *testing.T) {
	b := boardWith(t,
		fixture{King, White, "e1", false},
		fixture{Rook, Black, "a1", false},
		fixture{King, Black, "h8", false},
	)
	got := destinations(pieceAt(t, b, "e1").Moves(b))
	for _, sq := range []Square{"d1", "f1"} {
		if _, ok := got[sq]; ok {
			t.Errorf("king may step to %s on the checking rank", sq)
		}
	}
	for _, sq := range []Square{"d2", "e2", "f2"} {
		if _, ok := got[sq]; !ok {
			t.Errorf("king cannot escape to %s", sq)
		}
	}
}

func TestCheckFlag(t *testing.T) {
	b := boardWith(t,
		fixture{King, White, "a1", false},
		fixture{Rook, White, "h2", true},
		fixture{Knight, White, "c4", false},
		fixture{King, Black, "e8", false},
	)
	rook := destinations(pieceAt(t, b, "h2").Moves(b))
	if !rook["h8"].Base().IsCheck || !rook["e2"].Base().IsCheck {
		t.Error("rook checks along rank 8 and file e not flagged")
	}
	if rook["h3"].Base().IsCheck {
		t.Error("Rh3 flagged as check")
	}
	knight := destinations(pieceAt(t, b, "c4").Moves(b))
	if !knight["d6"].Base().IsCheck {
		t.Error("Nd6 check not flagged")
	}
	if knight["b6"].Base().IsCheck {
		t.Error("Nb6 flagged as check")
	}
}

func TestEnPassant(t *testing.T) {
	b := boardWith(t,
		fixture{King, White, "e1", false},
		fixture{Pawn, White, "a5", true},
		fixture{King, Black, "e8", false},
		fixture{Pawn, Black, "b7", false},
	)
	m := newMatch(b, Black)
	m.play(t, "b7", "b5", "")

	moves := destinations(pieceAt(t, b, "a5").Moves(b))
	ep, ok := moves["b6"].(PawnMove)
	if !ok || !ep.IsEnPassant || !ep.IsCapture {
		t.Fatalf("a5xb6 = %#v, want en passant capture", moves["b6"])
	}

	m.play(t, "a5", "b6", "")
	if p := pieceAt(t, b, "b5"); p != nil {
		t.Errorf("b5 still holds %v", p)
	}
	if p := pieceAt(t, b, "b6"); p == nil || p.Kind != Pawn || p.Color != White {
		t.Errorf("b6 = %v, want white pawn", p)
	}
	if p := pieceAt(t, b, "a5"); p != nil {
		t.Errorf("a5 still holds %v", p)
	}
	if got := m.players[White].CapturedPieces; len(got) != 1 || got[0].Position != "b5" {
		t.Errorf("white captured %v", got)
	}
}

func TestEnPassantExpiresAfterOnePly(t *testing.T) {
	b := boardWith(t,
		fixture{King, White, "e1", false},
		fixture{Pawn, White, "a5", true},
		fixture{King, Black, "e8", false},
		fixture{Pawn, Black, "b7", false},
	)
	m := newMatch(b, Black)
	m.play(t, "b7", "b5", "")
	m.play(t, "e1", "e2", "")
	m.play(t, "e8", "e7", "")
	if _, ok := destinations(pieceAt(t, b, "a5").Moves(b))["b6"]; ok {
		t.Fatal("en passant offered after an intervening move")
	}
}

func TestCastling(t *testing.T) {
	b := boardWith(t,
		fixture{King, White, "e1", false},
		fixture{Rook, White, "h1", false},
		fixture{King, Black, "e8", false},
	)
	castle, ok := destinations(pieceAt(t, b, "e1").Moves(b))["g1"].(KingMove)
	if !ok || !castle.IsCastle {
		t.Fatalf("e1-g1 = %#v, want castle", castle)
	}
	m := newMatch(b, White)
	m.play(t, "e1", "g1", "")
	rook := pieceAt(t, b, "f1")
	if rook == nil || rook.Kind != Rook || !rook.HasMoved {
		t.Fatalf("f1 = %v, want moved rook", rook)
	}
	if p := pieceAt(t, b, "h1"); p != nil {
		t.Fatalf("h1 still holds %v", p)
	}
	if king := pieceAt(t, b, "g1"); king == nil || !king.HasMoved {
		t.Fatalf("g1 = %v, want moved king", king)
	}
	if got := b.KingPosition(White); got != "g1" {
		t.Fatalf("king cache = %s, want g1", got)
	}
}

func TestCastlingRefused(t *testing.T) {
	tests := []struct {
		name  string
		extra []fixture
		dest  Square
	}{
		{"transit attacked", []fixture{{Rook, Black, "f8", false}}, "g1"},
		{"landing attacked", []fixture{{Rook, Black, "g8", false}}, "g1"},
		{"in check", []fixture{{Rook, Black, "e7", false}}, "g1"},
		{"path blocked", []fixture{{Knight, White, "g1", false}}, "g1"},
		{"rook moved", []fixture{{Rook, White, "a1", true}}, "c1"},
		{"queen side b-file occupied", []fixture{{Rook, White, "a1", false}, {Knight, White, "b1", false}}, "c1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces := append([]fixture{
				{King, White, "e1", false},
				{Rook, White, "h1", false},
				{King, Black, "a8", false},
			}, tt.extra...)
			b := boardWith(t, pieces...)
			if km, ok := destinations(pieceAt(t, b, "e1").Moves(b))[tt.dest].(KingMove); ok && km.IsCastle {
				t.Fatalf("castle to %s offered", tt.dest)
			}
		})
	}
}

func TestQueenSideCastle(t *testing.T) {
	b := boardWith(t,
		fixture{King, Black, "e8", false},
		fixture{Rook, Black, "a8", false},
		fixture{King, White, "e1", false},
	)
	m := newMatch(b, Black)
	mv := m.play(t, "e8", "c8", "")
	if km, ok := mv.(KingMove); !ok || !km.IsCastle {
		t.Fatalf("e8-c8 = %#v, want castle", mv)
	}
	if r := pieceAt(t, b, "d8"); r == nil || r.Kind != Rook {
		t.Fatalf("d8 = %v, want rook", r)
	}
}

func TestPromotion(t *testing.T) {
	b := boardWith(t,
		fixture{King, White, "a1", false},
		fixture{Pawn, White, "e7", true},
		fixture{King, Black, "h6", false},
	)
	pm, ok := destinations(pieceAt(t, b, "e7").Moves(b))["e8"].(PawnMove)
	if !ok || !pm.IsPromotion {
		t.Fatalf("e7-e8 = %#v, want promotion", pm)
	}
	m := newMatch(b, White)
	mv := m.play(t, "e7", "e8", Queen)
	if got := mv.(PawnMove).PromotionPiece; got != Queen {
		t.Errorf("recorded promotion piece %q", got)
	}
	q := pieceAt(t, b, "e8")
	if q == nil || q.Kind != Queen || q.Color != White {
		t.Fatalf("e8 = %v, want white queen", q)
	}
}

func TestPromotionRejectsKing(t *testing.T) {
	b := boardWith(t,
		fixture{King, White, "a1", false},
		fixture{Pawn, White, "e7", true},
		fixture{King, Black, "h6", false},
	)
	m := newMatch(b, White)
	if _, err := b.MovePiece("e7", "e8", m.mover(), King); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("err = %v, want ErrInvalidMove", err)
	}
	if p := pieceAt(t, b, "e7"); p == nil || p.Kind != Pawn {
		t.Fatal("rejected promotion moved the pawn")
	}
}

func TestMoveClonedPiece(t *testing.T) {
	b := boardWith(t,
		fixture{King, White, "a1", false},
		fixture{Pawn, White, "e7", true},
		fixture{King, Black, "h6", false},
	)
	pm := destinations(pieceAt(t, b, "e7").Moves(b))["e8"].(PawnMove)
	pm.PromotionPiece = Knight
	m := newMatch(b, White)
	if err := b.MoveClonedPiece("e7", "e8", m.mover(), pm); err != nil {
		t.Fatalf("MoveClonedPiece: %v", err)
	}
	if n := pieceAt(t, b, "e8"); n == nil || n.Kind != Knight {
		t.Fatalf("e8 = %v, want knight", n)
	}
	if err := b.MoveClonedPiece("a1", "a2", m.mover(), pm); err == nil {
		t.Fatal("mismatched resolved move accepted")
	}
}

func TestCheckmateAndStalemate(t *testing.T) {
	mate := boardWith(t,
		fixture{King, White, "e6", false},
		fixture{Rook, White, "g8", true},
		fixture{King, Black, "e8", false},
	)
	if got := mate.CheckmateOrStalemate(Black); got != StatusCheckmate {
		t.Errorf("mate position = %s, want checkmate", got)
	}
	stale := boardWith(t,
		fixture{King, Black, "a8", false},
		fixture{King, White, "b6", false},
		fixture{Queen, White, "c7", false},
	)
	if got := stale.CheckmateOrStalemate(Black); got != StatusStalemate {
		t.Errorf("stalemate position = %s, want stalemate", got)
	}
	if got := NewBoard().CheckmateOrStalemate(White); got != StatusNone {
		t.Errorf("start position = %s, want none", got)
	}
}

func TestFoolsMate(t *testing.T) {
	m := newMatch(NewBoard(), White)
	m.play(t, "f2", "f3", "")
	m.play(t, "e7", "e5", "")
	m.play(t, "g2", "g4", "")
	mv := m.play(t, "d8", "h4", "")
	if !mv.Base().IsCheck {
		t.Error("Qh4 not flagged as check")
	}
	if got := m.board.CheckmateOrStalemate(White); got != StatusCheckmate {
		t.Fatalf("status = %s, want checkmate", got)
	}
}

func TestIsSquareAttacked(t *testing.T) {
	b := boardWith(t,
		fixture{King, White, "e1", false},
		fixture{Pawn, Black, "d5", true},
		fixture{Knight, Black, "g5", false},
		fixture{Bishop, Black, "a6", false},
		fixture{Pawn, White, "c4", true},
		fixture{King, Black, "h8", false},
	)
	tests := []struct {
		sq   Square
		want bool
	}{
		{"c4", true},  // pawn d5
		{"e4", true},  // pawn d5
		{"d4", false}, // pawns do not attack forward
		{"f3", true},  // knight g5
		{"h7", true},  // king h8
		{"b5", true},  // bishop a6
		{"d3", false}, // bishop ray blocked by c4
		{"z9", false},
	}
	for _, tt := range tests {
		if got := b.IsSquareAttacked(tt.sq, White); got != tt.want {
			t.Errorf("IsSquareAttacked(%s) = %v, want %v", tt.sq, got, tt.want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := newMatch(NewBoard(), White)
	m.play(t, "e2", "e4", "")
	c := m.board.Clone()
	m.play(t, "e7", "e5", "")
	if len(c.History()) != 1 {
		t.Fatalf("clone history length %d, want 1", len(c.History()))
	}
	if p := pieceAt(t, c, "e7"); p == nil {
		t.Fatal("clone lost e7 pawn")
	}
	if _, err := c.UndoMove(); err != nil {
		t.Fatalf("undo on clone: %v", err)
	}
	if p := pieceAt(t, m.board, "e4"); p == nil {
		t.Fatal("undo on clone changed original")
	}
}
