package engine

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
)

// Board holds the grid, the cached king squares and the move history.
// A Board is not safe for concurrent use.
type Board struct {
	grid      [8][8]*Piece
	whiteKing Square
	blackKing Square
	history   []HistoryEntry
}

var backRank = [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns a board in the standard starting position.
func NewBoard() *Board {
	b := NewEmptyBoard()
	for col, kind := range backRank {
		b.place(Index{0, col}, &Piece{Kind: kind, Color: Black})
		b.place(Index{1, col}, &Piece{Kind: Pawn, Color: Black})
		b.place(Index{6, col}, &Piece{Kind: Pawn, Color: White})
		b.place(Index{7, col}, &Piece{Kind: kind, Color: White})
	}
	return b
}

func NewEmptyBoard() *Board {
	return &Board{history: []HistoryEntry{}}
}

func (b *Board) at(i Index) *Piece {
	return b.grid[i.Row][i.Col]
}

// place stamps the piece's position and keeps the king cache current.
func (b *Board) place(i Index, p *Piece) {
	b.grid[i.Row][i.Col] = p
	if p == nil {
		return
	}
	p.Position = mustSquare(i)
	if !p.Kind.tracksMoved() {
		p.HasMoved = false
	}
	if p.Kind == King {
		b.setKingPosition(p.Color, p.Position)
	}
}

func (b *Board) setKingPosition(c Color, sq Square) {
	if c == White {
		b.whiteKing = sq
	} else {
		b.blackKing = sq
	}
}

// Square returns the piece on sq, or nil when it is empty.
func (b *Board) Square(sq Square) (*Piece, error) {
	i, err := SquareToIndex(sq)
	if err != nil {
		return nil, err
	}
	return b.at(i), nil
}

// SetSquare puts p (or nothing) on sq.
func (b *Board) SetSquare(sq Square, p *Piece) error {
	i, err := SquareToIndex(sq)
	if err != nil {
		return err
	}
	if p != nil && (!p.Kind.valid() || !p.Color.valid()) {
		return fmt.Errorf("%w: %s %s", ErrInvalidSquareType, p.Color, p.Kind)
	}
	b.place(i, p)
	return nil
}

// Grid returns a deep copy of the board contents.
func (b *Board) Grid() [8][8]*Piece {
	var g [8][8]*Piece
	for r := range b.grid {
		for c := range b.grid[r] {
			g[r][c] = b.grid[r][c].copy()
		}
	}
	return g
}

func (b *Board) History() []HistoryEntry {
	h := make([]HistoryEntry, len(b.history))
	for i, e := range b.history {
		h[i] = e.copy()
	}
	return h
}

func (b *Board) LastMove() (HistoryEntry, bool) {
	if len(b.history) == 0 {
		return HistoryEntry{}, false
	}
	return b.history[len(b.history)-1].copy(), true
}

func (b *Board) KingPosition(c Color) Square {
	if c == White {
		return b.whiteKing
	}
	return b.blackKing
}

// InCheck reports whether c's king is attacked.
func (b *Board) InCheck(c Color) bool {
	return b.IsSquareAttacked(b.KingPosition(c), c)
}

// MovePiece validates and executes a move for player. promotion is only
// consulted for pawn moves onto the last rank and defaults to a queen.
func (b *Board) MovePiece(from, to Square, player *Player, promotion PieceKind) (Move, error) {
	fi, ti, piece, err := b.validateSelection(from, to, player)
	if err != nil {
		return nil, err
	}
	moves := piece.Moves(b)
	idx := slices.IndexFunc(moves, func(m Move) bool { return m.Base().Destination == to })
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s cannot reach %s", ErrInvalidMove, piece, to)
	}
	move := moves[idx]
	if pm, ok := move.(PawnMove); ok && pm.IsPromotion {
		if promotion == "" {
			promotion = Queen
		}
		if !promotion.IsPromotionChoice() {
			return nil, fmt.Errorf("%w: cannot promote to %q", ErrInvalidMove, promotion)
		}
		pm.PromotionPiece = promotion
		move = pm
	}
	return b.execute(fi, ti, move, player), nil
}

// MoveClonedPiece executes a move the caller already resolved, skipping the
// candidate lookup.
func (b *Board) MoveClonedPiece(from, to Square, player *Player, resolved Move) error {
	fi, ti, piece, err := b.validateSelection(from, to, player)
	if err != nil {
		return err
	}
	if resolved == nil {
		return fmt.Errorf("%w: no move supplied", ErrInvalidMove)
	}
	base := resolved.Base()
	if base.Destination != to || base.PieceKind != piece.Kind || base.Color != piece.Color {
		return fmt.Errorf("%w: resolved move does not match %s", ErrInvalidMove, piece)
	}
	switch m := resolved.(type) {
	case PawnMove:
		if m.IsPromotion && !m.PromotionPiece.IsPromotionChoice() {
			return fmt.Errorf("%w: cannot promote to %q", ErrInvalidMove, m.PromotionPiece)
		}
	case KingMove:
		if _, _, ok := castleRookSquares(ti); m.IsCastle && !ok {
			return fmt.Errorf("%w: king cannot castle to %s", ErrInvalidCastlingMove, to)
		}
	}
	b.execute(fi, ti, resolved, player)
	return nil
}

func (b *Board) validateSelection(from, to Square, player *Player) (Index, Index, *Piece, error) {
	if player == nil || !player.IsTurn {
		return Index{}, Index{}, nil, ErrNotYourTurn
	}
	fi, err := SquareToIndex(from)
	if err != nil {
		return Index{}, Index{}, nil, err
	}
	ti, err := SquareToIndex(to)
	if err != nil {
		return Index{}, Index{}, nil, err
	}
	if fi == ti {
		return Index{}, Index{}, nil, fmt.Errorf("%w: origin and destination are both %s", ErrInvalidMove, from)
	}
	piece := b.at(fi)
	if piece == nil {
		return Index{}, Index{}, nil, fmt.Errorf("%w: %s is empty", ErrInvalidPieceSelection, from)
	}
	if piece.Color != player.Color {
		return Index{}, Index{}, nil, fmt.Errorf("%w: %s belongs to %s", ErrInvalidPieceSelection, from, piece.Color)
	}
	return fi, ti, piece, nil
}

// execute applies an already validated move. player may be nil when the
// move is simulated.
func (b *Board) execute(from, to Index, move Move, player *Player) Move {
	piece := b.at(from)
	captured := b.at(to)
	entry := HistoryEntry{From: *piece, To: captured.copy()}

	if captured != nil && player != nil {
		player.CapturedPieces = append(player.CapturedPieces, *captured)
	}

	switch m := move.(type) {
	case PawnMove:
		if m.IsEnPassant {
			victim := Index{from.Row, to.Col}
			if p := b.at(victim); p != nil && player != nil {
				player.CapturedPieces = append(player.CapturedPieces, *p)
			}
			b.grid[victim.Row][victim.Col] = nil
		}
	case KingMove:
		if m.IsCastle {
			rookFrom, rookTo, _ := castleRookSquares(to)
			if rook := b.at(rookFrom); rook != nil {
				b.grid[rookFrom.Row][rookFrom.Col] = nil
				b.place(rookTo, rook)
				rook.HasMoved = true
			}
		}
	}

	b.grid[from.Row][from.Col] = nil
	if pm, ok := move.(PawnMove); ok && pm.IsPromotion && pm.PromotionPiece != "" {
		piece = &Piece{Kind: pm.PromotionPiece, Color: piece.Color}
		move = pm.withCheck(b.givesCheck(pm.PromotionPiece, piece.Color, from, to))
	}
	b.place(to, piece)
	piece.move(mustSquare(to))

	entry.Move = move
	b.history = append(b.history, entry)
	return move
}

// UndoMove reverts the most recent move and returns its history entry.
func (b *Board) UndoMove() (HistoryEntry, error) {
	if len(b.history) == 0 {
		return HistoryEntry{}, ErrNoMovesToUndo
	}
	entry := b.history[len(b.history)-1]
	from, err := SquareToIndex(entry.From.Position)
	if err != nil {
		return HistoryEntry{}, err
	}
	to, err := SquareToIndex(entry.Move.Base().Destination)
	if err != nil {
		return HistoryEntry{}, err
	}
	b.history = b.history[:len(b.history)-1]

	mover := entry.From
	b.place(from, &mover)
	b.grid[to.Row][to.Col] = nil
	if entry.To != nil {
		b.place(to, entry.To.copy())
	}

	switch m := entry.Move.(type) {
	case PawnMove:
		if m.IsEnPassant {
			b.place(Index{from.Row, to.Col}, &Piece{Kind: Pawn, Color: m.Color.Opponent(), HasMoved: true})
		}
	case KingMove:
		if m.IsCastle {
			rookFrom, rookTo, _ := castleRookSquares(to)
			rook := b.at(rookTo)
			b.grid[rookTo.Row][rookTo.Col] = nil
			if rook != nil {
				rook.HasMoved = false
				b.place(rookFrom, rook)
			}
		}
	}
	return entry.copy(), nil
}

// Clone returns a deep copy that shares no state with b.
func (b *Board) Clone() *Board {
	return &Board{
		grid:      b.Grid(),
		whiteKing: b.whiteKing,
		blackKing: b.blackKing,
		history:   b.History(),
	}
}

// filterSelfCheck drops the candidates that leave the mover's king attacked.
func (b *Board) filterSelfCheck(from Index, candidates []Move) []Move {
	legal := make([]Move, 0, len(candidates))
	for _, m := range candidates {
		to, err := SquareToIndex(m.Base().Destination)
		if err != nil {
			continue
		}
		trial := b.Clone()
		trial.execute(from, to, m, nil)
		if !trial.InCheck(m.Base().Color) {
			legal = append(legal, m)
		}
	}
	return legal
}

// LegalMoves maps every square holding a piece of color c to its legal
// moves. Pieces without moves are omitted.
func (b *Board) LegalMoves(c Color) map[Square][]Move {
	out := make(map[Square][]Move)
	for r := range b.grid {
		for col := range b.grid[r] {
			p := b.grid[r][col]
			if p == nil || p.Color != c {
				continue
			}
			if moves := p.Moves(b); len(moves) > 0 {
				out[p.Position] = moves
			}
		}
	}
	return out
}

func (b *Board) CheckmateOrStalemate(c Color) Status {
	if len(b.LegalMoves(c)) > 0 {
		return StatusNone
	}
	if b.InCheck(c) {
		return StatusCheckmate
	}
	return StatusStalemate
}
