package engine

var (
	diagonals     = []Index{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	orthogonals   = []Index{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	kingOffsets   = []Index{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightOffsets = []Index{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
)

// isCapture reports whether target holds an enemy piece other than a king.
func (b *Board) isCapture(target Index, color Color) bool {
	p := b.at(target)
	return p != nil && p.Color != color && p.Kind != King
}

func (b *Board) isFriendlyPiece(target Index, color Color) bool {
	p := b.at(target)
	return p != nil && p.Color == color
}

func (b *Board) isEmpty(target Index) bool {
	return b.at(target) == nil
}

func newBase(p *Piece, to Index, capture bool) MoveBase {
	return MoveBase{
		Destination: mustSquare(to),
		PieceKind:   p.Kind,
		Color:       p.Color,
		IsCapture:   capture,
	}
}

func pawnCandidates(b *Board, p *Piece, from Index) []Move {
	var moves []Move
	dir := p.Color.forward()
	lastRow := 0
	if p.Color == Black {
		lastRow = 7
	}
	add := func(to Index, capture, double, enPassant bool) {
		m := PawnMove{
			MoveBase:     newBase(p, to, capture),
			IsDoubleMove: double,
			IsPromotion:  to.Row == lastRow,
			IsEnPassant:  enPassant,
		}
		m.IsCheck = b.givesCheck(p.Kind, p.Color, from, to)
		moves = append(moves, m)
	}

	one := from.add(Index{dir, 0})
	if IsValidIndex(one) && b.isEmpty(one) {
		add(one, false, false, false)
		two := one.add(Index{dir, 0})
		startRow := p.Color.homeRow() + dir
		if from.Row == startRow && !p.HasMoved && IsValidIndex(two) && b.isEmpty(two) {
			add(two, false, true, false)
		}
	}
	for _, side := range []int{-1, 1} {
		to := from.add(Index{dir, side})
		if !IsValidIndex(to) {
			continue
		}
		if b.isCapture(to, p.Color) {
			add(to, true, false, false)
		} else if b.canEnPassant(p, from, to) {
			add(to, true, false, true)
		}
	}
	return moves
}

// canEnPassant reports whether the previous ply was an enemy double pawn
// advance landing beside from on the column of to.
func (b *Board) canEnPassant(p *Piece, from, to Index) bool {
	if len(b.history) == 0 || !b.isEmpty(to) {
		return false
	}
	last, ok := b.history[len(b.history)-1].Move.(PawnMove)
	if !ok || !last.IsDoubleMove || last.Color == p.Color {
		return false
	}
	landed, err := SquareToIndex(last.Destination)
	if err != nil {
		return false
	}
	return landed.Row == from.Row && landed.Col == to.Col
}

func stepCandidates(b *Board, p *Piece, from Index, offsets []Index) []Move {
	var moves []Move
	for _, d := range offsets {
		to := from.add(d)
		if !IsValidIndex(to) || b.isFriendlyPiece(to, p.Color) {
			continue
		}
		capture := b.isCapture(to, p.Color)
		if !capture && !b.isEmpty(to) {
			continue
		}
		base := newBase(p, to, capture)
		base.IsCheck = b.givesCheck(p.Kind, p.Color, from, to)
		moves = append(moves, BasicMove{MoveBase: base})
	}
	return moves
}

func rayCandidates(b *Board, p *Piece, from Index, dirs []Index) []Move {
	var moves []Move
	for _, d := range dirs {
		for to := from.add(d); IsValidIndex(to); to = to.add(d) {
			if b.isEmpty(to) {
				base := newBase(p, to, false)
				base.IsCheck = b.givesCheck(p.Kind, p.Color, from, to)
				moves = append(moves, BasicMove{MoveBase: base})
				continue
			}
			if b.isCapture(to, p.Color) {
				base := newBase(p, to, true)
				base.IsCheck = b.givesCheck(p.Kind, p.Color, from, to)
				moves = append(moves, BasicMove{MoveBase: base})
			}
			break
		}
	}
	return moves
}

func kingCandidates(b *Board, p *Piece, from Index) []Move {
	var moves []Move
	for _, d := range kingOffsets {
		to := from.add(d)
		if !IsValidIndex(to) || b.isFriendlyPiece(to, p.Color) {
			continue
		}
		capture := b.isCapture(to, p.Color)
		if !capture && !b.isEmpty(to) {
			continue
		}
		if b.isAttacked(to, p.Color) {
			continue
		}
		base := newBase(p, to, capture)
		base.IsCheck = b.givesCheck(p.Kind, p.Color, from, to)
		moves = append(moves, KingMove{MoveBase: base})
	}
	return append(moves, b.castleCandidates(p, from)...)
}

func (b *Board) castleCandidates(p *Piece, from Index) []Move {
	if p.HasMoved || from.Row != p.Color.homeRow() || from.Col != 4 {
		return nil
	}
	if b.isAttacked(from, p.Color) {
		return nil
	}
	var moves []Move
	for _, side := range []struct{ rookCol, dir int }{{7, 1}, {0, -1}} {
		rook := b.at(Index{from.Row, side.rookCol})
		if rook == nil || rook.Kind != Rook || rook.Color != p.Color || rook.HasMoved {
			continue
		}
		clear := true
		for col := from.Col + side.dir; col != side.rookCol; col += side.dir {
			if !b.isEmpty(Index{from.Row, col}) {
				clear = false
				break
			}
		}
		if !clear {
			continue
		}
		transit := Index{from.Row, from.Col + side.dir}
		landing := Index{from.Row, from.Col + 2*side.dir}
		if b.isAttacked(transit, p.Color) || b.isAttacked(landing, p.Color) {
			continue
		}
		base := newBase(p, landing, false)
		rookTo := transit
		base.IsCheck = b.givesCheck(Rook, p.Color, Index{from.Row, side.rookCol}, rookTo)
		moves = append(moves, KingMove{MoveBase: base, IsCastle: true})
	}
	return moves
}

// castleRookSquares returns the rook's origin and landing for a castle
// whose king lands on kingTo.
func castleRookSquares(kingTo Index) (Index, Index, bool) {
	switch kingTo.Col {
	case 6:
		return Index{kingTo.Row, 7}, Index{kingTo.Row, 5}, true
	case 2:
		return Index{kingTo.Row, 0}, Index{kingTo.Row, 3}, true
	}
	return Index{}, Index{}, false
}

// givesCheck reports whether a piece of kind and color standing on to would
// attack the opposing king, with from treated as vacated.
func (b *Board) givesCheck(kind PieceKind, color Color, from, to Index) bool {
	kingSq := b.KingPosition(color.Opponent())
	king, err := SquareToIndex(kingSq)
	if err != nil {
		return false
	}
	switch kind {
	case Pawn:
		dir := color.forward()
		return king == to.add(Index{dir, -1}) || king == to.add(Index{dir, 1})
	case Knight:
		return hitsOffset(to, king, knightOffsets)
	case King:
		return hitsOffset(to, king, kingOffsets)
	case Bishop:
		return b.hitsRay(to, king, from, diagonals)
	case Rook:
		return b.hitsRay(to, king, from, orthogonals)
	case Queen:
		return b.hitsRay(to, king, from, diagonals) || b.hitsRay(to, king, from, orthogonals)
	}
	return false
}

func hitsOffset(from, target Index, offsets []Index) bool {
	for _, d := range offsets {
		if from.add(d) == target {
			return true
		}
	}
	return false
}

func (b *Board) hitsRay(from, target, vacated Index, dirs []Index) bool {
	for _, d := range dirs {
		for sq := from.add(d); IsValidIndex(sq); sq = sq.add(d) {
			if sq == target {
				return true
			}
			if sq != vacated && !b.isEmpty(sq) {
				break
			}
		}
	}
	return false
}
