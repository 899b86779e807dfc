package engine

// IsSquareAttacked reports whether any piece of the side opposing defending
// attacks sq. Invalid squares are never attacked.
func (b *Board) IsSquareAttacked(sq Square, defending Color) bool {
	i, err := SquareToIndex(sq)
	if err != nil {
		return false
	}
	return b.isAttacked(i, defending)
}

func (b *Board) isAttacked(target Index, defending Color) bool {
	attacker := defending.Opponent()
	is := func(i Index, kinds ...PieceKind) bool {
		p := b.at(i)
		if p == nil || p.Color != attacker {
			return false
		}
		for _, k := range kinds {
			if p.Kind == k {
				return true
			}
		}
		return false
	}

	// Enemy pawns stand one row ahead of target from the defender's view.
	pawnRow := defending.forward()
	for _, side := range []int{-1, 1} {
		sq := target.add(Index{pawnRow, side})
		if IsValidIndex(sq) && is(sq, Pawn) {
			return true
		}
	}
	for _, d := range kingOffsets {
		sq := target.add(d)
		if IsValidIndex(sq) && is(sq, King) {
			return true
		}
	}
	for _, d := range knightOffsets {
		sq := target.add(d)
		if IsValidIndex(sq) && is(sq, Knight) {
			return true
		}
	}
	if b.rayHits(target, diagonals, func(i Index) bool { return is(i, Bishop, Queen) }) {
		return true
	}
	return b.rayHits(target, orthogonals, func(i Index) bool { return is(i, Rook, Queen) })
}

// rayHits walks each direction to the first occupied square and tests it.
func (b *Board) rayHits(from Index, dirs []Index, hit func(Index) bool) bool {
	for _, d := range dirs {
		for sq := from.add(d); IsValidIndex(sq); sq = sq.add(d) {
			if b.isEmpty(sq) {
				continue
			}
			if hit(sq) {
				return true
			}
			break
		}
	}
	return false
}
