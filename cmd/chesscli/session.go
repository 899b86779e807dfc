package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/fatih/color"
	"golang.org/x/exp/slices"
)

var errQuit = errors.New("quit")

var alert = color.New(color.FgRed, color.Bold)

var pieceColors = map[engine.Color]color.Attribute{
	engine.White: color.FgHiYellow,
	engine.Black: color.FgBlue,
}

var promotionLetters = map[string]engine.PieceKind{
	"q": engine.Queen,
	"r": engine.Rook,
	"b": engine.Bishop,
	"n": engine.Knight,
}

// session is a hot-seat game: both sides type their moves at one prompt.
type session struct {
	board   *engine.Board
	players map[engine.Color]*engine.Player
	out     io.Writer
}

func newSession(out io.Writer) *session {
	return &session{
		board: engine.NewBoard(),
		players: map[engine.Color]*engine.Player{
			engine.White: engine.NewPlayer(engine.White),
			engine.Black: engine.NewPlayer(engine.Black),
		},
		out: out,
	}
}

func (s *session) toMove() engine.Color {
	if s.players[engine.Black].IsTurn {
		return engine.Black
	}
	return engine.White
}

func (s *session) setTurn(c engine.Color) {
	for side, p := range s.players {
		p.IsTurn = side == c
	}
}

func (s *session) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.render()
	for {
		fmt.Fprintf(s.out, "%s> ", s.toMove())
		if !scanner.Scan() {
			return scanner.Err()
		}
		err := s.exec(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			alert.Fprintln(s.out, err)
		}
	}
}

func (s *session) exec(line string) error {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "quit", "exit":
		return errQuit
	case "undo":
		return s.undo()
	case "save":
		if len(fields) != 2 {
			return errors.New("usage: save <file>")
		}
		return s.save(fields[1])
	case "load":
		if len(fields) != 2 {
			return errors.New("usage: load <file>")
		}
		return s.load(fields[1])
	case "moves":
		if len(fields) != 2 {
			return errors.New("usage: moves <square>")
		}
		return s.moves(engine.Square(fields[1]))
	case "board":
		s.render()
		return nil
	}
	if len(fields) < 2 || len(fields) > 3 {
		return fmt.Errorf("unknown command %q", line)
	}
	var promotion engine.PieceKind
	if len(fields) == 3 {
		kind, ok := promotionLetters[fields[2]]
		if !ok {
			return fmt.Errorf("%w: promotion piece %q", engine.ErrInvalidMove, fields[2])
		}
		promotion = kind
	}
	return s.move(engine.Square(fields[0]), engine.Square(fields[1]), promotion)
}

func (s *session) move(from, to engine.Square, promotion engine.PieceKind) error {
	mover := s.toMove()
	if _, err := s.board.MovePiece(from, to, s.players[mover], promotion); err != nil {
		return err
	}
	s.setTurn(mover.Opponent())
	s.render()
	return nil
}

func (s *session) undo() error {
	entry, err := s.board.UndoMove()
	if err != nil {
		return err
	}
	mover := entry.Move.Base().Color
	if entry.Move.Base().IsCapture {
		p := s.players[mover]
		p.CapturedPieces = p.CapturedPieces[:len(p.CapturedPieces)-1]
	}
	s.setTurn(mover)
	s.render()
	return nil
}

func (s *session) save(path string) error {
	data, err := s.board.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "saved %d plies to %s\n", len(s.board.History()), path)
	return nil
}

// load replaces the board and derives turn and captures from its history.
func (s *session) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	next := engine.NewEmptyBoard()
	if err := next.Deserialize(string(data)); err != nil {
		return err
	}
	s.board = next
	for _, p := range s.players {
		p.CapturedPieces = []engine.Piece{}
	}
	turn := engine.White
	for _, e := range next.History() {
		base := e.Move.Base()
		turn = base.Color.Opponent()
		if !base.IsCapture {
			continue
		}
		captured := engine.Piece{Kind: engine.Pawn, Color: base.Color.Opponent(), Position: base.Destination}
		if e.To != nil {
			captured = *e.To
		}
		p := s.players[base.Color]
		p.CapturedPieces = append(p.CapturedPieces, captured)
	}
	s.setTurn(turn)
	s.render()
	return nil
}

func (s *session) moves(sq engine.Square) error {
	piece, err := s.board.Square(sq)
	if err != nil {
		return err
	}
	if piece == nil {
		return fmt.Errorf("%w: %s is empty", engine.ErrInvalidPieceSelection, sq)
	}
	var dests []string
	for _, m := range piece.Moves(s.board) {
		dests = append(dests, string(m.Base().Destination))
	}
	slices.Sort(dests)
	if len(dests) == 0 {
		fmt.Fprintf(s.out, "%s has no legal moves\n", piece)
		return nil
	}
	fmt.Fprintf(s.out, "%s: %s\n", piece, strings.Join(dests, " "))
	return nil
}

func (s *session) render() {
	grid := s.board.Grid()
	for r, row := range grid {
		fmt.Fprintf(s.out, "%d ", 8-r)
		for c, p := range row {
			bg := color.BgHiWhite
			if (r+c)%2 == 1 {
				bg = color.BgHiBlack
			}
			if p == nil {
				color.New(bg).Fprint(s.out, "   ")
				continue
			}
			symbol := p.Kind.Symbol()
			if p.Color == engine.Black {
				symbol = strings.ToLower(symbol)
			}
			color.New(pieceColors[p.Color], color.Bold, bg).Fprint(s.out, " "+symbol+" ")
		}
		fmt.Fprintln(s.out)
	}
	fmt.Fprintln(s.out, "   a  b  c  d  e  f  g  h")

	for _, c := range []engine.Color{engine.White, engine.Black} {
		var taken []string
		for _, p := range s.players[c].CapturedPieces {
			taken = append(taken, p.Kind.Symbol())
		}
		if len(taken) > 0 {
			fmt.Fprintf(s.out, "%s captured: %s\n", c, strings.Join(taken, " "))
		}
	}

	turn := s.toMove()
	switch s.board.CheckmateOrStalemate(turn) {
	case engine.StatusCheckmate:
		alert.Fprintf(s.out, "checkmate, %s wins\n", turn.Opponent())
	case engine.StatusStalemate:
		alert.Fprintln(s.out, "stalemate")
	default:
		if s.board.InCheck(turn) {
			alert.Fprintf(s.out, "%s is in check\n", turn)
		}
	}
}
