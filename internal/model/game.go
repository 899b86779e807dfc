package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

var (
	ErrGameFull           = errors.New("game is full")
	ErrPlayerNotInGame    = errors.New("player not in game")
	ErrGameOver           = errors.New("game is over")
	ErrPromotionPending   = errors.New("promotion choice pending")
	ErrNoPendingPromotion = errors.New("no promotion pending")
	ErrUndoNotAllowed     = errors.New("only the player who made the last move can take it back")
	ErrNotAuthorized      = errors.New("not authorized to join this game")
)

type Result string

const (
	ResultCheckmate Result = "checkmate"
	ResultStalemate Result = "stalemate"
	ResultResign    Result = "resign"
	ResultTimeout   Result = "timeout"
)

type Outcome struct {
	Result Result      `json:"result"`
	Winner PlayerColor `json:"winner,omitempty"`
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]*websocket.Conn // playerID -> connection
	mu          sync.RWMutex
	writeMu     sync.Mutex
}

// Game owns one board and serializes every move submitted for it.
type Game struct {
	ID          string
	Name        string
	mu          sync.Mutex
	board       *engine.Board
	seats       map[PlayerColor]*seat
	connections *GameConnections
	pending     *pendingPromotion
	outcome     *Outcome
	sound       string
}

// pendingPromotion holds a validated pawn move waiting for the piece choice.
type pendingPromotion struct {
	from  engine.Square
	move  engine.PawnMove
	color PlayerColor
}

type GameState struct {
	ID          string                            `json:"id"`
	Name        string                            `json:"name"`
	Sound       string                            `json:"sound"`
	Board       *engine.Board                     `json:"boardState"`
	ToMove      PlayerColor                       `json:"toMove"`
	MoveHistory []Move                            `json:"moveHistory"`
	IsCheck     bool                              `json:"isCheck"`
	LegalMoves  map[engine.Square][]engine.Square `json:"legalMoves"`
	Resolve     *Outcome                          `json:"resolve"`
	Players     struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
	PromotionSquare *engine.Square `json:"promotionSquare"`
	LastMove        *SimpleMove    `json:"lastMove"`
}

func NewGame(id, name string, clock time.Duration) *Game {
	return &Game{
		ID:    id,
		Name:  name,
		board: engine.NewBoard(),
		seats: map[PlayerColor]*seat{
			PlayerColorWhite: {player: engine.NewPlayer(engine.White), clock: NewClock(clock)},
			PlayerColorBlack: {player: engine.NewPlayer(engine.Black), clock: NewClock(clock)},
		},
		connections: NewGameConnections(),
	}
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*websocket.Conn),
	}
}

func opponent(c PlayerColor) PlayerColor {
	if c == PlayerColorWhite {
		return PlayerColorBlack
	}
	return PlayerColorWhite
}

func (g *Game) AddPlayer(playerID string) (PlayerColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.colorOf(playerID); ok {
		return color, nil
	}
	for _, color := range []PlayerColor{PlayerColorWhite, PlayerColorBlack} {
		if g.seats[color].id == "" {
			g.seats[color].id = playerID
			log.Infow("player seated", "game", g.ID, "player", playerID, "color", color)
			return color, nil
		}
	}
	return "", ErrGameFull
}

func (g *Game) colorOf(playerID string) (PlayerColor, bool) {
	for color, s := range g.seats {
		if s.id != "" && s.id == playerID {
			return color, true
		}
	}
	return "", false
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.colorOf(playerID)
	return ok
}

func (g *Game) canSpectate() bool {
	return g.seats[PlayerColorWhite].id == "" || g.seats[PlayerColorBlack].id == ""
}

func (g *Game) toMove() PlayerColor {
	if g.seats[PlayerColorBlack].player.IsTurn {
		return PlayerColorBlack
	}
	return PlayerColorWhite
}

// activeSeat resolves playerID to a seat that may act right now.
func (g *Game) activeSeat(playerID string) (PlayerColor, *seat, error) {
	color, ok := g.colorOf(playerID)
	if !ok {
		return "", nil, ErrPlayerNotInGame
	}
	if g.outcome != nil {
		return "", nil, ErrGameOver
	}
	s := g.seats[color]
	if s.player.IsTurn && s.clock.Expired() {
		g.finish(ResultTimeout, opponent(color))
		g.broadcastLocked()
		return "", nil, fmt.Errorf("%w: %s ran out of time", ErrGameOver, color)
	}
	return color, s, nil
}

func (g *Game) MakeMove(playerID string, move WSMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, s, err := g.activeSeat(playerID)
	if err != nil {
		return err
	}
	if g.pending != nil {
		return ErrPromotionPending
	}

	if move.Promotion == "" {
		// Validate on a copy first so a promotion can wait for the piece choice.
		trial := g.board.Clone()
		probe := &engine.Player{Color: s.player.Color, IsTurn: s.player.IsTurn}
		resolved, err := trial.MovePiece(move.From, move.To, probe, "")
		if err != nil {
			return err
		}
		if pm, ok := resolved.(engine.PawnMove); ok && pm.IsPromotion {
			pm.PromotionPiece = ""
			g.pending = &pendingPromotion{from: move.From, move: pm, color: color}
			log.Debugw("promotion pending", "game", g.ID, "square", move.To)
			g.broadcastLocked()
			return nil
		}
	}

	if _, err := g.board.MovePiece(move.From, move.To, s.player, move.Promotion); err != nil {
		return err
	}
	g.afterMove(color)
	return nil
}

// ResolvePromotion completes a parked promotion with the chosen piece.
func (g *Game) ResolvePromotion(playerID string, piece engine.PieceKind) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, s, err := g.activeSeat(playerID)
	if err != nil {
		return err
	}
	if g.pending == nil || g.pending.color != color {
		return ErrNoPendingPromotion
	}
	move := g.pending.move
	move.PromotionPiece = piece
	if err := g.board.MoveClonedPiece(g.pending.from, move.Destination, s.player, move); err != nil {
		return err
	}
	g.pending = nil
	g.afterMove(color)
	return nil
}

func (g *Game) afterMove(color PlayerColor) {
	mover, next := g.seats[color], g.seats[opponent(color)]
	mover.clock.Stop()
	mover.player.IsTurn = false
	next.player.IsTurn = true
	next.clock.Start()

	last, _ := g.board.LastMove()
	switch {
	case g.board.InCheck(next.player.Color):
		g.sound = "check"
	case last.Move.Base().IsCapture:
		g.sound = "capture"
	default:
		g.sound = "move"
	}
	if km, ok := last.Move.(engine.KingMove); ok && km.IsCastle && g.sound == "move" {
		g.sound = "castle"
	}

	switch g.board.CheckmateOrStalemate(next.player.Color) {
	case engine.StatusCheckmate:
		g.finish(ResultCheckmate, color)
	case engine.StatusStalemate:
		g.finish(ResultStalemate, "")
	}
	log.Debugw("move played", "game", g.ID, "color", color, "to", last.Move.Base().Destination)
	g.broadcastLocked()
}

func (g *Game) finish(result Result, winner PlayerColor) {
	g.outcome = &Outcome{Result: result, Winner: winner}
	g.pending = nil
	g.seats[PlayerColorWhite].clock.Stop()
	g.seats[PlayerColorBlack].clock.Stop()
	log.Infow("game over", "game", g.ID, "result", result, "winner", winner)
}

// Undo takes back the last ply, or cancels a pending promotion.
func (g *Game) Undo(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.colorOf(playerID)
	if !ok {
		return ErrPlayerNotInGame
	}
	if g.pending != nil && g.pending.color == color {
		g.pending = nil
		g.broadcastLocked()
		return nil
	}
	last, ok := g.board.LastMove()
	if !ok {
		return engine.ErrNoMovesToUndo
	}
	if colorOf(last.Move.Base().Color) != color {
		return ErrUndoNotAllowed
	}
	if _, err := g.board.UndoMove(); err != nil {
		return err
	}
	g.outcome = nil
	g.sound = "move"
	g.rebuildCaptures()
	g.seats[opponent(color)].clock.Stop()
	g.seats[opponent(color)].player.IsTurn = false
	g.seats[color].player.IsTurn = true
	g.seats[color].clock.Start()
	g.broadcastLocked()
	return nil
}

func (g *Game) Resign(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.colorOf(playerID)
	if !ok {
		return ErrPlayerNotInGame
	}
	if g.outcome != nil {
		return ErrGameOver
	}
	g.finish(ResultResign, opponent(color))
	g.broadcastLocked()
	return nil
}

// rebuildCaptures recomputes both capture tallies from the board history.
func (g *Game) rebuildCaptures() {
	for _, s := range g.seats {
		s.player.CapturedPieces = []engine.Piece{}
	}
	for _, e := range g.board.History() {
		if p := capturedBy(e); p != nil {
			s := g.seats[colorOf(e.Move.Base().Color)]
			s.player.CapturedPieces = append(s.player.CapturedPieces, *p)
		}
	}
}

// Export returns the serialized board for session resume.
func (g *Game) Export() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.board.Serialize()
}

// Restore replaces the board with a serialized one. The side to move is the
// opponent of the last recorded mover, or white for an empty history.
func (g *Game) Restore(data string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	trial := g.board.Clone()
	if err := trial.Deserialize(data); err != nil {
		return err
	}
	g.board = trial
	g.pending = nil
	g.outcome = nil
	g.sound = ""
	g.rebuildCaptures()

	next := engine.White
	if last, ok := trial.LastMove(); ok {
		next = last.Move.Base().Color.Opponent()
	}
	for _, s := range g.seats {
		s.clock.Stop()
		s.player.IsTurn = s.player.Color == next
	}
	switch trial.CheckmateOrStalemate(next) {
	case engine.StatusCheckmate:
		g.finish(ResultCheckmate, colorOf(next.Opponent()))
	case engine.StatusStalemate:
		g.finish(ResultStalemate, "")
	}
	log.Infow("game restored", "game", g.ID, "plies", len(trial.History()), "toMove", next)
	g.broadcastLocked()
	return nil
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.stateLocked()
}

func (g *Game) stateLocked() GameState {
	toMove := g.toMove()
	state := GameState{
		ID:          g.ID,
		Name:        g.Name,
		Sound:       g.sound,
		Board:       g.board.Clone(),
		ToMove:      toMove,
		MoveHistory: pairPlies(g.board.History()),
		IsCheck:     g.board.InCheck(toMove.engine()),
		LegalMoves:  map[engine.Square][]engine.Square{},
		Resolve:     g.outcome,
	}
	if g.outcome == nil && g.pending == nil {
		for from, moves := range g.board.LegalMoves(toMove.engine()) {
			for _, m := range moves {
				state.LegalMoves[from] = append(state.LegalMoves[from], m.Base().Destination)
			}
		}
	}
	state.Players.White = g.clientPlayer(PlayerColorWhite)
	state.Players.Black = g.clientPlayer(PlayerColorBlack)
	if g.pending != nil {
		sq := g.pending.move.Destination
		state.PromotionSquare = &sq
	}
	if last, ok := g.board.LastMove(); ok {
		state.LastMove = &SimpleMove{From: last.From.Position, To: last.Move.Base().Destination}
	}
	return state
}

func (g *Game) clientPlayer(color PlayerColor) ClientPlayer {
	s := g.seats[color]
	captured := make([]engine.Piece, len(s.player.CapturedPieces))
	copy(captured, s.player.CapturedPieces)
	return ClientPlayer{
		ID:             s.id,
		Color:          color,
		TimeLeft:       s.clock.Tenths(),
		CapturedPieces: captured,
	}
}

func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	g.mu.Lock()
	isAuthorized := g.isSeated(playerID) || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrNotAuthorized
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// Keep the healthy connection and reject the duplicate.
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Infow("connection registered", "game", g.ID, "player", playerID)

	g.mu.Lock()
	g.broadcastLocked()
	g.mu.Unlock()
	return nil
}

func (g *Game) isSeated(playerID string) bool {
	_, ok := g.colorOf(playerID)
	return ok
}

func (g *Game) UnregisterConnection(playerID string) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if _, exists := g.connections.connections[playerID]; exists {
		delete(g.connections.connections, playerID)
		log.Infow("connection unregistered", "game", g.ID, "player", playerID)
	}
}

// broadcastLocked snapshots the state under g.mu and sends it in the
// background.
func (g *Game) broadcastLocked() {
	payload, err := json.Marshal(g.stateLocked())
	if err != nil {
		log.Errorw("failed to marshal game state", "game", g.ID, "error", err)
		return
	}
	go g.connections.broadcast(g.ID, payload)
}

func (gc *GameConnections) broadcast(gameID string, payload []byte) {
	gc.mu.RLock()
	activeConnections := make(map[string]*websocket.Conn, len(gc.connections))
	for playerID, conn := range gc.connections {
		activeConnections[playerID] = conn
	}
	gc.mu.RUnlock()

	gc.writeMu.Lock()
	defer gc.writeMu.Unlock()
	for playerID, conn := range activeConnections {
		if err := conn.WriteJSON(ws.Message{
			Type:    ws.MessageTypeGameState,
			Payload: json.RawMessage(payload),
		}); err != nil {
			log.Warnw("failed to send state", "game", gameID, "player", playerID, "error", err)
			gc.mu.Lock()
			if gc.connections[playerID] == conn {
				delete(gc.connections, playerID)
			}
			gc.mu.Unlock()
		}
	}
}

// Send writes one message to a single connection, serialized with broadcasts.
func (gc *GameConnections) Send(conn *websocket.Conn, msg ws.Message) error {
	gc.writeMu.Lock()
	defer gc.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

func (g *Game) Connections() *GameConnections {
	return g.connections
}
