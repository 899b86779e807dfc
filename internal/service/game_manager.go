package service

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// MatchFoundEvent is pushed to a queued player once paired.
type MatchFoundEvent struct {
	GameID string            `json:"gameId"`
	Color  model.PlayerColor `json:"color"`
}

type GameSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Open bool   `json:"open"`
}

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	clock            time.Duration
	namer            func() string
	mu               sync.RWMutex
	stop             chan struct{}
}

func NewGameManager(clock, matchmakingInterval time.Duration, namer func() string) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		clock:            clock,
		namer:            namer,
		stop:             make(chan struct{}),
	}

	go gm.processMatchmaking(matchmakingInterval)

	return gm
}

// Close stops the matchmaking loop.
func (gm *GameManager) Close() {
	close(gm.stop)
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}
	gm.matchingChannels[playerID] = ch
}

func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	delete(gm.matchingChannels, playerID)
	gm.queue.RemovePlayer(playerID)
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.stop:
			return
		case <-ticker.C:
			gm.matchPending()
		}
	}
}

// matchPending pairs queued players until fewer than two remain.
func (gm *GameManager) matchPending() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for {
		player1, player2, ok := gm.queue.GetNextPair()
		if !ok {
			return
		}
		gameID := uuid.New().String()
		game := model.NewGame(gameID, gm.namer(), gm.clock)
		p1Color, err := game.AddPlayer(player1.ID)
		if err != nil {
			log.Errorw("failed to seat player", "game", gameID, "player", player1.ID, "error", err)
			continue
		}
		p2Color, err := game.AddPlayer(player2.ID)
		if err != nil {
			log.Errorw("failed to seat player", "game", gameID, "player", player2.ID, "error", err)
			continue
		}
		gm.games[gameID] = game
		log.Infow("match found", "game", gameID, "white", player1.ID, "black", player2.ID)

		gm.notifyMatch(player1.ID, MatchFoundEvent{GameID: gameID, Color: p1Color})
		gm.notifyMatch(player2.ID, MatchFoundEvent{GameID: gameID, Color: p2Color})
	}
}

func (gm *GameManager) notifyMatch(playerID string, event MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Errorw("failed to marshal match event", "player", playerID, "error", err)
		return
	}
	select {
	case ch <- string(payload):
	default:
		log.Warnw("match event dropped", "player", playerID)
	}
	delete(gm.matchingChannels, playerID)
	close(ch)
}

func (gm *GameManager) CreateGame(gameID string) (*model.Game, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return nil, ErrGameExists
	}
	game := model.NewGame(gameID, gm.namer(), gm.clock)
	gm.games[gameID] = game
	return game, nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// ListGames returns every game ordered by ID.
func (gm *GameManager) ListGames() []GameSummary {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	ids := maps.Keys(gm.games)
	slices.Sort(ids)
	summaries := make([]GameSummary, 0, len(ids))
	for _, id := range ids {
		state := gm.games[id].GetState()
		summaries = append(summaries, GameSummary{
			ID:   id,
			Name: state.Name,
			Open: state.Players.White.ID == "" || state.Players.Black.ID == "",
		})
	}
	return summaries
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

// RegisterConnection attaches conn to a game.
func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID)
}

func (gm *GameManager) removeGame(gameID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	delete(gm.games, gameID)
}
