package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	game, err := wsc.gameService.Game(gameID)
	if err != nil {
		log.Warnw("connection to unknown game", "game", gameID, "player", playerID)
		c.WriteJSON(ws.NewErrorMessage(err))
		c.Close()
		return
	}
	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warnw("failed to register connection", "game", gameID, "player", playerID, "error", err)
		c.WriteJSON(ws.NewErrorMessage(err))
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugw("read loop ended", "game", gameID, "player", playerID, "error", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debugw("malformed message", "game", gameID, "player", playerID, "error", err)
			wsc.sendError(game, c, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugw("message rejected", "game", gameID, "player", playerID, "type", msg.Type, "error", err)
			wsc.sendError(game, c, err)
		}
	}
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		return wsc.gameService.HandleMove(gameID, playerID, move)
	case ws.MessageTypePromotion:
		var promotion model.WSPromotion
		if err := json.Unmarshal(msg.Payload, &promotion); err != nil {
			return err
		}
		return wsc.gameService.HandlePromotion(gameID, playerID, promotion.Piece)
	case ws.MessageTypeUndo:
		return wsc.gameService.HandleUndo(gameID, playerID)
	case ws.MessageTypeResign:
		return wsc.gameService.HandleResign(gameID, playerID)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(game *model.Game, c *websocket.Conn, err error) {
	if err := game.Connections().Send(c, ws.NewErrorMessage(err)); err != nil {
		log.Warnw("failed to send error", "game", game.ID, "error", err)
	}
}

// HandleMatchmaking queues the player and holds the connection open until a
// match is found or the client goes away.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := c.Locals("playerID").(string)

	matches := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, matches)
	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		wsc.gameService.UnregisterMatchmakingChannel(playerID)
		c.WriteJSON(ws.NewErrorMessage(err))
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-matches:
		if !ok {
			return
		}
		if err := c.WriteJSON(ws.Message{
			Type:    ws.MessageTypeMatch,
			Payload: json.RawMessage(event),
		}); err != nil {
			log.Warnw("failed to deliver match", "player", playerID, "error", err)
		}
	case <-closed:
		log.Debugw("left matchmaking", "player", playerID)
		wsc.gameService.UnregisterMatchmakingChannel(playerID)
	}
}
