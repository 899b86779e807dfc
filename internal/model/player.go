package model

import (
	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/gofiber/websocket/v2"
)

type Player struct {
	ID    string
	Color PlayerColor
	Conn  *websocket.Conn
}

type ClientPlayer struct {
	ID             string         `json:"name"`
	Color          PlayerColor    `json:"color"`
	TimeLeft       int            `json:"timeLeft"`
	CapturedPieces []engine.Piece `json:"capturedPieces"`
}

type PlayerColor string

const (
	PlayerColorWhite PlayerColor = "white"
	PlayerColorBlack PlayerColor = "black"
)

func (c PlayerColor) engine() engine.Color {
	return engine.Color(c)
}

func colorOf(c engine.Color) PlayerColor {
	return PlayerColor(c)
}

// seat binds a session player ID to the engine's player record.
type seat struct {
	id     string
	player *engine.Player
	clock  *Clock
}
