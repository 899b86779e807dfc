package controller

import (
	"errors"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrPromotionPending),
		errors.Is(err, model.ErrAlreadyQueued):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrPlayerNotInGame),
		errors.Is(err, model.ErrNotAuthorized),
		errors.Is(err, model.ErrUndoNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, engine.ErrInvalidMove),
		errors.Is(err, engine.ErrInvalidPieceSelection),
		errors.Is(err, engine.ErrInvalidSquare),
		errors.Is(err, engine.ErrInvalidIndex),
		errors.Is(err, engine.ErrInvalidCastlingMove),
		errors.Is(err, engine.ErrInvalidSquareType),
		errors.Is(err, engine.ErrNoMovesToUndo),
		errors.Is(err, model.ErrNoPendingPromotion):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorw("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	game, err := gc.gameService.CreateGame()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": game.ID,
		"name":    game.Name,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return respondError(c, err)
	}
	log.Debugw("game joined", "game", gameID, "player", playerID, "color", color)

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) ListGames(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"games": gc.gameService.ListGames(),
	})
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

// ExportGame returns the serialized board as a JSON document.
func (gc *GameController) ExportGame(c *fiber.Ctx) error {
	data, err := gc.gameService.ExportGame(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(data)
}

// ImportGame creates a game from a serialized board in the request body and
// seats the caller.
func (gc *GameController) ImportGame(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	game, color, err := gc.gameService.ImportGame(playerID, string(c.Body()))
	if err != nil {
		return respondError(c, err)
	}
	log.Infow("game imported", "game", game.ID, "player", playerID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game imported",
		"game_id": game.ID,
		"name":    game.Name,
		"color":   color,
	})
}
