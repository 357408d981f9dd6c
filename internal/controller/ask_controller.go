package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/MarkerAnn/wine-backend/internal/dto"
	"github.com/MarkerAnn/wine-backend/internal/pkg/logger"
	"github.com/MarkerAnn/wine-backend/internal/pkg/serverutils"
	"github.com/MarkerAnn/wine-backend/internal/service"
)

type IAskController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	AskStream(ctx *fiber.Ctx) error
}

type askController struct {
	askService service.IAskService
	logger     logger.ILogger
}

func NewAskController(askService service.IAskService, logger logger.ILogger) IAskController {
	return &askController{
		askService: askService,
		logger:     logger,
	}
}

func (c *askController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ask/v1")
	h.Post("", c.Ask)
	h.Get("stream", c.AskStream)
}

func (c *askController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.askService.Ask(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ask", res))
}

// AskStream upgrades to a websocket, reads one question frame and streams
// the answer back: chunk frames while the model talks, then a final frame
// with citations and confidence, or an error frame.
func (c *askController) AskStream(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()
		c.serveAskStream(conn)
	})(ctx)
}

func (c *askController) serveAskStream(conn *websocket.Conn) {
	var req dto.AskRequest
	if err := conn.ReadJSON(&req); err != nil {
		c.writeErrorFrame(conn, "question frame must be JSON with a question field")
		return
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		c.writeErrorFrame(conn, err.Error())
		return
	}

	// The fiber context dies with the upgrade; the stream runs on its own.
	streamCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := c.askService.AskStream(streamCtx, &req, func(chunk string) error {
		return conn.WriteJSON(dto.AskStreamFrame{
			Type:    dto.StreamFrameChunk,
			Content: chunk,
		})
	})
	if err != nil {
		c.logger.Warn("ask_controller", "streaming ask failed", map[string]interface{}{
			"error_ref": err,
		})
		c.writeErrorFrame(conn, err.Error())
		return
	}

	if err := conn.WriteJSON(dto.AskStreamFrame{
		Type:       dto.StreamFrameFinal,
		Citations:  res.Citations,
		Confidence: res.Confidence,
		Degraded:   res.Degraded,
	}); err != nil {
		c.logger.Warn("ask_controller", "failed to write final frame", map[string]interface{}{
			"error_ref": err,
		})
	}
}

func (c *askController) writeErrorFrame(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(dto.AskStreamFrame{
		Type:  dto.StreamFrameError,
		Error: message,
	})
}
